package agent

import (
	"context"

	"lull/internal/event"
)

// Judge decides whether and after how long the agent should respond to an
// ambient conversation.
type Judge interface {
	Judge(ctx context.Context, bundle *ContextBundle) (*JudgmentResult, error)
}

// Generator produces the response content for a conversation.
type Generator interface {
	Generate(ctx context.Context, bundle *ContextBundle) (string, error)
}

// Summarizer condenses a conversation transcript into a rolling summary.
type Summarizer interface {
	Summarize(ctx context.Context, bundle *ContextBundle) (string, error)
}

// Sink delivers generated content back to the platform. The chat adapter
// satisfies this directly.
type Sink interface {
	Send(ctx context.Context, scope event.Scope, content string) error
}

// ContextBuilder assembles the conversation context for a scope. The trigger
// is the message the current unit of work was created for; periodic callers
// pass the zero value.
type ContextBuilder interface {
	Build(ctx context.Context, scope event.Scope, trigger Trigger) (*ContextBundle, error)
}

// Trigger captures the message fields handlers carry in event payloads.
type Trigger struct {
	SenderID   string
	SenderName string
	Content    string
}
