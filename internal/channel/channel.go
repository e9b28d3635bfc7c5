package channel

import (
	"context"
	"time"

	"lull/internal/event"
)

// InboundMessage is one message arriving from the chat platform, already
// mapped to a conversation scope. DirectAddress is true when the message
// explicitly targets the agent (mention or DM).
type InboundMessage struct {
	Scope         event.Scope
	SenderID      string
	SenderName    string
	Content       string
	DirectAddress bool
	Timestamp     time.Time
}

// InboundHandler receives every inbound message that survives filtering.
type InboundHandler func(ctx context.Context, msg InboundMessage) error

// ConversationInfo is platform-side metadata about one conversation,
// refreshed by periodic channel bookkeeping.
type ConversationInfo struct {
	Scope event.Scope
	Name  string
}

// Channel is a chat platform adapter: it feeds inbound messages to the
// registered handler and delivers outbound content.
type Channel interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	// Send delivers content to the conversation scope.
	Send(ctx context.Context, scope event.Scope, content string) error

	// ListConversations enumerates the conversations the agent can see.
	ListConversations(ctx context.Context) ([]ConversationInfo, error)
}
