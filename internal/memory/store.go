package memory

import (
	"context"
	"time"

	"lull/internal/event"
)

// Message is one transcript entry for a conversation scope.
type Message struct {
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	FromAgent  bool      `json:"from_agent"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store keeps per-scope conversation state: a bounded transcript, a rolling
// summary, and activity bookkeeping. It is only ever written from the intake
// path and the sequential event loop, so implementations need to be safe for
// that producer/consumer pair but nothing more.
type Store interface {
	// AppendMessage records a message at the tail of the scope's transcript,
	// trimming the transcript to the configured limit and marking the scope
	// active.
	AppendMessage(ctx context.Context, scope event.Scope, msg Message) error

	// RecentMessages returns up to limit transcript entries, oldest first.
	RecentMessages(ctx context.Context, scope event.Scope, limit int) ([]Message, error)

	// SaveSummary replaces the rolling summary for the scope.
	SaveSummary(ctx context.Context, scope event.Scope, summary string) error

	// Summary returns the scope's rolling summary, empty when none exists.
	Summary(ctx context.Context, scope event.Scope) (string, error)

	// ActiveScopes lists scopes with transcript activity at or after since.
	ActiveScopes(ctx context.Context, since time.Time) ([]event.Scope, error)

	// SaveConversationName records a human-readable name for the scope,
	// refreshed by channel bookkeeping.
	SaveConversationName(ctx context.Context, scope event.Scope, name string) error

	// ConversationName returns the recorded name, empty when unknown.
	ConversationName(ctx context.Context, scope event.Scope) (string, error)

	// PruneIdle drops transcripts, summaries and names for scopes whose last
	// activity predates cutoff. Returns the number of scopes pruned.
	PruneIdle(ctx context.Context, cutoff time.Time) (int, error)
}
