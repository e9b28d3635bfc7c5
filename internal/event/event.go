package event

import (
	"time"

	"github.com/google/uuid"
)

// Type enumerates the closed set of event variants. Adding a variant means
// adding a payload shape and registering a handler for it at startup.
type Type string

const (
	TypeRespond     Type = "respond"
	TypeJudge       Type = "judge"
	TypeSummarize   Type = "summarize"
	TypeChannelSync Type = "channel_sync"
)

// Scope identifies one conversation: a channel, optionally narrowed to a
// thread. It is the unit the identity key is computed over.
type Scope struct {
	ChannelID string
	ThreadID  string
}

func (s Scope) Key() string {
	return s.ChannelID + ":" + s.ThreadID
}

func (s Scope) String() string {
	if s.ThreadID == "" {
		return s.ChannelID
	}
	return s.ChannelID + "/" + s.ThreadID
}

// Payload is the tagged union of per-variant event data. Handlers type-assert
// to the shape matching the event's Type instead of digging through a generic
// attribute bag.
type Payload interface {
	payload()
}

// JudgePayload carries the most recent ambient message that restarted the
// judgment wait for its scope.
type JudgePayload struct {
	Scope      Scope
	SenderID   string
	SenderName string
	Content    string
}

// RespondPayload carries the message a response is owed to. For judgment-gated
// responses it is the message that triggered the judgment.
type RespondPayload struct {
	Scope      Scope
	SenderID   string
	SenderName string
	Content    string
}

// SummarizePayload triggers the periodic transcript summarization pass.
type SummarizePayload struct{}

// ChannelSyncPayload triggers the periodic channel bookkeeping pass.
type ChannelSyncPayload struct{}

func (*JudgePayload) payload()       {}
func (*RespondPayload) payload()     {}
func (*SummarizePayload) payload()   {}
func (*ChannelSyncPayload) payload() {}

// Event is one immutable unit of scheduled work.
type Event struct {
	ID        string
	Type      Type
	Payload   Payload
	CreatedAt time.Time
}

// IdentityKey derives the deduplication key for this event: the event type,
// prefixed onto the scope fields of the payload. Pure function of Type and
// Payload; two pending events are duplicates iff their keys are equal. The
// type prefix keeps a JUDGE and a RESPOND on the same scope from superseding
// each other.
func (e *Event) IdentityKey() string {
	switch p := e.Payload.(type) {
	case *JudgePayload:
		return string(TypeJudge) + ":" + p.Scope.Key()
	case *RespondPayload:
		return string(TypeRespond) + ":" + p.Scope.Key()
	default:
		// Periodic variants carry no scope; the type alone identifies the
		// unit of work.
		return string(e.Type)
	}
}

// Scope returns the conversation scope for conversation-scoped variants and
// the zero Scope otherwise.
func (e *Event) Scope() Scope {
	switch p := e.Payload.(type) {
	case *JudgePayload:
		return p.Scope
	case *RespondPayload:
		return p.Scope
	default:
		return Scope{}
	}
}

func newEvent(t Type, p Payload) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   p,
		CreatedAt: time.Now(),
	}
}

func NewJudge(scope Scope, senderID, senderName, content string) *Event {
	return newEvent(TypeJudge, &JudgePayload{
		Scope:      scope,
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
	})
}

func NewRespond(scope Scope, senderID, senderName, content string) *Event {
	return newEvent(TypeRespond, &RespondPayload{
		Scope:      scope,
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
	})
}

func NewSummarize() *Event {
	return newEvent(TypeSummarize, &SummarizePayload{})
}

func NewChannelSync() *Event {
	return newEvent(TypeChannelSync, &ChannelSyncPayload{})
}

// JudgeKey and RespondKey compute identity keys for a scope without building
// an event, for callers that need to cancel pending work.
func JudgeKey(scope Scope) string {
	return string(TypeJudge) + ":" + scope.Key()
}

func RespondKey(scope Scope) string {
	return string(TypeRespond) + ":" + scope.Key()
}
