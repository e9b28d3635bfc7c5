package agent

import (
	"lull/internal/event"
	"lull/internal/memory"
)

// JudgmentResult is the judgment collaborator's verdict for one conversation
// scope. Reason and Confidence are diagnostic; only ShouldRespond and
// DelaySeconds drive control flow.
type JudgmentResult struct {
	ShouldRespond bool    `json:"should_respond"`
	Reason        string  `json:"reason"`
	Confidence    float64 `json:"confidence"`
	DelaySeconds  int     `json:"delay_seconds"`
}

// ContextBundle is the conversation context handed to the judgment, response
// and summarization collaborators.
type ContextBundle struct {
	Scope            event.Scope
	ConversationName string
	Summary          string
	Transcript       []memory.Message
	Trigger          Trigger
}
