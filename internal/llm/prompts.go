package llm

import (
	"fmt"
	"strings"

	"lull/internal/agent"
	"lull/internal/memory"
)

const judgeSystemPrompt = `You observe a group conversation on behalf of an agent named %s.
The agent was not addressed directly. Decide whether it should join in.

Respond only when the conversation clearly invites it: the agent is mentioned
by name, a question falls squarely in its area, or it has something concrete
to add. When in doubt, stay silent.

Reply with a single JSON object and nothing else:
{"should_respond": bool, "reason": string, "confidence": number between 0 and 1, "delay_seconds": integer}

delay_seconds is how long the agent should hold the reply so it lands at a
natural moment. Use 0 for an immediate reply.`

const respondSystemPrompt = `You are %s, a participant in a group conversation.
Write the next message the agent sends. Be brief and conversational; match the
tone of the transcript. Do not narrate, do not prefix your name. If on
reflection there is nothing worth sending, reply with an empty string.`

const summarySystemPrompt = `Condense the conversation below into a short summary an agent can use
as long-term context. Keep who said what about which topics, decisions made and
open threads. A few sentences, plain prose, no preamble.`

func judgeUserPrompt(bundle *agent.ContextBundle) string {
	var b strings.Builder
	writeConversationHeader(&b, bundle)
	b.WriteString("Latest message:\n")
	fmt.Fprintf(&b, "%s: %s\n", bundle.Trigger.SenderName, bundle.Trigger.Content)
	b.WriteString("\nShould the agent respond?")
	return b.String()
}

func respondUserPrompt(bundle *agent.ContextBundle) string {
	var b strings.Builder
	writeConversationHeader(&b, bundle)
	b.WriteString("Write the agent's next message.")
	return b.String()
}

func summaryUserPrompt(bundle *agent.ContextBundle) string {
	var b strings.Builder
	writeConversationHeader(&b, bundle)
	b.WriteString("Summarize the conversation.")
	return b.String()
}

func writeConversationHeader(b *strings.Builder, bundle *agent.ContextBundle) {
	if bundle.ConversationName != "" {
		fmt.Fprintf(b, "Conversation: %s\n", bundle.ConversationName)
	}
	if bundle.Summary != "" {
		fmt.Fprintf(b, "Summary so far:\n%s\n", bundle.Summary)
	}
	if len(bundle.Transcript) > 0 {
		b.WriteString("\nTranscript:\n")
		b.WriteString(renderTranscript(bundle.Transcript))
	}
	b.WriteString("\n")
}

func renderTranscript(msgs []memory.Message) string {
	var b strings.Builder
	for _, msg := range msgs {
		name := msg.SenderName
		if name == "" {
			name = msg.SenderID
		}
		fmt.Fprintf(&b, "%s: %s\n", name, msg.Content)
	}
	return b.String()
}
