package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"lull/internal/agent"
)

// ParseJudgment extracts a JudgmentResult from raw model output. Models wrap
// JSON in code fences or prose often enough that we locate the outermost
// object rather than unmarshal the text as-is.
func ParseJudgment(raw string) (*agent.JudgmentResult, error) {
	text := strings.TrimSpace(raw)
	text = stripCodeFence(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in judgment output: %q", truncate(raw, 200))
	}

	var result agent.JudgmentResult
	if err := json.Unmarshal([]byte(text[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("failed to decode judgment: %w", err)
	}

	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}
	if result.DelaySeconds < 0 {
		result.DelaySeconds = 0
	}
	return &result, nil
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
