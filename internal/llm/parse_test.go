package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lull/internal/agent"
)

func TestParseJudgment(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want agent.JudgmentResult
	}{
		{
			name: "plain json",
			raw:  `{"should_respond": true, "reason": "asked about us", "confidence": 0.8, "delay_seconds": 30}`,
			want: agent.JudgmentResult{ShouldRespond: true, Reason: "asked about us", Confidence: 0.8, DelaySeconds: 30},
		},
		{
			name: "json code fence",
			raw:  "```json\n{\"should_respond\": false, \"reason\": \"not our topic\", \"confidence\": 0.6, \"delay_seconds\": 0}\n```",
			want: agent.JudgmentResult{ShouldRespond: false, Reason: "not our topic", Confidence: 0.6},
		},
		{
			name: "bare code fence",
			raw:  "```\n{\"should_respond\": true, \"confidence\": 0.5, \"delay_seconds\": 5}\n```",
			want: agent.JudgmentResult{ShouldRespond: true, Confidence: 0.5, DelaySeconds: 5},
		},
		{
			name: "prose around the object",
			raw:  "Here is my verdict: {\"should_respond\": true, \"reason\": \"direct question\", \"confidence\": 1, \"delay_seconds\": 0} hope that helps",
			want: agent.JudgmentResult{ShouldRespond: true, Reason: "direct question", Confidence: 1},
		},
		{
			name: "confidence clamped high",
			raw:  `{"should_respond": true, "confidence": 1.7, "delay_seconds": 0}`,
			want: agent.JudgmentResult{ShouldRespond: true, Confidence: 1},
		},
		{
			name: "confidence clamped low",
			raw:  `{"should_respond": false, "confidence": -0.3, "delay_seconds": 0}`,
			want: agent.JudgmentResult{ShouldRespond: false, Confidence: 0},
		},
		{
			name: "negative delay clamped",
			raw:  `{"should_respond": true, "confidence": 0.5, "delay_seconds": -10}`,
			want: agent.JudgmentResult{ShouldRespond: true, Confidence: 0.5, DelaySeconds: 0},
		},
		{
			name: "missing fields default",
			raw:  `{"should_respond": false}`,
			want: agent.JudgmentResult{ShouldRespond: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJudgment(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseJudgmentErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"no object", "I refuse to answer in JSON."},
		{"malformed json", `{"should_respond": tru`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJudgment(tt.raw)
			assert.Error(t, err)
		})
	}
}
