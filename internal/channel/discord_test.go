package channel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  []string
	}{
		{
			name:  "short passes through",
			in:    "hello",
			limit: 10,
			want:  []string{"hello"},
		},
		{
			name:  "splits on newline",
			in:    "line one\nline two",
			limit: 10,
			want:  []string{"line one", "line two"},
		},
		{
			name:  "hard split without newline",
			in:    strings.Repeat("a", 15),
			limit: 10,
			want:  []string{strings.Repeat("a", 10), strings.Repeat("a", 5)},
		},
		{
			name:  "exactly at limit",
			in:    strings.Repeat("a", 10),
			limit: 10,
			want:  []string{strings.Repeat("a", 10)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitMessage(tt.in, tt.limit)
			assert.Equal(t, tt.want, got)
			for _, chunk := range got {
				assert.LessOrEqual(t, len(chunk), tt.limit)
			}
		})
	}
}
