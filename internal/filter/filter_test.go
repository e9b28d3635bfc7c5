package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lull/internal/channel"
	"lull/internal/event"
)

func msg(senderID, content string, direct bool) channel.InboundMessage {
	return channel.InboundMessage{
		Scope:         event.Scope{ChannelID: "C1"},
		SenderID:      senderID,
		SenderName:    "ada",
		Content:       content,
		DirectAddress: direct,
		Timestamp:     time.Now(),
	}
}

func TestNoRulesAllowsEverything(t *testing.T) {
	f, err := New(nil, "")
	require.NoError(t, err)

	allowed, err := f.Allow(msg("anyone", "hello", false))
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestAllowlist(t *testing.T) {
	f, err := New([]string{"u1", "u2"}, "")
	require.NoError(t, err)

	tests := []struct {
		senderID string
		want     bool
	}{
		{"u1", true},
		{"u2", true},
		{"u3", false},
	}

	for _, tt := range tests {
		t.Run(tt.senderID, func(t *testing.T) {
			allowed, err := f.Allow(msg(tt.senderID, "hello", false))
			require.NoError(t, err)
			assert.Equal(t, tt.want, allowed)
		})
	}
}

func TestExpression(t *testing.T) {
	f, err := New(nil, `!content.startsWith("!")`)
	require.NoError(t, err)

	allowed, err := f.Allow(msg("u1", "hello there", false))
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = f.Allow(msg("u1", "!ignore me", false))
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestExpressionSeesDirectFlag(t *testing.T) {
	f, err := New(nil, `direct || content.contains("lull")`)
	require.NoError(t, err)

	allowed, err := f.Allow(msg("u1", "nothing relevant", false))
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = f.Allow(msg("u1", "nothing relevant", true))
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestAllowlistAndExpressionCombine(t *testing.T) {
	f, err := New([]string{"u1"}, `!content.startsWith("!")`)
	require.NoError(t, err)

	allowed, err := f.Allow(msg("u2", "hello", false))
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = f.Allow(msg("u1", "!cmd", false))
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = f.Allow(msg("u1", "hello", false))
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestInvalidExpressionRejectedAtConstruction(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"syntax error", "not valid !!!"},
		{"non-bool result", "content"},
		{"unknown variable", `mystery == "x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(nil, tt.expr)
			assert.Error(t, err)
		})
	}
}
