package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityKey(t *testing.T) {
	tests := []struct {
		name string
		ev   *Event
		want string
	}{
		{
			name: "judge with thread",
			ev:   NewJudge(Scope{ChannelID: "C1", ThreadID: "T1"}, "u1", "ada", "hi"),
			want: "judge:C1:T1",
		},
		{
			name: "judge without thread",
			ev:   NewJudge(Scope{ChannelID: "C1"}, "u1", "ada", "hi"),
			want: "judge:C1:",
		},
		{
			name: "respond with thread",
			ev:   NewRespond(Scope{ChannelID: "C1", ThreadID: "T1"}, "u1", "ada", "hi"),
			want: "respond:C1:T1",
		},
		{
			name: "summarize",
			ev:   NewSummarize(),
			want: "summarize",
		},
		{
			name: "channel sync",
			ev:   NewChannelSync(),
			want: "channel_sync",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ev.IdentityKey())
		})
	}
}

func TestIdentityKeyStable(t *testing.T) {
	ev := NewJudge(Scope{ChannelID: "C1", ThreadID: "T1"}, "u1", "ada", "hi")
	first := ev.IdentityKey()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ev.IdentityKey())
	}
}

func TestTypePrefixSeparatesSameScope(t *testing.T) {
	scope := Scope{ChannelID: "C1", ThreadID: "T1"}
	judge := NewJudge(scope, "u1", "ada", "hi")
	respond := NewRespond(scope, "u1", "ada", "hi")
	assert.NotEqual(t, judge.IdentityKey(), respond.IdentityKey())
}

func TestKeyHelpersMatchEvents(t *testing.T) {
	scope := Scope{ChannelID: "C9", ThreadID: "T3"}
	assert.Equal(t, NewJudge(scope, "", "", "").IdentityKey(), JudgeKey(scope))
	assert.Equal(t, NewRespond(scope, "", "", "").IdentityKey(), RespondKey(scope))
}

func TestScopeString(t *testing.T) {
	assert.Equal(t, "C1", Scope{ChannelID: "C1"}.String())
	assert.Equal(t, "C1/T1", Scope{ChannelID: "C1", ThreadID: "T1"}.String())
}
