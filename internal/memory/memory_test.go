package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lull/internal/event"
)

func TestAppendAndRecentMessages(t *testing.T) {
	s := NewInMemoryStore(10)
	ctx := context.Background()
	scope := event.Scope{ChannelID: "C1", ThreadID: "T1"}

	for i := 0; i < 3; i++ {
		err := s.AppendMessage(ctx, scope, Message{
			SenderID:  "u1",
			Content:   fmt.Sprintf("msg-%d", i),
			Timestamp: time.Now(),
		})
		require.NoError(t, err)
	}

	msgs, err := s.RecentMessages(ctx, scope, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "msg-0", msgs[0].Content)
	assert.Equal(t, "msg-2", msgs[2].Content)
}

func TestTranscriptTrimmedToLimit(t *testing.T) {
	s := NewInMemoryStore(5)
	ctx := context.Background()
	scope := event.Scope{ChannelID: "C1"}

	for i := 0; i < 12; i++ {
		require.NoError(t, s.AppendMessage(ctx, scope, Message{
			Content:   fmt.Sprintf("msg-%d", i),
			Timestamp: time.Now(),
		}))
	}

	msgs, err := s.RecentMessages(ctx, scope, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 5)
	assert.Equal(t, "msg-7", msgs[0].Content)
	assert.Equal(t, "msg-11", msgs[4].Content)
}

func TestRecentMessagesLimit(t *testing.T) {
	s := NewInMemoryStore(10)
	ctx := context.Background()
	scope := event.Scope{ChannelID: "C1"}

	for i := 0; i < 6; i++ {
		require.NoError(t, s.AppendMessage(ctx, scope, Message{
			Content:   fmt.Sprintf("msg-%d", i),
			Timestamp: time.Now(),
		}))
	}

	msgs, err := s.RecentMessages(ctx, scope, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "msg-4", msgs[0].Content)
}

func TestSummaryRoundTrip(t *testing.T) {
	s := NewInMemoryStore(10)
	ctx := context.Background()
	scope := event.Scope{ChannelID: "C1"}

	summary, err := s.Summary(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, summary)

	require.NoError(t, s.SaveSummary(ctx, scope, "they talked about go"))
	summary, err = s.Summary(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, "they talked about go", summary)
}

func TestActiveScopes(t *testing.T) {
	s := NewInMemoryStore(10)
	ctx := context.Background()

	old := event.Scope{ChannelID: "old"}
	fresh := event.Scope{ChannelID: "fresh", ThreadID: "T1"}

	require.NoError(t, s.AppendMessage(ctx, old, Message{Timestamp: time.Now().Add(-2 * time.Hour)}))
	require.NoError(t, s.AppendMessage(ctx, fresh, Message{Timestamp: time.Now()}))

	scopes, err := s.ActiveScopes(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, scopes, 1)
	assert.Equal(t, fresh, scopes[0])
}

func TestPruneIdle(t *testing.T) {
	s := NewInMemoryStore(10)
	ctx := context.Background()

	idle := event.Scope{ChannelID: "idle"}
	busy := event.Scope{ChannelID: "busy"}

	require.NoError(t, s.AppendMessage(ctx, idle, Message{Timestamp: time.Now().Add(-48 * time.Hour)}))
	require.NoError(t, s.AppendMessage(ctx, busy, Message{Timestamp: time.Now()}))

	pruned, err := s.PruneIdle(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	msgs, err := s.RecentMessages(ctx, idle, 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	msgs, err = s.RecentMessages(ctx, busy, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestConversationName(t *testing.T) {
	s := NewInMemoryStore(10)
	ctx := context.Background()
	scope := event.Scope{ChannelID: "C1"}

	name, err := s.ConversationName(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, name)

	require.NoError(t, s.SaveConversationName(ctx, scope, "general"))
	name, err = s.ConversationName(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, "general", name)
}
