package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lull/internal/logger"
)

func TestDispatchInvokesRegisteredHandler(t *testing.T) {
	d := NewDispatcher(logger.NopLogger())

	var handled *Event
	d.Register(TypeRespond, HandlerFunc(func(ctx context.Context, ev *Event) error {
		handled = ev
		return nil
	}))

	ev := NewRespond(Scope{ChannelID: "C1"}, "u1", "ada", "hi")
	require.NoError(t, d.Dispatch(context.Background(), ev))
	require.NotNil(t, handled)
	assert.Equal(t, ev.ID, handled.ID)
}

func TestDispatchUnregisteredTypeDropsEvent(t *testing.T) {
	d := NewDispatcher(logger.NopLogger())

	// Not an error: the loop must keep running on configuration gaps.
	err := d.Dispatch(context.Background(), NewSummarize())
	assert.NoError(t, err)
}

func TestDispatchPropagatesHandlerError(t *testing.T) {
	d := NewDispatcher(logger.NopLogger())

	want := errors.New("collaborator unavailable")
	d.Register(TypeJudge, HandlerFunc(func(ctx context.Context, ev *Event) error {
		return want
	}))

	err := d.Dispatch(context.Background(), NewJudge(Scope{ChannelID: "C1"}, "u1", "ada", "hi"))
	assert.ErrorIs(t, err, want)
}

func TestRegisterReplacesExistingHandler(t *testing.T) {
	d := NewDispatcher(logger.NopLogger())

	var got string
	d.Register(TypeRespond, HandlerFunc(func(ctx context.Context, ev *Event) error {
		got = "first"
		return nil
	}))
	d.Register(TypeRespond, HandlerFunc(func(ctx context.Context, ev *Event) error {
		got = "second"
		return nil
	}))

	require.NoError(t, d.Dispatch(context.Background(), NewRespond(Scope{ChannelID: "C1"}, "u1", "ada", "hi")))
	assert.Equal(t, "second", got)
}
