package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lull/internal/channel"
	"lull/internal/config"
	"lull/internal/event"
	"lull/internal/logger"
	"lull/internal/memory"
)

// protocolFixture wires a real queue, dispatcher and loop against fake
// collaborators, so the tests exercise the protocol end to end at
// millisecond timescales.
type protocolFixture struct {
	queue  *event.Queue
	intake *Intake
	judge  *fakeJudge
	gen    *fakeGenerator
	sink   *fakeSink
	store  *memory.InMemoryStore

	cancel context.CancelFunc
	done   chan error
}

func newProtocolFixture(t *testing.T, baseWaitSeconds float64, verdict JudgmentResult) *protocolFixture {
	t.Helper()
	log := logger.NopLogger()

	f := &protocolFixture{
		queue: event.NewQueue(log),
		judge: &fakeJudge{result: verdict},
		gen:   &fakeGenerator{content: "sure, happy to help"},
		sink:  &fakeSink{},
		store: memory.NewInMemoryStore(50),
	}

	builder := NewContextBuilder(f.store, 50)
	dispatcher := event.NewDispatcher(log)
	dispatcher.Register(event.TypeJudge, NewJudgeHandler(f.queue, builder, f.judge, log))
	dispatcher.Register(event.TypeRespond, NewRespondHandler(builder, f.gen, f.sink, f.store, "lull", log))

	f.intake = NewIntake(f.queue, f.store, nil, config.AgentConfig{
		BaseWaitSeconds: baseWaitSeconds,
		JitterRatio:     0,
	}, log)

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.done = make(chan error, 1)
	loop := event.NewLoop(f.queue, dispatcher, log)
	go func() { f.done <- loop.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		<-f.done
		f.queue.Close()
	})
	return f
}

func (f *protocolFixture) inbound(scope event.Scope, content string, direct bool) error {
	return f.intake.HandleInbound(context.Background(), channel.InboundMessage{
		Scope:         scope,
		SenderID:      "u1",
		SenderName:    "ada",
		Content:       content,
		DirectAddress: direct,
		Timestamp:     time.Now(),
	})
}

func TestAmbientBurstYieldsSingleJudgment(t *testing.T) {
	// Three ambient messages inside the debounce window collapse into one
	// judgment, fired one base wait after the last message.
	f := newProtocolFixture(t, 0.12, JudgmentResult{ShouldRespond: false, Reason: "quiet"})
	scope := event.Scope{ChannelID: "C1", ThreadID: "T1"}

	require.NoError(t, f.inbound(scope, "first", false))
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, f.inbound(scope, "second", false))
	time.Sleep(30 * time.Millisecond)
	last := time.Now()
	require.NoError(t, f.inbound(scope, "third", false))

	assert.Eventually(t, func() bool {
		return len(f.judge.callTimes()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	calls := f.judge.callTimes()
	require.Len(t, calls, 1)
	assert.GreaterOrEqual(t, calls[0].Sub(last), 120*time.Millisecond)

	// Settle: still exactly one judgment for the whole burst.
	time.Sleep(200 * time.Millisecond)
	assert.Len(t, f.judge.callTimes(), 1)
}

func TestDirectAddressBypassesJudgment(t *testing.T) {
	f := newProtocolFixture(t, 1000, JudgmentResult{ShouldRespond: false})
	scope := event.Scope{ChannelID: "C1"}

	require.NoError(t, f.inbound(scope, "@lull hello", true))

	assert.Eventually(t, func() bool {
		return len(f.sink.delivered()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.Empty(t, f.judge.callTimes())
	assert.Equal(t, scope, f.sink.delivered()[0].scope)
}

func TestNegativeJudgmentMeansSilence(t *testing.T) {
	f := newProtocolFixture(t, 0.05, JudgmentResult{ShouldRespond: false, Reason: "not our conversation"})
	scope := event.Scope{ChannelID: "C2", ThreadID: "T2"}

	require.NoError(t, f.inbound(scope, "ambient chatter", false))

	assert.Eventually(t, func() bool {
		return len(f.judge.callTimes()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	// No response now or later, until new traffic arrives.
	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, f.sink.delivered())
	assert.Equal(t, 0, f.queue.Pending())

	// A new message restarts the cycle from scratch.
	require.NoError(t, f.inbound(scope, "more chatter", false))
	assert.Eventually(t, func() bool {
		return len(f.judge.callTimes()) == 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPositiveJudgmentDelayHonored(t *testing.T) {
	f := newProtocolFixture(t, 0.05, JudgmentResult{
		ShouldRespond: true,
		Reason:        "they asked about us",
		Confidence:    0.9,
		DelaySeconds:  1,
	})
	scope := event.Scope{ChannelID: "C3"}

	require.NoError(t, f.inbound(scope, "wonder what lull thinks", false))

	assert.Eventually(t, func() bool {
		return len(f.sink.delivered()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	calls := f.judge.callTimes()
	require.Len(t, calls, 1)
	got := f.sink.delivered()[0]
	assert.GreaterOrEqual(t, got.at.Sub(calls[0]), time.Second)
	assert.Equal(t, "sure, happy to help", got.content)
}

func TestNewMessageCancelsPendingResponse(t *testing.T) {
	// A message arriving while a RESPOND is pending throws the decision away
	// and re-judges from the new context.
	f := newProtocolFixture(t, 0.04, JudgmentResult{
		ShouldRespond: true,
		DelaySeconds:  2,
	})
	scope := event.Scope{ChannelID: "C4"}

	require.NoError(t, f.inbound(scope, "first", false))

	assert.Eventually(t, func() bool {
		return len(f.judge.callTimes()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	// The respond event now waits out its 2s delay. Flip the verdict and
	// send a new ambient message before it fires.
	f.judge.mu.Lock()
	f.judge.result = JudgmentResult{ShouldRespond: false, Reason: "changed context"}
	f.judge.mu.Unlock()

	require.NoError(t, f.inbound(scope, "actually never mind", false))

	assert.Eventually(t, func() bool {
		return len(f.judge.callTimes()) == 2
	}, 2*time.Second, 5*time.Millisecond)

	// The canceled response must never fire, even past its original delay.
	time.Sleep(2200 * time.Millisecond)
	assert.Empty(t, f.sink.delivered())
}

func TestDirectAddressCancelsPendingJudgment(t *testing.T) {
	f := newProtocolFixture(t, 1000, JudgmentResult{ShouldRespond: false})
	scope := event.Scope{ChannelID: "C5"}

	require.NoError(t, f.inbound(scope, "ambient", false))
	assert.Equal(t, 1, f.queue.Pending())

	require.NoError(t, f.inbound(scope, "@lull direct", true))

	assert.Eventually(t, func() bool {
		return len(f.sink.delivered()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	// The armed judgment was discarded along the way.
	assert.Empty(t, f.judge.callTimes())
	assert.Equal(t, 0, f.queue.Pending())
}

func TestInboundRecordedInTranscript(t *testing.T) {
	f := newProtocolFixture(t, 1000, JudgmentResult{ShouldRespond: false})
	scope := event.Scope{ChannelID: "C6"}

	require.NoError(t, f.inbound(scope, "hello there", false))

	msgs, err := f.store.RecentMessages(context.Background(), scope, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello there", msgs[0].Content)
	assert.False(t, msgs[0].FromAgent)
}

func TestDeliveredResponseRecordedInTranscript(t *testing.T) {
	f := newProtocolFixture(t, 1000, JudgmentResult{ShouldRespond: false})
	scope := event.Scope{ChannelID: "C7"}

	require.NoError(t, f.inbound(scope, "@lull hi", true))

	assert.Eventually(t, func() bool {
		return len(f.sink.delivered()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		msgs, err := f.store.RecentMessages(context.Background(), scope, 10)
		if err != nil || len(msgs) != 2 {
			return false
		}
		return msgs[1].FromAgent && msgs[1].Content == "sure, happy to help"
	}, 2*time.Second, 5*time.Millisecond)
}
