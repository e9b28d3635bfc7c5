package agent

import (
	"context"
	"sync"
	"time"

	"lull/internal/channel"
	"lull/internal/event"
)

type fakeJudge struct {
	mu     sync.Mutex
	result JudgmentResult
	err    error
	calls  []time.Time
}

func (f *fakeJudge) Judge(ctx context.Context, bundle *ContextBundle) (*JudgmentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, time.Now())
	if f.err != nil {
		return nil, f.err
	}
	result := f.result
	return &result, nil
}

func (f *fakeJudge) callTimes() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Time, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakeGenerator struct {
	mu      sync.Mutex
	content string
	err     error
	calls   int
}

func (f *fakeGenerator) Generate(ctx context.Context, bundle *ContextBundle) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

type fakeSummarizer struct {
	mu      sync.Mutex
	summary string
	err     error
	calls   int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, bundle *ContextBundle) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

type delivery struct {
	scope   event.Scope
	content string
	at      time.Time
}

type fakeSink struct {
	mu         sync.Mutex
	err        error
	deliveries []delivery
}

func (f *fakeSink) Send(ctx context.Context, scope event.Scope, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deliveries = append(f.deliveries, delivery{scope: scope, content: content, at: time.Now()})
	return nil
}

func (f *fakeSink) delivered() []delivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]delivery, len(f.deliveries))
	copy(out, f.deliveries)
	return out
}

type fakeChannel struct {
	mu    sync.Mutex
	infos []channel.ConversationInfo
	err   error
}

func (f *fakeChannel) Start(ctx context.Context) error { return nil }
func (f *fakeChannel) Stop(ctx context.Context) error  { return nil }

func (f *fakeChannel) Send(ctx context.Context, scope event.Scope, content string) error {
	return nil
}

func (f *fakeChannel) ListConversations(ctx context.Context) ([]channel.ConversationInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.infos, nil
}
