package agent

import (
	"context"
	"fmt"
	"time"

	"lull/internal/event"
	"lull/internal/logger"
	"lull/pkg/metrics"
)

// JudgeHandler runs the judgment step for a scope once its debounce wait has
// settled. A positive verdict schedules the response, honoring the delay the
// judgment asked for; a negative verdict returns the scope to idle.
type JudgeHandler struct {
	queue   *event.Queue
	builder ContextBuilder
	judge   Judge
	logger  logger.Logger
}

func NewJudgeHandler(queue *event.Queue, builder ContextBuilder, judge Judge, log logger.Logger) *JudgeHandler {
	return &JudgeHandler{
		queue:   queue,
		builder: builder,
		judge:   judge,
		logger:  log,
	}
}

func (h *JudgeHandler) Handle(ctx context.Context, ev *event.Event) error {
	p, ok := ev.Payload.(*event.JudgePayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for judge event", ev.Payload)
	}

	bundle, err := h.builder.Build(ctx, p.Scope, Trigger{
		SenderID:   p.SenderID,
		SenderName: p.SenderName,
		Content:    p.Content,
	})
	if err != nil {
		return fmt.Errorf("failed to build judgment context: %w", err)
	}

	result, err := h.judge.Judge(ctx, bundle)
	if err != nil {
		return fmt.Errorf("judgment failed: %w", err)
	}

	decision := "skip"
	if result.ShouldRespond {
		decision = "respond"
	}
	metrics.JudgmentsTotal.WithLabelValues(decision).Inc()
	h.logger.InfowCtx(ctx, "judgment complete",
		"decision", decision,
		"reason", result.Reason,
		"confidence", result.Confidence,
		"delay_seconds", result.DelaySeconds,
	)

	if !result.ShouldRespond {
		return nil
	}

	delay := time.Duration(result.DelaySeconds) * time.Second
	if delay < 0 {
		delay = 0
	}
	return h.queue.Enqueue(event.NewRespond(p.Scope, p.SenderID, p.SenderName, p.Content), delay)
}
