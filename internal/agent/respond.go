package agent

import (
	"context"
	"fmt"
	"time"

	"lull/internal/event"
	"lull/internal/logger"
	"lull/internal/memory"
	"lull/pkg/metrics"
)

// RespondHandler produces and delivers one response for a scope. A failure
// anywhere in the chain means silence for this cycle, never a user-visible
// error; the scope simply returns to idle.
type RespondHandler struct {
	builder   ContextBuilder
	generator Generator
	sink      Sink
	store     memory.Store
	agentName string
	logger    logger.Logger
}

func NewRespondHandler(builder ContextBuilder, generator Generator, sink Sink, store memory.Store, agentName string, log logger.Logger) *RespondHandler {
	return &RespondHandler{
		builder:   builder,
		generator: generator,
		sink:      sink,
		store:     store,
		agentName: agentName,
		logger:    log,
	}
}

func (h *RespondHandler) Handle(ctx context.Context, ev *event.Event) error {
	p, ok := ev.Payload.(*event.RespondPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for respond event", ev.Payload)
	}

	bundle, err := h.builder.Build(ctx, p.Scope, Trigger{
		SenderID:   p.SenderID,
		SenderName: p.SenderName,
		Content:    p.Content,
	})
	if err != nil {
		return fmt.Errorf("failed to build response context: %w", err)
	}

	content, err := h.generator.Generate(ctx, bundle)
	if err != nil {
		metrics.ResponsesDeliveredTotal.WithLabelValues("generate_error").Inc()
		return fmt.Errorf("response generation failed: %w", err)
	}
	if content == "" {
		metrics.ResponsesDeliveredTotal.WithLabelValues("empty").Inc()
		h.logger.InfowCtx(ctx, "generator produced no content, staying silent")
		return nil
	}

	if err := h.sink.Send(ctx, p.Scope, content); err != nil {
		metrics.ResponsesDeliveredTotal.WithLabelValues("deliver_error").Inc()
		return fmt.Errorf("delivery failed: %w", err)
	}
	metrics.ResponsesDeliveredTotal.WithLabelValues("ok").Inc()

	// Record our own reply so later judgments and summaries see it.
	if err := h.store.AppendMessage(ctx, p.Scope, memory.Message{
		SenderName: h.agentName,
		Content:    content,
		FromAgent:  true,
		Timestamp:  time.Now(),
	}); err != nil {
		h.logger.WarnwCtx(ctx, "failed to record delivered response", "error", err)
	}

	h.logger.InfowCtx(ctx, "response delivered", "scope", p.Scope.String())
	return nil
}
