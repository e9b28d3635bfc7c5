package agent

import (
	"context"
	"math/rand"
	"time"

	"lull/internal/channel"
	"lull/internal/config"
	"lull/internal/event"
	"lull/internal/filter"
	"lull/internal/logger"
	"lull/internal/memory"
	"lull/pkg/metrics"
)

// Intake translates inbound platform messages into scheduled work. Directly
// addressed messages owe a reply and bypass judgment; ambient messages arm a
// debounced judgment wait. A new message always invalidates whatever was
// pending for its scope: the decision is re-evaluated from the new context,
// not merely re-timed.
type Intake struct {
	queue  *event.Queue
	store  memory.Store
	filter *filter.Filter
	cfg    config.AgentConfig
	logger logger.Logger

	// rng is the jitter source, replaceable in tests.
	rng func() float64
}

func NewIntake(queue *event.Queue, store memory.Store, f *filter.Filter, cfg config.AgentConfig, log logger.Logger) *Intake {
	return &Intake{
		queue:  queue,
		store:  store,
		filter: f,
		cfg:    cfg,
		logger: log,
		rng:    rand.Float64,
	}
}

func (i *Intake) HandleInbound(ctx context.Context, msg channel.InboundMessage) error {
	if i.filter != nil {
		allowed, err := i.filter.Allow(msg)
		if err != nil {
			metrics.InboundMessagesTotal.WithLabelValues("filter_error").Inc()
			return err
		}
		if !allowed {
			metrics.InboundMessagesTotal.WithLabelValues("filtered").Inc()
			i.logger.Debugw("inbound message filtered",
				"scope", msg.Scope.String(),
				"sender_id", msg.SenderID,
			)
			return nil
		}
	}

	// Transcript recording is best-effort: a memory outage must not stop the
	// scheduling protocol.
	if err := i.store.AppendMessage(ctx, msg.Scope, memory.Message{
		SenderID:   msg.SenderID,
		SenderName: msg.SenderName,
		Content:    msg.Content,
		Timestamp:  msg.Timestamp,
	}); err != nil {
		i.logger.Warnw("failed to record inbound message",
			"scope", msg.Scope.String(),
			"error", err,
		)
	}

	if msg.DirectAddress {
		// A reply is owed now; any pending judgment for this scope is moot.
		i.queue.Cancel(event.JudgeKey(msg.Scope))
		metrics.InboundMessagesTotal.WithLabelValues("direct").Inc()
		i.logger.InfowCtx(ctx, "direct address, scheduling immediate response",
			"scope", msg.Scope.String(),
			"sender_id", msg.SenderID,
		)
		return i.queue.Enqueue(event.NewRespond(msg.Scope, msg.SenderID, msg.SenderName, msg.Content), 0)
	}

	// Ambient: a pending response was decided against stale context; drop it
	// and route the scope back through judgment. A pending judgment is
	// superseded by the enqueue itself, restarting the wait.
	i.queue.Cancel(event.RespondKey(msg.Scope))
	metrics.InboundMessagesTotal.WithLabelValues("ambient").Inc()

	delay := i.judgeDelay()
	i.logger.DebugwCtx(ctx, "ambient message, scheduling judgment",
		"scope", msg.Scope.String(),
		"sender_id", msg.SenderID,
		"delay", delay.String(),
	)
	return i.queue.Enqueue(event.NewJudge(msg.Scope, msg.SenderID, msg.SenderName, msg.Content), delay)
}

// judgeDelay returns base_wait scaled by a random factor in
// [1-jitter_ratio, 1+jitter_ratio].
func (i *Intake) judgeDelay() time.Duration {
	base := i.cfg.BaseWaitSeconds
	if base <= 0 {
		return 0
	}
	factor := 1.0
	if i.cfg.JitterRatio > 0 {
		factor = 1 + i.cfg.JitterRatio*(2*i.rng()-1)
	}
	return time.Duration(base * factor * float64(time.Second))
}
