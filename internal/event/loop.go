package event

import (
	"context"
	"errors"
	"time"

	"lull/internal/logger"
	"lull/pkg/logging"
	"lull/pkg/metrics"
)

// Loop is the single consumer driving the dequeue→dispatch cycle. Dispatch is
// strictly sequential: the next dequeue does not start until the current
// handler returns. That serializes every access handlers make to shared
// conversation state, so no further locking is needed on that path.
type Loop struct {
	queue      *Queue
	dispatcher *Dispatcher
	logger     logger.Logger
}

func NewLoop(queue *Queue, dispatcher *Dispatcher, log logger.Logger) *Loop {
	return &Loop{
		queue:      queue,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// Run consumes events until ctx is canceled or the queue is closed. A
// canceled ctx stops the loop between events: the in-flight handler always
// runs to completion, since handlers receive a context detached from the
// loop's cancellation. Handler failures are logged and the loop moves on;
// no retry is attempted here.
func (l *Loop) Run(ctx context.Context) error {
	for {
		ev, err := l.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				l.logger.Infow("event loop stopped")
				return nil
			}
			return err
		}

		hctx := context.WithoutCancel(ctx)
		hctx = logging.WithEventID(hctx, ev.ID)
		hctx = logging.WithIdentityKey(hctx, ev.IdentityKey())
		if scope := ev.Scope(); scope.ChannelID != "" {
			hctx = logging.WithScope(hctx, scope.String())
		}

		start := time.Now()
		err = l.dispatcher.Dispatch(hctx, ev)
		duration := time.Since(start)

		status := "ok"
		if err != nil {
			status = "error"
			l.logger.ErrorwCtx(hctx, "handler failed",
				"event_type", string(ev.Type),
				"error", err,
			)
		}
		metrics.EventsDispatchedTotal.WithLabelValues(string(ev.Type), status).Inc()
		metrics.ObserveDispatchDuration(string(ev.Type), duration)

		l.queue.MarkDone(ev)
	}
}
