package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"lull/internal/logger"
	"lull/pkg/metrics"
)

// Task is one periodic producer. Interval tasks run on their own ticker; when
// Cron is set it takes precedence and the task fires on cron-due minutes.
// Make builds a fresh event per tick; the event's identity key should be
// stable across ticks so that an undequeued previous tick is superseded
// instead of piling up.
type Task struct {
	Name     string
	Interval time.Duration
	Cron     string
	Make     func() *Event
}

// Scheduler feeds recurring events into the queue. Timer drift is acceptable;
// exact periodicity is not a correctness requirement.
type Scheduler struct {
	queue  *Queue
	logger logger.Logger
	tasks  []Task
	gron   *gronx.Gronx
}

func NewScheduler(queue *Queue, log logger.Logger) *Scheduler {
	return &Scheduler{
		queue:  queue,
		logger: log,
		gron:   gronx.New(),
	}
}

// Add registers a periodic task. Tasks with neither a positive interval nor a
// cron expression are rejected at registration time.
func (s *Scheduler) Add(task Task) error {
	if task.Make == nil {
		return errors.New("scheduler task needs an event factory")
	}
	if task.Cron != "" {
		if !s.gron.IsValid(task.Cron) {
			return errors.New("invalid cron expression for task " + task.Name)
		}
	} else if task.Interval <= 0 {
		return errors.New("scheduler task needs a positive interval or a cron expression")
	}
	s.tasks = append(s.tasks, task)
	return nil
}

// Run starts every task's timer and blocks until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, task := range s.tasks {
		wg.Add(1)
		go func(task Task) {
			defer wg.Done()
			if task.Cron != "" {
				s.runCron(ctx, task)
				return
			}
			s.runInterval(ctx, task)
		}(task)
	}
	wg.Wait()
	return nil
}

func (s *Scheduler) runInterval(ctx context.Context, task Task) {
	s.logger.Infow("periodic task started", "task", task.Name, "interval", task.Interval.String())
	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("periodic task stopped", "task", task.Name)
			return
		case <-ticker.C:
			s.tick(task)
		}
	}
}

// runCron checks the expression once per minute, aligned to minute
// boundaries so a due minute is never skipped by drift.
func (s *Scheduler) runCron(ctx context.Context, task Task) {
	s.logger.Infow("periodic task started", "task", task.Name, "cron", task.Cron)
	for {
		now := time.Now()
		next := now.Truncate(time.Minute).Add(time.Minute)
		select {
		case <-ctx.Done():
			s.logger.Infow("periodic task stopped", "task", task.Name)
			return
		case <-time.After(next.Sub(now)):
		}

		due, err := s.gron.IsDue(task.Cron, next)
		if err != nil {
			s.logger.Errorw("cron check failed", "task", task.Name, "error", err)
			continue
		}
		if due {
			s.tick(task)
		}
	}
}

// tick enqueues one event for the task. The task-scoped identity key makes a
// tick that lands while the previous one is still pending collapse into a
// single unit of work.
func (s *Scheduler) tick(task Task) {
	metrics.SchedulerTicksTotal.WithLabelValues(task.Name).Inc()

	if err := s.queue.Enqueue(task.Make(), 0); err != nil {
		if errors.Is(err, ErrClosed) {
			s.logger.Debugw("tick dropped, queue closed", "task", task.Name)
			return
		}
		s.logger.Errorw("failed to enqueue periodic event", "task", task.Name, "error", err)
	}
}
