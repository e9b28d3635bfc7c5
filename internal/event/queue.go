package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"lull/internal/logger"
	"lull/pkg/metrics"
)

// ErrClosed is returned by Enqueue and Dequeue after Close.
var ErrClosed = errors.New("event queue is closed")

// entry is one pending unit of work in the identity-key index. While delayed
// it owns a timer; once ready it sits in the FIFO ready list. The index entry
// and the ready-list slot are removed together, so the index is the single
// source of truth for what is pending.
type entry struct {
	ev    *Event
	timer *time.Timer
	ready bool
}

// Queue holds events until ready, deduplicating pending work by identity key.
// Enqueue is safe for concurrent producers; Dequeue is meant for a single
// consumer. An event that has been dequeued is out of the queue's hands:
// later enqueues of the same key start a fresh pending unit.
type Queue struct {
	logger logger.Logger

	mu     sync.Mutex
	index  map[string]*entry
	readyq []*Event
	wake   chan struct{}
	closed bool
}

func NewQueue(log logger.Logger) *Queue {
	return &Queue{
		logger: log,
		index:  make(map[string]*entry),
		wake:   make(chan struct{}, 1),
	}
}

// Enqueue schedules ev to become ready after delay (zero means immediately).
// A pending event with the same identity key is superseded: its timer is
// stopped, its ready slot discarded, and the new event takes its place with
// the new content and the newly requested delay.
func (q *Queue) Enqueue(ev *Event, delay time.Duration) error {
	key := ev.IdentityKey()

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	if old, ok := q.index[key]; ok {
		q.discardLocked(key, old)
		metrics.EventsSupersededTotal.WithLabelValues(string(old.ev.Type)).Inc()
		q.logger.Debugw("pending event superseded",
			"identity_key", key,
			"old_event_id", old.ev.ID,
			"new_event_id", ev.ID,
		)
	}

	e := &entry{ev: ev}
	q.index[key] = e
	metrics.EventsEnqueuedTotal.WithLabelValues(string(ev.Type)).Inc()
	metrics.QueuePendingEvents.Set(float64(len(q.index)))

	if delay <= 0 {
		e.ready = true
		q.readyq = append(q.readyq, ev)
		q.signalLocked()
		return nil
	}

	e.timer = time.AfterFunc(delay, func() {
		q.fire(key, e)
	})
	return nil
}

// fire moves a delayed entry to the ready list, unless it was superseded or
// canceled between the timer firing and the lock being acquired.
func (q *Queue) fire(key string, e *entry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	if cur, ok := q.index[key]; !ok || cur != e {
		return
	}

	e.ready = true
	q.readyq = append(q.readyq, e.ev)
	q.signalLocked()
}

// Cancel discards the pending event with the given identity key, if any.
// It reports whether an event was actually canceled. Events already dequeued
// are unaffected.
func (q *Queue) Cancel(key string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.index[key]
	if !ok {
		return false
	}

	q.discardLocked(key, e)
	metrics.EventsCanceledTotal.WithLabelValues(string(e.ev.Type)).Inc()
	metrics.QueuePendingEvents.Set(float64(len(q.index)))
	q.logger.Debugw("pending event canceled",
		"identity_key", key,
		"event_id", e.ev.ID,
	)
	return true
}

// Dequeue blocks until an event is ready, removing it from the pending set.
// Ready events are handed out in readiness order. Returns ErrClosed after
// Close, or the context error on cancellation.
func (q *Queue) Dequeue(ctx context.Context) (*Event, error) {
	for {
		q.mu.Lock()
		if len(q.readyq) > 0 {
			ev := q.readyq[0]
			q.readyq = q.readyq[1:]
			delete(q.index, ev.IdentityKey())
			metrics.QueuePendingEvents.Set(float64(len(q.index)))
			q.mu.Unlock()
			return ev, nil
		}
		if q.closed {
			q.mu.Unlock()
			return nil, ErrClosed
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.wake:
		}
	}
}

// MarkDone records completion of a dequeued event. Diagnostic only: the event
// left the queue's state at dequeue time.
func (q *Queue) MarkDone(ev *Event) {
	q.logger.Debugw("event processed",
		"event_id", ev.ID,
		"event_type", string(ev.Type),
		"identity_key", ev.IdentityKey(),
	)
}

// Close stops accepting enqueues, cancels every outstanding delay timer, and
// discards all pending events. No timer fires after Close returns.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true

	for key, e := range q.index {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(q.index, key)
	}
	dropped := len(q.readyq)
	q.readyq = nil
	metrics.QueuePendingEvents.Set(0)

	if dropped > 0 {
		q.logger.Infow("queue closed with undispatched events", "dropped", dropped)
	}
	q.signalLocked()
}

// Pending reports the number of pending (delayed or ready) events.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.index)
}

// discardLocked removes an entry from the index and, depending on its state,
// stops its timer or pulls its event out of the ready list.
func (q *Queue) discardLocked(key string, e *entry) {
	if e.timer != nil {
		e.timer.Stop()
	}
	if e.ready {
		for i, ev := range q.readyq {
			if ev == e.ev {
				q.readyq = append(q.readyq[:i], q.readyq[i+1:]...)
				break
			}
		}
	}
	delete(q.index, key)
}

func (q *Queue) signalLocked() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
