package event

import (
	"context"

	"lull/internal/logger"
)

// Handler processes one dispatched event. Implementations may enqueue further
// events but must not retain the one they were handed.
type Handler interface {
	Handle(ctx context.Context, ev *Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, ev *Event) error

func (f HandlerFunc) Handle(ctx context.Context, ev *Event) error {
	return f(ctx, ev)
}

// Dispatcher owns the static type→handler table. Exactly one handler per
// type; the table is populated at startup and read-only afterwards.
type Dispatcher struct {
	logger   logger.Logger
	handlers map[Type]Handler
}

func NewDispatcher(log logger.Logger) *Dispatcher {
	return &Dispatcher{
		logger:   log,
		handlers: make(map[Type]Handler),
	}
}

// Register associates the handler with the event type. Registering a type
// twice is a startup misconfiguration; the later registration wins and a
// warning is logged.
func (d *Dispatcher) Register(t Type, h Handler) {
	if _, ok := d.handlers[t]; ok {
		d.logger.Warnw("handler already registered for event type, replacing", "event_type", string(t))
	}
	d.handlers[t] = h
}

// Dispatch invokes the handler registered for the event's type and waits for
// it to finish. An unregistered type is a configuration warning, not an
// error: the event is dropped and the loop keeps running.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *Event) error {
	h, ok := d.handlers[ev.Type]
	if !ok {
		d.logger.Warnw("no handler registered for event type, dropping event",
			"event_type", string(ev.Type),
			"event_id", ev.ID,
		)
		return nil
	}
	return h.Handle(ctx, ev)
}
