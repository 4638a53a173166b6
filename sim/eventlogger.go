package sim

import (
	"log"
	"reflect"
)

// EventLogger is a hook that prints every event the engine triggers. Attach
// it to an engine to follow a run event by event when debugging.
type EventLogger struct {
	*log.Logger
}

// NewEventLogger returns an EventLogger that writes to the given logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger
	return h
}

// Func writes the event information into the logger.
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	owner, ok := evt.Handler().(Named)
	if ok {
		h.Logger.Printf("%.10f, %s -> %s",
			evt.Time(), reflect.TypeOf(evt), owner.Name())
	} else {
		h.Logger.Printf("%.10f, %s", evt.Time(), reflect.TypeOf(evt))
	}
}
