package sim

// A Process is a long-lived actor that suspends itself between wake-ups. Each
// WakeEvent delivered to the process resumes its state machine, which runs
// synchronously until it suspends again by scheduling its next wake-up.
type Process interface {
	Named
	Handler
}

// A WakeEvent resumes a suspended Process.
type WakeEvent struct {
	EventBase

	process Process
}

// MakeWakeEvent creates a WakeEvent that resumes process p at time t.
func MakeWakeEvent(t VTimeInSec, p Process) WakeEvent {
	evt := WakeEvent{}
	evt.ID = GetIDGenerator().Generate()
	evt.time = t
	evt.handler = p
	evt.secondary = false
	evt.process = p

	return evt
}

// Process returns the process that the event resumes.
func (e WakeEvent) Process() Process {
	return e.process
}

// A ProcessScheduler wakes processes at the current or a future time.
type ProcessScheduler interface {
	TimeTeller

	// ScheduleNow wakes the process at the current time, after all the
	// same-time primary events that are already pending.
	ScheduleNow(p Process)

	// ScheduleAfter wakes the process delay seconds from now.
	ScheduleAfter(delay VTimeInSec, p Process)
}
