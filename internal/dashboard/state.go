package dashboard

import "sync/atomic"

// StopFlag is the run/stop flag shared between the loop and asynchronous
// stop requests. The zero value is "running".
type StopFlag struct {
	stopped atomic.Bool
}

// Set marks the flag stopped. Safe to call from any goroutine, any number of times.
func (f *StopFlag) Set() {
	f.stopped.Store(true)
}

// Stopped reports whether Set has been called.
func (f *StopFlag) Stopped() bool {
	return f.stopped.Load()
}

// Phase is a lifecycle state of the controller.
type Phase int32

const (
	PhaseStarting Phase = iota
	PhaseRunning
	PhaseStopping
	PhaseTerminated
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseStarting:
		return "starting"
	case PhaseRunning:
		return "running"
	case PhaseStopping:
		return "stopping"
	case PhaseTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
