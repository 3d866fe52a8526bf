// Package testing provides a scripted terminal for exercising the dashboard
// without a real TTY.
package testing

import (
	"sync"
	"time"

	"github.com/rileyhilliard/gpumon/internal/render"
	"github.com/rileyhilliard/gpumon/internal/screen"
)

// Event names recorded by FakeTerminal, in call order.
const (
	EventRawOn    = "raw on"
	EventRawOff   = "raw off"
	EventAltOn    = "alt on"
	EventAltOff   = "alt off"
	EventPoll     = "poll"
	EventCommit   = "commit"
	EventSizeRead = "size"
)

// FakeTerminal simulates the dashboard terminal for testing.
type FakeTerminal struct {
	mu sync.Mutex

	// Configuration
	Width  int
	Height int
	// Keys are returned one per PollKey call, in order; once exhausted
	// polls report no key.
	Keys []screen.Key
	// OnPoll runs at the start of every PollKey call with the 1-based call
	// number, e.g. to deliver a signal mid-run.
	OnPoll func(call int)

	// PollErr is returned by every poll after the first PollErrAfter polls.
	PollErr      error
	PollErrAfter int
	// CommitErr is returned by every commit after the first CommitErrAfter commits.
	CommitErr      error
	CommitErrAfter int

	SizeErr       error
	RawErr        error
	AltErr        error
	RestoreRawErr error
	LeaveAltErr   error

	// Call tracking
	EnableRawCalls  int
	DisableRawCalls int
	EnterAltCalls   int
	LeaveAltCalls   int
	PollCalls       int
	CommitCalls     int
	Timeouts        []time.Duration
	Frames          []*render.Frame
	Events          []string
}

// NewFakeTerminal creates an 80x24 terminal that returns keys in order.
func NewFakeTerminal(keys ...screen.Key) *FakeTerminal {
	return &FakeTerminal{Width: 80, Height: 24, Keys: keys}
}

func (f *FakeTerminal) record(event string) {
	f.Events = append(f.Events, event)
}

func (f *FakeTerminal) EnableRawMode() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.EnableRawCalls++
	f.record(EventRawOn)
	return f.RawErr
}

func (f *FakeTerminal) DisableRawMode() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DisableRawCalls++
	f.record(EventRawOff)
	return f.RestoreRawErr
}

func (f *FakeTerminal) EnterAltScreen() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.EnterAltCalls++
	f.record(EventAltOn)
	return f.AltErr
}

func (f *FakeTerminal) LeaveAltScreen() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LeaveAltCalls++
	f.record(EventAltOff)
	return f.LeaveAltErr
}

func (f *FakeTerminal) PollKey(timeout time.Duration) (screen.Key, bool, error) {
	f.mu.Lock()
	f.PollCalls++
	call := f.PollCalls
	hook := f.OnPoll
	f.Timeouts = append(f.Timeouts, timeout)
	f.record(EventPoll)
	f.mu.Unlock()

	// The hook may call back into the controller, so run it unlocked.
	if hook != nil {
		hook(call)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PollErr != nil && call > f.PollErrAfter {
		return "", false, f.PollErr
	}
	if len(f.Keys) == 0 {
		return "", false, nil
	}
	k := f.Keys[0]
	f.Keys = f.Keys[1:]
	return k, true, nil
}

func (f *FakeTerminal) Size() (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(EventSizeRead)
	return f.Width, f.Height, f.SizeErr
}

func (f *FakeTerminal) Commit(frame *render.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CommitCalls++
	f.record(EventCommit)
	if f.CommitErr != nil && f.CommitCalls > f.CommitErrAfter {
		return f.CommitErr
	}
	f.Frames = append(f.Frames, frame)
	return nil
}

// LastFrame returns the most recently committed frame, or nil.
func (f *FakeTerminal) LastFrame() *render.Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Frames) == 0 {
		return nil
	}
	return f.Frames[len(f.Frames)-1]
}

// EventLog returns a copy of the recorded events.
func (f *FakeTerminal) EventLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Events))
	copy(out, f.Events)
	return out
}
