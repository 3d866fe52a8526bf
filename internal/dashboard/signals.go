package dashboard

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SignalNotifier delivers external interrupts. Notify arranges for fn to be
// called, possibly from another goroutine, on each interrupt until the
// returned stop function is called.
type SignalNotifier interface {
	Notify(fn func()) (stop func())
}

// OSSignals is a SignalNotifier for process signals.
type OSSignals struct {
	signals []os.Signal
}

// NewOSSignals returns a notifier for sig, or SIGINT and SIGTERM when none
// are given.
func NewOSSignals(sig ...os.Signal) OSSignals {
	if len(sig) == 0 {
		sig = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	return OSSignals{signals: sig}
}

// Notify calls fn on every received signal until stop is called. While
// registered, the signals no longer terminate the process.
func (o OSSignals) Notify(fn func()) func() {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, o.signals...)

	go func() {
		for {
			select {
			case <-ch:
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}

type noSignals struct{}

func (noSignals) Notify(func()) func() { return func() {} }
