// Package dashboard runs the live GPU dashboard: it owns the terminal for
// the lifetime of Controller.Run and drives the poll, sample, render, sleep
// cycle until a quit key, an interrupt, context cancellation or a fatal
// error stops it.
//
// # Lifecycle
//
//	Starting   - enable raw mode, enter the alternate screen, install the
//	             interrupt handler
//	Running    - per iteration, while the stop flag is unset:
//	               1. wait up to PollTimeout for a key; a quit key sets the flag
//	               2. sample telemetry
//	               3. render; a failure is fatal
//	               4. sleep FrameInterval
//	Stopping   - leave the alternate screen, disable raw mode. Runs exactly
//	             once on every exit path after Starting succeeded.
//	Terminated - Run returns nil for quit/interrupt, the fatal error otherwise
//
// # Stop flag
//
// The stop flag is the only state shared with other goroutines (signal
// delivery and context cancellation). It is an atomic boolean; the loop
// reads it once per iteration, so stopping takes effect at the next
// iteration boundary.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C  - Quit (the quit key is configurable)
package dashboard
