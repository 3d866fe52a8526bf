package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/logger"
	"github.com/rileyhilliard/gpumon/internal/render"
	"github.com/rileyhilliard/gpumon/internal/screen"
	"github.com/rileyhilliard/gpumon/internal/telemetry"
)

// Default loop timing.
const (
	DefaultPollTimeout   = 100 * time.Millisecond
	DefaultFrameInterval = 100 * time.Millisecond
)

// Terminal is the terminal-control collaborator.
type Terminal interface {
	render.Surface
	EnableRawMode() error
	DisableRawMode() error
	EnterAltScreen() error
	LeaveAltScreen() error
	// PollKey waits up to timeout for a key; ok is false if none arrived.
	PollKey(timeout time.Duration) (key screen.Key, ok bool, err error)
}

// Sampler produces the snapshot for one iteration. It never fails.
type Sampler interface {
	Sample() telemetry.Snapshot
}

// Renderer draws one frame.
type Renderer interface {
	Render(s render.Surface, snap telemetry.Snapshot) error
}

// Options configures a Controller. Zero fields take defaults.
type Options struct {
	PollTimeout   time.Duration
	FrameInterval time.Duration
	// QuitKeys stop the loop when pressed. Defaults to QuitKeys(KeyQuit).
	QuitKeys []screen.Key
	// Signals delivers external interrupts. Defaults to none.
	Signals SignalNotifier
	// Sleep pauses between frames. Defaults to time.Sleep.
	Sleep  func(time.Duration)
	Logger logger.Logger
}

func (o Options) withDefaults() Options {
	if o.PollTimeout <= 0 {
		o.PollTimeout = DefaultPollTimeout
	}
	if o.FrameInterval < 0 {
		o.FrameInterval = 0
	}
	if len(o.QuitKeys) == 0 {
		o.QuitKeys = QuitKeys(KeyQuit)
	}
	if o.Signals == nil {
		o.Signals = noSignals{}
	}
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	if o.Logger == nil {
		o.Logger = logger.Noop()
	}
	return o
}

// Controller owns the dashboard loop and the terminal while it runs.
// A Controller runs once.
type Controller struct {
	term     Terminal
	sampler  Sampler
	renderer Renderer
	opts     Options
	log      logger.Logger

	stop     StopFlag
	phase    atomic.Int32
	started  atomic.Bool
	stopOnce sync.Once
}

// NewController creates a controller. FrameInterval 0 is kept as is (no
// sleep between frames); use DefaultFrameInterval for the normal cadence.
func NewController(t Terminal, s Sampler, r Renderer, opts Options) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		term:     t,
		sampler:  s,
		renderer: r,
		opts:     opts,
		log:      opts.Logger,
	}
}

// Stop asks the loop to stop at the next iteration boundary. Safe to call
// from any goroutine.
func (c *Controller) Stop() {
	c.stop.Set()
}

// Stopped reports whether a stop was requested.
func (c *Controller) Stopped() bool {
	return c.stop.Stopped()
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	return Phase(c.phase.Load())
}

func (c *Controller) setPhase(p Phase) {
	c.phase.Store(int32(p))
	c.log.Debug("phase: %s", p)
}

// Run takes over the terminal and runs the loop until it stops. It returns
// nil when stopped by a quit key, an interrupt or ctx; otherwise the fatal
// RENDER, INPUT or TERMINAL error. The terminal is restored before Run
// returns whenever it was acquired.
func (c *Controller) Run(ctx context.Context) (err error) {
	if !c.started.CompareAndSwap(false, true) {
		return errors.New(errors.ErrTerminal, "Dashboard already ran", "Create a new controller for each run.")
	}

	c.setPhase(PhaseStarting)
	// Signals are caught from before the terminal is touched until after it
	// is restored.
	stopSignals := c.opts.Signals.Notify(c.Stop)
	if err := c.acquire(); err != nil {
		stopSignals()
		c.setPhase(PhaseTerminated)
		return err
	}
	defer func() { err = c.release(err, stopSignals) }()

	stopCtx := context.AfterFunc(ctx, c.Stop)
	defer stopCtx()

	c.setPhase(PhaseRunning)
	for !c.stop.Stopped() {
		if err := c.tick(); err != nil {
			return err
		}
	}
	return nil
}

// acquire enables raw mode and enters the alternate screen. If the second
// step fails the first is undone.
func (c *Controller) acquire() error {
	if err := c.term.EnableRawMode(); err != nil {
		return withCode(err, errors.ErrTerminal, "Couldn't take over the terminal")
	}
	if err := c.term.EnterAltScreen(); err != nil {
		if rerr := c.term.DisableRawMode(); rerr != nil {
			c.log.Error("restoring terminal mode: %v", rerr)
		}
		return withCode(err, errors.ErrTerminal, "Couldn't take over the terminal")
	}
	return nil
}

// tick runs one loop iteration.
func (c *Controller) tick() error {
	key, ok, err := c.term.PollKey(c.opts.PollTimeout)
	if err != nil {
		return withCode(err, errors.ErrInput, "Couldn't read keyboard input")
	}
	if ok && isQuitKey(key, c.opts.QuitKeys) {
		c.log.Debug("quit key %q pressed", key)
		c.stop.Set()
	}

	snap := c.sampler.Sample()
	if err := c.renderer.Render(c.term, snap); err != nil {
		return withCode(err, errors.ErrRender, "Couldn't draw the dashboard")
	}

	c.opts.Sleep(c.opts.FrameInterval)
	return nil
}

// release runs the Stopping phase exactly once: leave the alternate screen,
// then disable raw mode, attempting both whatever happens, then remove the
// signal handler. cause, if any, stays the returned error; otherwise a
// restore failure is returned.
func (c *Controller) release(cause error, stopSignals func()) error {
	result := cause
	c.stopOnce.Do(func() {
		c.setPhase(PhaseStopping)
		c.stop.Set()
		if cause != nil {
			c.log.Error("dashboard stopped: %v", cause)
		}

		var restoreErr error
		if err := c.term.LeaveAltScreen(); err != nil {
			c.log.Error("leaving alternate screen: %v", err)
			restoreErr = err
		}
		if err := c.term.DisableRawMode(); err != nil {
			c.log.Error("restoring terminal mode: %v", err)
			if restoreErr == nil {
				restoreErr = err
			}
		}

		stopSignals()

		if result == nil && restoreErr != nil {
			result = withCode(restoreErr, errors.ErrTerminal, "Couldn't restore the terminal")
		}
		c.setPhase(PhaseTerminated)
	})
	return result
}

// withCode returns err unchanged if it already carries a code, otherwise
// wraps it with code and message.
func withCode(err error, code, message string) error {
	if errors.CodeOf(err) != "" {
		return err
	}
	suggestion := ""
	if code != errors.ErrInput {
		suggestion = "Run 'reset' if your shell looks wrong afterwards."
	}
	return errors.WrapWithCode(err, code, message, suggestion)
}
