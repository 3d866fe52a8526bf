package dashboard_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/rileyhilliard/gpumon/internal/dashboard"
	gpuerrors "github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/logger"
	"github.com/rileyhilliard/gpumon/internal/render"
	"github.com/rileyhilliard/gpumon/internal/screen"
	scrtesting "github.com/rileyhilliard/gpumon/internal/screen/testing"
	"github.com/rileyhilliard/gpumon/internal/telemetry"
	teltesting "github.com/rileyhilliard/gpumon/internal/telemetry/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSignals captures the interrupt handler so tests can fire it.
// onNotify and onStop, when set, run as the handler is added and removed.
type fakeSignals struct {
	mu       sync.Mutex
	handler  func()
	stops    int
	onNotify func()
	onStop   func()
}

func (f *fakeSignals) Notify(fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = fn
	if f.onNotify != nil {
		f.onNotify()
	}
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.stops++
		if f.onStop != nil {
			f.onStop()
		}
	}
}

func (f *fakeSignals) Fire() {
	f.mu.Lock()
	fn := f.handler
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// recordingRenderer records the snapshots it was asked to draw.
type recordingRenderer struct {
	snaps []telemetry.Snapshot
	err   error
}

func (r *recordingRenderer) Render(s render.Surface, snap telemetry.Snapshot) error {
	r.snaps = append(r.snaps, snap)
	return r.err
}

// countingSampler returns a snapshot whose single device reports the call number.
type countingSampler struct {
	calls int
}

func (s *countingSampler) Sample() telemetry.Snapshot {
	s.calls++
	return telemetry.Snapshot{Devices: []telemetry.DeviceMetrics{{Name: "gpu", UsagePercent: s.calls}}}
}

type sleepRecorder struct {
	durations []time.Duration
}

func (s *sleepRecorder) Sleep(d time.Duration) {
	s.durations = append(s.durations, d)
}

func newRenderer() *render.Renderer {
	return render.New(render.WithOutput(io.Discard), render.WithColorProfile(termenv.Ascii))
}

func degradedSampler() *telemetry.Sampler {
	return telemetry.NewSampler(teltesting.NewUnavailableDriver())
}

func noSleep(time.Duration) {}

func assertRestoredOnce(t *testing.T, term *scrtesting.FakeTerminal) {
	t.Helper()
	assert.Equal(t, 1, term.LeaveAltCalls, "alternate screen left exactly once")
	assert.Equal(t, 1, term.DisableRawCalls, "raw mode disabled exactly once")

	events := term.EventLog()
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, []string{scrtesting.EventAltOff, scrtesting.EventRawOff}, events[len(events)-2:],
		"restoration is the last thing that happens, alt screen first")
}

func TestRun_InterruptStopsAtNextIteration(t *testing.T) {
	term := scrtesting.NewFakeTerminal()
	signals := &fakeSignals{}
	term.OnPoll = func(call int) {
		if call == 3 {
			signals.Fire()
		}
	}
	c := dashboard.NewController(term, degradedSampler(), newRenderer(), dashboard.Options{
		Signals: signals,
		Sleep:   noSleep,
	})

	err := c.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, term.PollCalls, "the interrupted iteration finishes, then the loop exits")
	assert.Equal(t, 3, term.CommitCalls)
	assertRestoredOnce(t, term)
	assert.Equal(t, 1, signals.stops, "signal handler is removed")
	assert.Equal(t, dashboard.PhaseTerminated, c.Phase())
	assert.True(t, c.Stopped())

	frame := stripANSI(term.LastFrame().String())
	assert.Contains(t, frame, "GPU 0 (No NVML)")
	assert.Contains(t, frame, "2 GPUs detected")
}

func TestRun_RenderFailureIsFatal(t *testing.T) {
	ioErr := errors.New("write /dev/pts/0: input/output error")
	term := scrtesting.NewFakeTerminal()
	term.CommitErr = ioErr
	term.CommitErrAfter = 1
	log := logger.NewBufferLogger()

	c := dashboard.NewController(term, degradedSampler(), newRenderer(), dashboard.Options{
		Sleep:  noSleep,
		Logger: log,
	})

	err := c.Run(context.Background())

	require.Error(t, err)
	assert.True(t, gpuerrors.IsCode(err, gpuerrors.ErrRender))
	assert.ErrorIs(t, err, ioErr)
	assert.Equal(t, 2, term.CommitCalls, "no retry after the failed commit")
	assertRestoredOnce(t, term)
	assert.Equal(t, dashboard.PhaseTerminated, c.Phase())
	assert.True(t, log.HasLevel("error"))
}

func TestRun_QuitKey(t *testing.T) {
	tests := []struct {
		name      string
		keys      []screen.Key
		quitKeys  []screen.Key
		wantPolls int
	}{
		{name: "q", keys: []screen.Key{"x", "q"}, wantPolls: 2},
		{name: "ctrl+c in raw mode", keys: []screen.Key{screen.KeyCtrlC}, wantPolls: 1},
		{name: "custom quit key", keys: []screen.Key{"q", "x"}, quitKeys: dashboard.QuitKeys("x"), wantPolls: 2},
		{name: "keys after quit are not read", keys: []screen.Key{"q", "q", "q"}, wantPolls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := scrtesting.NewFakeTerminal(tt.keys...)
			c := dashboard.NewController(term, degradedSampler(), newRenderer(), dashboard.Options{
				QuitKeys: tt.quitKeys,
				Sleep:    noSleep,
			})

			require.NoError(t, c.Run(context.Background()))

			assert.Equal(t, tt.wantPolls, term.PollCalls)
			assert.Equal(t, tt.wantPolls, term.CommitCalls, "the quitting iteration still renders")
			assertRestoredOnce(t, term)
		})
	}
}

func TestRun_InputFailureIsFatal(t *testing.T) {
	readErr := errors.New("read /dev/stdin: bad file descriptor")
	term := scrtesting.NewFakeTerminal()
	term.PollErr = readErr
	term.PollErrAfter = 2

	c := dashboard.NewController(term, degradedSampler(), newRenderer(), dashboard.Options{Sleep: noSleep})

	err := c.Run(context.Background())

	require.Error(t, err)
	assert.True(t, gpuerrors.IsCode(err, gpuerrors.ErrInput))
	assert.ErrorIs(t, err, readErr)
	assert.Equal(t, 2, term.CommitCalls, "nothing is rendered after the failed read")
	assertRestoredOnce(t, term)
}

func TestRun_IterationOrder(t *testing.T) {
	term := scrtesting.NewFakeTerminal("a", "b", "q")
	sampler := &countingSampler{}
	renderer := &recordingRenderer{}
	sleeper := &sleepRecorder{}

	c := dashboard.NewController(term, sampler, renderer, dashboard.Options{Sleep: sleeper.Sleep})
	require.NoError(t, c.Run(context.Background()))

	require.Len(t, renderer.snaps, 3)
	for i, snap := range renderer.snaps {
		assert.Equal(t, i+1, snap.Devices[0].UsagePercent, "render %d sees the snapshot sampled in the same iteration", i)
	}
	assert.Equal(t, 3, sampler.calls)
	assert.Equal(t, []time.Duration{
		dashboard.DefaultFrameInterval,
		dashboard.DefaultFrameInterval,
		dashboard.DefaultFrameInterval,
	}, sleeper.durations)
	assert.Equal(t, []time.Duration{
		dashboard.DefaultPollTimeout,
		dashboard.DefaultPollTimeout,
		dashboard.DefaultPollTimeout,
	}, term.Timeouts)

	var cycle []string
	for _, e := range term.EventLog() {
		if e == scrtesting.EventPoll || e == scrtesting.EventRawOn || e == scrtesting.EventAltOn {
			cycle = append(cycle, e)
		}
	}
	assert.Equal(t, []string{scrtesting.EventRawOn, scrtesting.EventAltOn, scrtesting.EventPoll, scrtesting.EventPoll, scrtesting.EventPoll}, cycle,
		"raw mode, then the alternate screen, then the loop")
}

func TestRun_CustomTiming(t *testing.T) {
	term := scrtesting.NewFakeTerminal("q")
	sleeper := &sleepRecorder{}

	c := dashboard.NewController(term, &countingSampler{}, &recordingRenderer{}, dashboard.Options{
		PollTimeout:   250 * time.Millisecond,
		FrameInterval: time.Second,
		Sleep:         sleeper.Sleep,
	})
	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, []time.Duration{250 * time.Millisecond}, term.Timeouts)
	assert.Equal(t, []time.Duration{time.Second}, sleeper.durations)
}

func TestRun_ContextCancellation(t *testing.T) {
	term := scrtesting.NewFakeTerminal()
	ctx, cancel := context.WithCancel(context.Background())
	term.OnPoll = func(call int) {
		if call == 2 {
			cancel()
		}
	}

	c := dashboard.NewController(term, degradedSampler(), newRenderer(), dashboard.Options{
		Sleep: func(time.Duration) { time.Sleep(time.Millisecond) },
	})

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
	assert.GreaterOrEqual(t, term.PollCalls, 2)
	assertRestoredOnce(t, term)
}

func TestRun_StopBeforeLoop(t *testing.T) {
	term := scrtesting.NewFakeTerminal()
	c := dashboard.NewController(term, degradedSampler(), newRenderer(), dashboard.Options{Sleep: noSleep})
	c.Stop()

	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 0, term.PollCalls)
	assert.Equal(t, 1, term.EnterAltCalls)
	assertRestoredOnce(t, term)
}

func TestRun_SignalsCoverTerminalTakeover(t *testing.T) {
	term := scrtesting.NewFakeTerminal()
	var atNotify, atStop []string
	signals := &fakeSignals{
		onNotify: func() { atNotify = term.EventLog() },
		onStop:   func() { atStop = term.EventLog() },
	}
	term.OnPoll = func(int) { signals.Fire() }

	c := dashboard.NewController(term, degradedSampler(), newRenderer(), dashboard.Options{
		Signals: signals,
		Sleep:   noSleep,
	})
	require.NoError(t, c.Run(context.Background()))

	assert.Empty(t, atNotify, "handler is installed before raw mode")
	require.GreaterOrEqual(t, len(atStop), 2)
	assert.Equal(t, []string{scrtesting.EventAltOff, scrtesting.EventRawOff}, atStop[len(atStop)-2:],
		"handler is removed only after the terminal is restored")
	assert.Equal(t, 1, signals.stops)
}

func TestRun_AcquireFailureRemovesSignalHandler(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*scrtesting.FakeTerminal)
	}{
		{name: "raw mode", setup: func(f *scrtesting.FakeTerminal) { f.RawErr = errors.New("ioctl") }},
		{name: "alt screen", setup: func(f *scrtesting.FakeTerminal) { f.AltErr = errors.New("broken pipe") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := scrtesting.NewFakeTerminal()
			tt.setup(term)
			signals := &fakeSignals{}

			c := dashboard.NewController(term, degradedSampler(), newRenderer(), dashboard.Options{
				Signals: signals,
				Sleep:   noSleep,
			})
			require.Error(t, c.Run(context.Background()))

			assert.Equal(t, 1, signals.stops)
		})
	}
}

func TestRun_RawModeFailure(t *testing.T) {
	term := scrtesting.NewFakeTerminal()
	term.RawErr = errors.New("inappropriate ioctl for device")

	c := dashboard.NewController(term, degradedSampler(), newRenderer(), dashboard.Options{Sleep: noSleep})
	err := c.Run(context.Background())

	require.Error(t, err)
	assert.True(t, gpuerrors.IsCode(err, gpuerrors.ErrTerminal))
	assert.Equal(t, 0, term.EnterAltCalls)
	assert.Equal(t, 0, term.DisableRawCalls, "nothing was acquired, nothing to restore")
	assert.Equal(t, 0, term.PollCalls)
	assert.Equal(t, dashboard.PhaseTerminated, c.Phase())
}

func TestRun_AltScreenFailureUndoesRawMode(t *testing.T) {
	term := scrtesting.NewFakeTerminal()
	term.AltErr = errors.New("write: broken pipe")

	c := dashboard.NewController(term, degradedSampler(), newRenderer(), dashboard.Options{Sleep: noSleep})
	err := c.Run(context.Background())

	require.Error(t, err)
	assert.True(t, gpuerrors.IsCode(err, gpuerrors.ErrTerminal))
	assert.Equal(t, 1, term.DisableRawCalls)
	assert.Equal(t, 0, term.LeaveAltCalls)
	assert.Equal(t, 0, term.PollCalls)
}

func TestRun_RestoreFailures(t *testing.T) {
	leaveErr := errors.New("leave failed")
	rawErr := errors.New("restore failed")

	t.Run("reported after a clean stop", func(t *testing.T) {
		term := scrtesting.NewFakeTerminal("q")
		term.LeaveAltErr = leaveErr

		err := dashboard.NewController(term, degradedSampler(), newRenderer(), dashboard.Options{Sleep: noSleep}).
			Run(context.Background())

		require.Error(t, err)
		assert.True(t, gpuerrors.IsCode(err, gpuerrors.ErrTerminal))
		assert.ErrorIs(t, err, leaveErr)
		assert.Equal(t, 1, term.DisableRawCalls, "raw mode is restored even when leaving the alt screen fails")
	})

	t.Run("fatal cause wins", func(t *testing.T) {
		term := scrtesting.NewFakeTerminal()
		term.CommitErr = errors.New("commit failed")
		term.RestoreRawErr = rawErr

		err := dashboard.NewController(term, degradedSampler(), newRenderer(), dashboard.Options{Sleep: noSleep}).
			Run(context.Background())

		require.Error(t, err)
		assert.True(t, gpuerrors.IsCode(err, gpuerrors.ErrRender))
		assert.NotErrorIs(t, err, rawErr)
		assertRestoredOnce(t, term)
	})
}

func TestRun_OnlyOnce(t *testing.T) {
	term := scrtesting.NewFakeTerminal("q")
	c := dashboard.NewController(term, degradedSampler(), newRenderer(), dashboard.Options{Sleep: noSleep})

	require.NoError(t, c.Run(context.Background()))
	err := c.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, term.EnableRawCalls)
	assertRestoredOnce(t, term)
}

func TestRun_LiveDevices(t *testing.T) {
	driver := teltesting.NewFakeDriver(&teltesting.FakeDevice{
		DeviceName: "Tesla T4",
		Util:       45,
		Memory:     telemetry.MemoryInfo{Used: 3 * telemetry.BytesPerGiB, Total: 15 * telemetry.BytesPerGiB},
	})
	term := scrtesting.NewFakeTerminal("q")
	term.Width, term.Height = 120, 12

	c := dashboard.NewController(term, telemetry.NewSampler(driver), newRenderer(), dashboard.Options{Sleep: noSleep})
	require.NoError(t, c.Run(context.Background()))

	frame := stripANSI(term.LastFrame().String())
	assert.Contains(t, frame, "1 GPU detected")
	assert.Contains(t, frame, "Tesla T4")
	assert.Contains(t, frame, "Usage: 45%")
	assert.Contains(t, frame, "3.0 GB / 15.0 GB")
	assert.Contains(t, frame, "Memory Usage 20%")
}

func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 0x40 || s[j] > 0x7e) {
				j++
			}
			i = j
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
