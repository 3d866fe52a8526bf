package screen

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/cancelreader"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/render"
	"golang.org/x/term"
)

const readBufferSize = 256

// TTY is an interactive terminal. It is not safe for concurrent use apart
// from the internal key reader, which only talks to PollKey through channels.
type TTY struct {
	in    *os.File
	out   io.Writer
	outFd int

	state  *term.State
	reader cancelreader.CancelReader
	keys   chan Key
	errs   chan error
	done   chan struct{}

	mu      sync.Mutex
	readErr error
}

// Open returns the process terminal (stdin and stdout). It fails with a
// TERMINAL error when either is not a terminal.
func Open() (*TTY, error) {
	return OpenFiles(os.Stdin, os.Stdout)
}

// OpenFiles is Open for explicit files.
func OpenFiles(in, out *os.File) (*TTY, error) {
	if !term.IsTerminal(int(in.Fd())) || !term.IsTerminal(int(out.Fd())) {
		return nil, errors.New(errors.ErrTerminal,
			"The dashboard needs an interactive terminal",
			"Run it from a terminal, or use 'gpumon snapshot' to print readings once.")
	}
	return &TTY{in: in, out: out, outFd: int(out.Fd())}, nil
}

// EnableRawMode puts stdin in raw mode and starts reading keys.
func (t *TTY) EnableRawMode() error {
	if t.state != nil {
		return nil
	}
	state, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTerminal,
			"Couldn't switch the terminal to raw mode", "")
	}

	reader, err := cancelreader.NewReader(t.in)
	if err != nil {
		_ = term.Restore(int(t.in.Fd()), state)
		return errors.WrapWithCode(err, errors.ErrInput,
			"Couldn't start reading keyboard input", "")
	}

	t.state = state
	t.startReader(reader)
	return nil
}

func (t *TTY) startReader(reader cancelreader.CancelReader) {
	t.reader = reader
	t.keys = make(chan Key, 64)
	t.errs = make(chan error, 1)
	t.done = make(chan struct{})
	go t.readLoop(reader)
}

func (t *TTY) readLoop(reader cancelreader.CancelReader) {
	defer close(t.done)
	buf := make([]byte, readBufferSize)
	for {
		n, err := reader.Read(buf)
		for _, k := range decodeKeys(buf[:n]) {
			select {
			case t.keys <- k:
			default:
				// Nobody is polling fast enough; drop the key.
			}
		}
		if err != nil {
			if err != cancelreader.ErrCanceled {
				t.errs <- err
			}
			return
		}
	}
}

// DisableRawMode stops the key reader and restores the saved terminal mode.
func (t *TTY) DisableRawMode() error {
	if t.state == nil {
		return nil
	}
	t.stopReader()

	err := term.Restore(int(t.in.Fd()), t.state)
	t.state = nil
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTerminal,
			"Couldn't restore the terminal mode",
			"Run 'reset' if your shell looks wrong.")
	}
	return nil
}

func (t *TTY) stopReader() {
	if t.reader == nil {
		return
	}
	// Cancel returns false on platforms where the read can't be interrupted;
	// the goroutine then ends with the process.
	if t.reader.Cancel() {
		<-t.done
	}
	_ = t.reader.Close()
	t.reader = nil
}

// EnterAltScreen switches to the alternate screen buffer and hides the cursor.
func (t *TTY) EnterAltScreen() error {
	return t.writeSeq("Couldn't switch to the alternate screen",
		termenv.AltScreenSeq, fmt.Sprintf(termenv.EraseDisplaySeq, 2), termenv.HideCursorSeq)
}

// LeaveAltScreen shows the cursor and returns to the primary screen buffer.
func (t *TTY) LeaveAltScreen() error {
	return t.writeSeq("Couldn't leave the alternate screen",
		termenv.ShowCursorSeq, termenv.ExitAltScreenSeq)
}

func (t *TTY) writeSeq(failure string, seqs ...string) error {
	var b strings.Builder
	for _, s := range seqs {
		b.WriteString(termenv.CSI + s)
	}
	if _, err := io.WriteString(t.out, b.String()); err != nil {
		return errors.WrapWithCode(err, errors.ErrTerminal, failure, "")
	}
	return nil
}

// PollKey waits up to timeout for a keypress. ok is false when none arrived.
// A failed read is returned as an INPUT error, on this and every later call.
func (t *TTY) PollKey(timeout time.Duration) (key Key, ok bool, err error) {
	if err := t.stickyErr(); err != nil {
		return "", false, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case k := <-t.keys:
		return k, true, nil
	case err := <-t.errs:
		wrapped := errors.WrapWithCode(err, errors.ErrInput,
			"Couldn't read keyboard input", "")
		t.mu.Lock()
		t.readErr = wrapped
		t.mu.Unlock()
		return "", false, wrapped
	case <-timer.C:
		return "", false, nil
	}
}

func (t *TTY) stickyErr() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readErr
}

// Size returns the terminal size in cells.
func (t *TTY) Size() (width, height int, err error) {
	return term.GetSize(t.outFd)
}

// Commit draws f over the whole screen with one write: cursor home, each
// line followed by erase-to-end-of-line, then erase below.
func (t *TTY) Commit(f *render.Frame) error {
	_, err := io.WriteString(t.out, encodeFrame(f.Lines()))
	return err
}

func encodeFrame(lines []string) string {
	var b strings.Builder
	b.WriteString(termenv.CSI + fmt.Sprintf(termenv.CursorPositionSeq, 1, 1))
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\r\n")
		}
		b.WriteString(line)
		b.WriteString(termenv.CSI + termenv.EraseLineRightSeq)
	}
	b.WriteString(termenv.CSI + fmt.Sprintf(termenv.EraseDisplaySeq, 0))
	return b.String()
}
