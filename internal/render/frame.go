package render

import "strings"

// Frame is one fully composed screen. Lines holds exactly Height lines,
// each Width cells wide once escape sequences are ignored.
type Frame struct {
	Width   int
	Height  int
	Regions []Rect
	lines   []string
}

func newFrame(area Rect, regions []Rect) *Frame {
	return &Frame{
		Width:   max(area.Width, 0),
		Height:  max(area.Height, 0),
		Regions: regions,
	}
}

// add appends a block of lines, dropping anything past the frame height.
func (f *Frame) add(block []string) {
	room := f.Height - len(f.lines)
	if room <= 0 {
		return
	}
	if len(block) > room {
		block = block[:room]
	}
	f.lines = append(f.lines, block...)
}

// finish pads the frame with blank lines up to its height.
func (f *Frame) finish() {
	if missing := f.Height - len(f.lines); missing > 0 {
		f.lines = append(f.lines, blank(f.Width, missing)...)
	}
}

// Lines returns a copy of the frame's lines.
func (f *Frame) Lines() []string {
	out := make([]string, len(f.lines))
	copy(out, f.lines)
	return out
}

// String joins the frame's lines with newlines.
func (f *Frame) String() string {
	return strings.Join(f.lines, "\n")
}

// Surface is where frames are displayed.
type Surface interface {
	// Size returns the drawable area in cells.
	Size() (width, height int, err error)
	// Commit displays f in a single write.
	Commit(f *Frame) error
}
