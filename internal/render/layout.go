package render

import "fmt"

// Rect is a rectangular area of terminal cells.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the rect covers no cells.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Direction is the axis a Split divides along.
type Direction int

const (
	Vertical Direction = iota
	Horizontal
)

type constraintKind int

const (
	kindLength constraintKind = iota
	kindMin
	kindPercentage
)

// Constraint sizes one region of a Split.
type Constraint struct {
	kind  constraintKind
	value int
}

// Length asks for exactly n cells.
func Length(n int) Constraint { return Constraint{kind: kindLength, value: n} }

// Min asks for at least n cells and absorbs any space left over.
func Min(n int) Constraint { return Constraint{kind: kindMin, value: n} }

// Percentage asks for p percent of the area being split.
func Percentage(p int) Constraint { return Constraint{kind: kindPercentage, value: p} }

func (c Constraint) String() string {
	switch c.kind {
	case kindMin:
		return fmt.Sprintf("Min(%d)", c.value)
	case kindPercentage:
		return fmt.Sprintf("Percentage(%d)", c.value)
	default:
		return fmt.Sprintf("Length(%d)", c.value)
	}
}

func (c Constraint) want(total int) int {
	v := max(c.value, 0)
	if c.kind == kindPercentage {
		return total * min(v, 100) / 100
	}
	return v
}

// Split divides area along dir into one region per constraint.
//
// Regions are allocated in order. A region that does not fit gets whatever
// space remains, possibly none, but is still returned, so the result always
// has len(cs) entries. Space left after every constraint is satisfied goes to
// the first Min constraint, or to the last region if there is none.
func Split(area Rect, dir Direction, cs []Constraint) []Rect {
	total := area.Height
	if dir == Horizontal {
		total = area.Width
	}
	total = max(total, 0)

	sizes := make([]int, len(cs))
	remaining := total
	for i, c := range cs {
		sizes[i] = min(c.want(total), remaining)
		remaining -= sizes[i]
	}
	if remaining > 0 && len(cs) > 0 {
		sizes[absorber(cs)] += remaining
	}

	rects := make([]Rect, len(cs))
	offset := 0
	for i, size := range sizes {
		r := area
		if dir == Horizontal {
			r.X, r.Width = area.X+offset, size
		} else {
			r.Y, r.Height = area.Y+offset, size
		}
		rects[i] = r
		offset += size
	}
	return rects
}

func absorber(cs []Constraint) int {
	for i, c := range cs {
		if c.kind == kindMin {
			return i
		}
	}
	return len(cs) - 1
}

// Region heights and widths of the dashboard.
const (
	TitleHeight     = 3
	DeviceRowHeight = 6
	HintHeight      = 1

	EmptyTitleHeight   = 5
	EmptyMessageHeight = 5

	InfoPanelWidth  = 25
	GaugePercentage = 37
)

// Layout returns the vertical regions for a snapshot with the given number
// of devices: title, one row per device, quit hint. With no devices it
// returns title, message and hint regions.
func Layout(area Rect, devices int) []Rect {
	if devices <= 0 {
		return Split(area, Vertical, []Constraint{
			Length(EmptyTitleHeight),
			Min(EmptyMessageHeight),
			Length(HintHeight),
		})
	}

	cs := make([]Constraint, 0, devices+2)
	cs = append(cs, Length(TitleHeight))
	for i := 0; i < devices; i++ {
		cs = append(cs, Length(DeviceRowHeight))
	}
	cs = append(cs, Length(HintHeight))
	return Split(area, Vertical, cs)
}

// RowLayout splits a device row into the info panel, usage gauge and memory gauge.
func RowLayout(row Rect) []Rect {
	return Split(row, Horizontal, []Constraint{
		Length(InfoPanelWidth),
		Percentage(GaugePercentage),
		Percentage(GaugePercentage),
	})
}
