package render

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const ellipsis = "..."

// Truncate shortens s to at most width terminal cells, ending in "..." when
// something was cut. Combining marks are removed first since terminals
// disagree on their width.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if clean, _, err := transform.String(t, s); err == nil {
		s = clean
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= len(ellipsis) {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, ellipsis)
}

// fit truncates s to width cells and pads it with spaces to exactly width.
func fit(s string, width int) string {
	s = Truncate(s, width)
	return s + strings.Repeat(" ", max(width-runewidth.StringWidth(s), 0))
}

// center places s in the middle of a width-cell line.
func center(s string, width int) string {
	s = Truncate(s, width)
	gap := max(width-runewidth.StringWidth(s), 0)
	left := gap / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
}

func blank(width, height int) []string {
	lines := make([]string, max(height, 0))
	for i := range lines {
		lines[i] = strings.Repeat(" ", max(width, 0))
	}
	return lines
}
