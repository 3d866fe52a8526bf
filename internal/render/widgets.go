package render

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
)

// Box drawing characters for panel borders.
const (
	borderTopLeft     = "┌"
	borderTopRight    = "┐"
	borderBottomLeft  = "└"
	borderBottomRight = "┘"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// Gauge fill characters.
const (
	gaugeFull  = '█'
	gaugeEmpty = '░'
)

// panel draws a bordered box of exactly width x height cells with title set
// into the top border. body lines must already be width-2 cells wide; missing
// lines are left blank and extra lines are dropped. Boxes too small for a
// border are drawn blank.
func (s Styles) panel(title string, body []string, width, height int) []string {
	if width < 2 || height < 2 {
		return blank(width, height)
	}
	innerW, innerH := width-2, height-2

	lines := make([]string, 0, height)
	lines = append(lines, s.topBorder(title, innerW))

	side := s.Border.Render(borderVertical)
	empty := strings.Repeat(" ", innerW)
	for i := 0; i < innerH; i++ {
		content := empty
		if i < len(body) {
			content = body[i]
		}
		lines = append(lines, side+content+side)
	}

	lines = append(lines, s.Border.Render(borderBottomLeft+strings.Repeat(borderHorizontal, innerW)+borderBottomRight))
	return lines
}

// topBorder renders ┌Title────┐ for an inner width of innerW.
func (s Styles) topBorder(title string, innerW int) string {
	title = Truncate(title, innerW)
	fill := innerW - runewidth.StringWidth(title)
	return s.Border.Render(borderTopLeft) +
		s.Title.Render(title) +
		s.Border.Render(strings.Repeat(borderHorizontal, fill)+borderTopRight)
}

// textBody turns text into panel body lines of exactly width cells, one per
// newline-separated line, truncating rather than wrapping.
func textBody(text string, style lipgloss.Style, width int) []string {
	if width <= 0 {
		return nil
	}
	src := strings.Split(text, "\n")
	lines := make([]string, len(src))
	for i, line := range src {
		lines[i] = style.Render(fit(line, width))
	}
	return lines
}

// clampPercent bounds a gauge value to 0-100.
func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// gauge draws the inside of a gauge panel: a bar filled to percent on every
// line and label centered on the middle line. percent is clamped to 0-100.
type gauge struct {
	percent int
	label   string
	color   lipgloss.Color
}

func (g gauge) body(s Styles, profile termenv.Profile, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	pct := clampPercent(g.percent)

	if height == 1 {
		label := Truncate(g.label, width)
		barW := width - runewidth.StringWidth(label) - 1
		if barW < 1 {
			return []string{s.GaugeLabel.Render(fit(label, width))}
		}
		return []string{g.bar(profile, barW, pct) + " " + s.GaugeLabel.Render(label)}
	}

	bar := g.bar(profile, width, pct)
	lines := make([]string, height)
	for i := range lines {
		lines[i] = bar
	}
	lines[height/2] = s.GaugeLabel.Render(center(g.label, width))
	return lines
}

func (g gauge) bar(profile termenv.Profile, width, pct int) string {
	bar := progress.New(
		progress.WithWidth(width),
		progress.WithoutPercentage(),
		progress.WithSolidFill(string(g.color)),
		progress.WithColorProfile(profile),
	)
	bar.Full, bar.Empty = gaugeFull, gaugeEmpty
	return bar.ViewAs(float64(pct) / 100)
}
