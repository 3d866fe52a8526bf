package render

import "github.com/charmbracelet/lipgloss"

// Dashboard color palette
const (
	ColorBorder = lipgloss.Color("#2A2A4A")

	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary = lipgloss.Color("#FFFFFF")
	ColorTextMuted   = lipgloss.Color("#6B6B8D")
	ColorAccent      = lipgloss.Color("#FF2E97")
	ColorNotice      = lipgloss.Color("#FFD700")

	// Gauge fills
	ColorUsage  = lipgloss.Color("#00FFFF")
	ColorMemory = lipgloss.Color("#39FF14")
)

// Thresholds for metric severity levels
const (
	WarningThreshold  = 70
	CriticalThreshold = 90
)

// Styles holds every style the renderer uses, bound to one lipgloss renderer
// so the color profile can be fixed (e.g. to Ascii in tests).
type Styles struct {
	Border     lipgloss.Style
	Title      lipgloss.Style
	Text       lipgloss.Style
	Message    lipgloss.Style
	Hint       lipgloss.Style
	GaugeLabel lipgloss.Style
}

// NewStyles creates the dashboard styles for r.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Border: r.NewStyle().
			Foreground(ColorBorder),
		Title: r.NewStyle().
			Foreground(ColorAccent).
			Bold(true),
		Text: r.NewStyle().
			Foreground(ColorTextPrimary),
		Message: r.NewStyle().
			Foreground(ColorNotice),
		Hint: r.NewStyle().
			Foreground(ColorTextMuted),
		GaugeLabel: r.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true),
	}
}

// GaugeColor returns base below the warning threshold and the warning or
// critical color above it.
func GaugeColor(base lipgloss.Color, percent int) lipgloss.Color {
	switch {
	case percent >= CriticalThreshold:
		return ColorCritical
	case percent >= WarningThreshold:
		return ColorWarning
	default:
		return base
	}
}
