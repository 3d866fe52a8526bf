package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/telemetry"
)

// Fixed dashboard texts.
const (
	TitleText        = "Real-time GPU Monitoring"
	EmptyTitleText   = "GPU Monitor"
	EmptyHeadline    = "GPU Monitor - No GPUs detected or NVML unavailable"
	EmptyMessage     = "No GPU data available.\nMake sure NVIDIA drivers and NVML are properly installed."
	UsageGaugeTitle  = "GPU Usage %"
	DefaultQuitKey   = "q"
	hintFormat       = "Press '%s' to quit"
	deviceTitleFmt   = "GPU %d"
	memoryTitleFmt   = "Memory Usage %d%%"
	memoryLabelFmt   = "%.1f GB / %.1f GB"
	deviceInfoFormat = "%s\nUsage: %d%%\nMemory: %d%%"
)

// Renderer draws snapshots. It holds no per-frame state.
type Renderer struct {
	styles  Styles
	profile termenv.Profile
	quitKey string
}

// Option configures a Renderer.
type Option func(*rendererConfig)

type rendererConfig struct {
	output  io.Writer
	profile *termenv.Profile
	quitKey string
}

// WithOutput sets the writer whose capabilities determine the color profile.
// Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(c *rendererConfig) { c.output = w }
}

// WithColorProfile forces a color profile, e.g. termenv.Ascii for plain text.
func WithColorProfile(p termenv.Profile) Option {
	return func(c *rendererConfig) { c.profile = &p }
}

// WithQuitKey sets the key named in the quit hint.
func WithQuitKey(key string) Option {
	return func(c *rendererConfig) {
		if key != "" {
			c.quitKey = key
		}
	}
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	cfg := rendererConfig{output: os.Stdout, quitKey: DefaultQuitKey}
	for _, opt := range opts {
		opt(&cfg)
	}

	lr := lipgloss.NewRenderer(cfg.output)
	if cfg.profile != nil {
		lr.SetColorProfile(*cfg.profile)
	}
	return &Renderer{
		styles:  NewStyles(lr),
		profile: lr.ColorProfile(),
		quitKey: cfg.quitKey,
	}
}

// Render draws snap onto s. Size and commit failures are returned as RENDER
// errors and are not retried.
func (r *Renderer) Render(s Surface, snap telemetry.Snapshot) error {
	w, h, err := s.Size()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrRender,
			"Couldn't read the terminal size",
			"The terminal may have been closed.")
	}
	if err := s.Commit(r.Draw(Rect{Width: w, Height: h}, snap)); err != nil {
		return errors.WrapWithCode(err, errors.ErrRender,
			"Couldn't draw the dashboard",
			"The terminal may have been closed.")
	}
	return nil
}

// Draw composes the frame for snap in area without touching any terminal.
func (r *Renderer) Draw(area Rect, snap telemetry.Snapshot) *Frame {
	regions := Layout(area, snap.Len())
	f := newFrame(area, regions)

	if snap.Empty() {
		r.drawEmpty(f, regions)
	} else {
		r.drawDevices(f, regions, snap.Devices)
	}

	f.finish()
	return f
}

func (r *Renderer) drawEmpty(f *Frame, regions []Rect) {
	title, message, hint := regions[0], regions[1], regions[2]

	f.add(r.styles.panel(EmptyTitleText,
		textBody(EmptyHeadline, r.styles.Text, title.Width-2),
		title.Width, title.Height))
	f.add(r.styles.panel("",
		textBody(EmptyMessage, r.styles.Message, message.Width-2),
		message.Width, message.Height))
	f.add(r.hint(hint))
}

func (r *Renderer) drawDevices(f *Frame, regions []Rect, devices []telemetry.DeviceMetrics) {
	title := regions[0]
	f.add(r.styles.panel(TitleText,
		textBody(DeviceCountText(len(devices)), r.styles.Text, title.Width-2),
		title.Width, title.Height))

	for i, dev := range devices {
		f.add(r.deviceRow(i, dev, regions[i+1]))
	}

	f.add(r.hint(regions[len(regions)-1]))
}

// deviceRow draws the info panel and both gauges for one device.
func (r *Renderer) deviceRow(index int, dev telemetry.DeviceMetrics, row Rect) []string {
	if row.Height <= 0 {
		return nil
	}
	cols := RowLayout(row)
	info, usage, memory := cols[0], cols[1], cols[2]

	infoText := fmt.Sprintf(deviceInfoFormat, dev.Name, dev.UsagePercent, dev.MemoryPercent)
	// Gauge bars and percent texts show clamped values; GB labels stay raw.
	usagePct, memPct := clampPercent(dev.UsagePercent), clampPercent(dev.MemoryPercent)
	usageGauge := gauge{
		percent: usagePct,
		label:   fmt.Sprintf("%d%%", usagePct),
		color:   GaugeColor(ColorUsage, usagePct),
	}
	memGauge := gauge{
		percent: memPct,
		label:   fmt.Sprintf(memoryLabelFmt, dev.MemoryUsedGB, dev.MemoryTotalGB),
		color:   GaugeColor(ColorMemory, memPct),
	}

	blocks := []string{
		strings.Join(r.styles.panel(fmt.Sprintf(deviceTitleFmt, index),
			textBody(infoText, r.styles.Text, info.Width-2),
			info.Width, info.Height), "\n"),
		strings.Join(r.styles.panel(UsageGaugeTitle,
			usageGauge.body(r.styles, r.profile, usage.Width-2, usage.Height-2),
			usage.Width, usage.Height), "\n"),
		strings.Join(r.styles.panel(fmt.Sprintf(memoryTitleFmt, memPct),
			memGauge.body(r.styles, r.profile, memory.Width-2, memory.Height-2),
			memory.Width, memory.Height), "\n"),
	}
	return joinColumns(blocks, row.Height)
}

// joinColumns places blocks side by side. Every block must have height lines.
func joinColumns(blocks []string, height int) []string {
	var nonEmpty []string
	for _, b := range blocks {
		if b != "" {
			nonEmpty = append(nonEmpty, b)
		}
	}
	if len(nonEmpty) == 0 {
		return blank(0, height)
	}
	return strings.Split(lipgloss.JoinHorizontal(lipgloss.Top, nonEmpty...), "\n")
}

func (r *Renderer) hint(area Rect) []string {
	if area.Height <= 0 {
		return nil
	}
	lines := blank(area.Width, area.Height)
	lines[0] = r.styles.Hint.Render(fit(HintText(r.quitKey), area.Width))
	return lines
}

// DeviceCountText returns "1 GPU detected" or "N GPUs detected".
func DeviceCountText(n int) string {
	if n == 1 {
		return "1 GPU detected"
	}
	return fmt.Sprintf("%d GPUs detected", n)
}

// HintText returns the quit hint for key.
func HintText(key string) string {
	return fmt.Sprintf(hintFormat, key)
}
