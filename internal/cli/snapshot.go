package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/logger"
	"github.com/rileyhilliard/gpumon/internal/telemetry"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Snapshot output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Text output messages.
const (
	NoDevicesText = "No GPUs detected."
	DegradedText  = "GPU telemetry unavailable; showing placeholder devices."
)

var snapshotFormat string

// snapshotCmd samples once and prints the result
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print one telemetry sample and exit",
	Long: `Sample every GPU once and print the readings without taking over the
terminal. Useful in scripts, over pipes, and anywhere without a TTY.

Examples:
  gpumon snapshot
  gpumon snapshot --format json
  gpumon snapshot --source nvidia-smi --format yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return snapshotCommand(cmd, snapshotFormat)
	},
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotFormat, "format", "f", FormatText, "output format: text, json or yaml")
	rootCmd.AddCommand(snapshotCmd)
}

func snapshotCommand(cmd *cobra.Command, format string) error {
	w := cmd.OutOrStdout()
	err := runSnapshot(cmd, w, format)
	if err == nil || format != FormatJSON {
		return err
	}
	// In JSON mode the failure goes to stdout inside the envelope.
	if werr := WriteJSONFromError(w, err); werr != nil {
		return err
	}
	return errors.NewExitError(ExitCode(err))
}

func runSnapshot(cmd *cobra.Command, w io.Writer, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// Without a log file, messages go to stderr so stdout stays parseable.
	log, closeLog, err := openLogger(cfg, logger.NewEnvLogger("[gpumon]"))
	if err != nil {
		return err
	}
	defer closeLog()

	sampler, err := newSampler(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sampler.Close(); cerr != nil {
			log.Warn("telemetry shutdown: %v", cerr)
		}
	}()

	return writeSnapshot(w, sampler.Sample(), format)
}

func validateFormat(format string) error {
	switch format {
	case FormatText, FormatJSON, FormatYAML:
		return nil
	}
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Unknown output format '%s'", format),
		"Use --format text, json or yaml.")
}

// writeSnapshot prints snap to w in the given format.
func writeSnapshot(w io.Writer, snap telemetry.Snapshot, format string) error {
	if snap.Devices == nil {
		snap.Devices = []telemetry.DeviceMetrics{}
	}

	var err error
	switch format {
	case FormatJSON:
		err = WriteJSONSuccess(w, snap)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(snap); err == nil {
			err = enc.Close()
		}
	default:
		err = writeSnapshotText(w, snap)
	}
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTerminal,
			"Failed to write snapshot", "")
	}
	return nil
}

func writeSnapshotText(w io.Writer, snap telemetry.Snapshot) error {
	if snap.Empty() {
		_, err := fmt.Fprintln(w, NoDevicesText)
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("GPU", "NAME", "USAGE", "MEMORY", "USED", "TOTAL")
	for i, d := range snap.Devices {
		t.Row(
			strconv.Itoa(i),
			d.Name,
			fmt.Sprintf("%d%%", d.UsagePercent),
			fmt.Sprintf("%d%%", d.MemoryPercent),
			gibString(d.MemoryUsedGB),
			gibString(d.MemoryTotalGB),
		)
	}

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	if snap.Degraded {
		_, err := fmt.Fprintln(w, DegradedText)
		return err
	}
	return nil
}

// gibString formats a GiB reading with IEC units, e.g. "3.5 GiB".
func gibString(gib float64) string {
	if gib <= 0 {
		return humanize.IBytes(0)
	}
	return humanize.IBytes(uint64(gib * telemetry.BytesPerGiB))
}
