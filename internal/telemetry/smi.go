package telemetry

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// SMIBinary is the nvidia-smi executable name.
const SMIBinary = "nvidia-smi"

// smiQueryArgs selects one CSV row per GPU: name, utilization.gpu, memory.used, memory.total.
var smiQueryArgs = []string{
	"--query-gpu=name,utilization.gpu,memory.used,memory.total",
	"--format=csv,noheader,nounits",
}

// smiTimeout bounds a single nvidia-smi invocation.
const smiTimeout = 2 * time.Second

// CommandRunner abstracts running external commands.
type CommandRunner interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, arg ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (execRunner) Output(ctx context.Context, name string, arg ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, arg...).Output()
}

// smiDriver reads devices by shelling out to nvidia-smi. DeviceCount runs
// the query and caches its rows; DeviceByIndex serves from that cache.
type smiDriver struct {
	runner CommandRunner
	path   string
	rows   []smiRow
}

// NewSMIDriver returns a Driver backed by the nvidia-smi CLI. A nil runner
// uses os/exec.
func NewSMIDriver(runner CommandRunner) Driver {
	if runner == nil {
		runner = execRunner{}
	}
	return &smiDriver{runner: runner}
}

func (d *smiDriver) Name() string { return SMIBinary }

func (d *smiDriver) Init() error {
	path, err := d.runner.LookPath(SMIBinary)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	d.path = path
	return nil
}

func (d *smiDriver) Shutdown() error {
	d.rows = nil
	return nil
}

func (d *smiDriver) DeviceCount() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), smiTimeout)
	defer cancel()

	out, err := d.runner.Output(ctx, d.path, smiQueryArgs...)
	if err != nil {
		d.rows = nil
		return 0, fmt.Errorf("%s query failed: %w", SMIBinary, err)
	}
	d.rows = parseNvidiaSMI(string(out))
	return len(d.rows), nil
}

func (d *smiDriver) DeviceByIndex(index int) (Device, error) {
	if index < 0 || index >= len(d.rows) {
		return nil, fmt.Errorf("%s: no device at index %d", SMIBinary, index)
	}
	row := d.rows[index]
	if row.err != nil {
		return nil, row.err
	}
	return row, nil
}

// smiRow is one parsed CSV line. Field errors are kept so each getter can
// fail on its own.
type smiRow struct {
	name     string
	util     uint32
	utilErr  error
	used     uint64
	usedErr  error
	total    uint64
	totalErr error
	err      error
}

func (r smiRow) Name() (string, error) {
	if r.name == "" {
		return "", fmt.Errorf("%s: empty name", SMIBinary)
	}
	return r.name, nil
}

func (r smiRow) Utilization() (uint32, error) {
	return r.util, r.utilErr
}

func (r smiRow) MemoryInfo() (MemoryInfo, error) {
	if r.usedErr != nil {
		return MemoryInfo{}, r.usedErr
	}
	if r.totalErr != nil {
		return MemoryInfo{}, r.totalErr
	}
	return MemoryInfo{Used: r.used, Total: r.total}, nil
}

// parseNvidiaSMI parses nvidia-smi CSV output, one row per GPU, in the order
// produced by smiQueryArgs. Blank lines are skipped; a line with too few
// fields becomes a row whose handle lookup fails.
func parseNvidiaSMI(output string) []smiRow {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil
	}

	var rows []smiRow
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rows = append(rows, parseSMILine(line))
	}
	return rows
}

func parseSMILine(line string) smiRow {
	fields := strings.Split(line, ",")
	if len(fields) < 4 {
		return smiRow{err: fmt.Errorf("%s output has insufficient fields: expected 4, got %d", SMIBinary, len(fields))}
	}

	// Names may contain commas; the numeric fields are always the last three.
	n := len(fields)
	row := smiRow{name: strings.TrimSpace(strings.Join(fields[:n-3], ","))}

	util, err := parseSMIUint(fields[n-3], "utilization")
	row.util, row.utilErr = uint32(util), err

	usedMiB, err := parseSMIUint(fields[n-2], "memory used")
	row.used, row.usedErr = usedMiB*1024*1024, err

	totalMiB, err := parseSMIUint(fields[n-1], "memory total")
	row.total, row.totalErr = totalMiB*1024*1024, err

	return row
}

func parseSMIUint(field, what string) (uint64, error) {
	s := strings.TrimSpace(field)
	if s == "" || s == "[N/A]" || s == "[Not Supported]" {
		return 0, fmt.Errorf("%s: %s not available", SMIBinary, what)
	}
	// Some drivers print decimals for utilization.
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s '%s': %w", what, s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s: negative %s '%s'", SMIBinary, what, s)
	}
	return uint64(v), nil
}
