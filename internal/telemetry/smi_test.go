package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCommandRunner simulates nvidia-smi.
type mockCommandRunner struct {
	outputs map[string]string // command line -> output
	lookErr error
	err     error
	calls   int
}

func (m *mockCommandRunner) LookPath(file string) (string, error) {
	if m.lookErr != nil {
		return "", m.lookErr
	}
	return "/usr/bin/" + file, nil
}

func (m *mockCommandRunner) Output(_ context.Context, name string, arg ...string) ([]byte, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	key := name + " " + strings.Join(arg, " ")
	if out, ok := m.outputs[key]; ok {
		return []byte(out), nil
	}
	return nil, fmt.Errorf("mock command not found: %s", key)
}

const smiKey = "/usr/bin/nvidia-smi --query-gpu=name,utilization.gpu,memory.used,memory.total --format=csv,noheader,nounits"

func TestParseNvidiaSMI(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		wantRows int
		check    func(t *testing.T, rows []smiRow)
	}{
		{
			name:     "empty output",
			output:   "",
			wantRows: 0,
		},
		{
			name:     "single GPU",
			output:   "NVIDIA GeForce RTX 3080, 45, 2048, 10240\n",
			wantRows: 1,
			check: func(t *testing.T, rows []smiRow) {
				name, err := rows[0].Name()
				require.NoError(t, err)
				assert.Equal(t, "NVIDIA GeForce RTX 3080", name)

				util, err := rows[0].Utilization()
				require.NoError(t, err)
				assert.Equal(t, uint32(45), util)

				mem, err := rows[0].MemoryInfo()
				require.NoError(t, err)
				assert.Equal(t, uint64(2048*1024*1024), mem.Used)
				assert.Equal(t, uint64(10240*1024*1024), mem.Total)
			},
		},
		{
			name:     "two GPUs with blank line",
			output:   "Tesla T4, 10, 100, 15360\n\nTesla T4, 90, 15000, 15360\n",
			wantRows: 2,
			check: func(t *testing.T, rows []smiRow) {
				util, err := rows[1].Utilization()
				require.NoError(t, err)
				assert.Equal(t, uint32(90), util)
			},
		},
		{
			name:     "N/A utilization",
			output:   "NVIDIA A100-SXM4-40GB, [N/A], 0, 40960",
			wantRows: 1,
			check: func(t *testing.T, rows []smiRow) {
				_, err := rows[0].Utilization()
				assert.Error(t, err)
				_, err = rows[0].MemoryInfo()
				assert.NoError(t, err)
			},
		},
		{
			name:     "name containing a comma",
			output:   "Acme GPU, Rev 2, 5, 1024, 2048",
			wantRows: 1,
			check: func(t *testing.T, rows []smiRow) {
				name, err := rows[0].Name()
				require.NoError(t, err)
				assert.Equal(t, "Acme GPU, Rev 2", name)
			},
		},
		{
			name:     "insufficient fields",
			output:   "broken, 1",
			wantRows: 1,
			check: func(t *testing.T, rows []smiRow) {
				assert.Error(t, rows[0].err)
			},
		},
		{
			name:     "garbage memory",
			output:   "GPU, 1, lots, 2048",
			wantRows: 1,
			check: func(t *testing.T, rows []smiRow) {
				_, err := rows[0].MemoryInfo()
				assert.Error(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := parseNvidiaSMI(tt.output)
			require.Len(t, rows, tt.wantRows)
			if tt.check != nil {
				tt.check(t, rows)
			}
		})
	}
}

func TestSMIDriver_InitUnavailable(t *testing.T) {
	d := NewSMIDriver(&mockCommandRunner{lookErr: errors.New("executable file not found in $PATH")})

	err := d.Init()
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSMIDriver_SampleThroughSampler(t *testing.T) {
	runner := &mockCommandRunner{outputs: map[string]string{
		smiKey: "Tesla T4, 50, 7680, 15360\nbroken\nTesla V100, [N/A], 1024, 16384\n",
	}}

	snap := NewSampler(NewSMIDriver(runner)).Sample()

	require.Len(t, snap.Devices, 2, "the malformed row is dropped")
	assert.Equal(t, DeviceMetrics{Name: "Tesla T4", UsagePercent: 50, MemoryPercent: 50, MemoryUsedGB: 7.5, MemoryTotalGB: 15}, snap.Devices[0])
	assert.Equal(t, "Tesla V100", snap.Devices[1].Name)
	assert.Equal(t, 0, snap.Devices[1].UsagePercent)
	assert.Equal(t, 6, snap.Devices[1].MemoryPercent)
	assert.Equal(t, 1, runner.calls)
}

func TestSMIDriver_QueryFailure(t *testing.T) {
	runner := &mockCommandRunner{err: errors.New("exit status 9")}
	d := NewSMIDriver(runner)
	require.NoError(t, d.Init())

	count, err := d.DeviceCount()
	assert.Error(t, err)
	assert.Equal(t, 0, count)

	_, err = d.DeviceByIndex(0)
	assert.Error(t, err)
}

func TestSMIDriver_NoDriverFallsBack(t *testing.T) {
	runner := &mockCommandRunner{lookErr: errors.New("not found")}

	snap := NewSampler(NewSMIDriver(runner)).Sample()

	assert.True(t, snap.Degraded)
	assert.Equal(t, Fallback(VariantAll), snap)
	assert.Equal(t, 0, runner.calls)
}
