package telemetry

// BytesPerGiB is the number of bytes in one gibibyte.
const BytesPerGiB = 1024 * 1024 * 1024

// DeviceMetrics holds one GPU's readings for a single poll.
type DeviceMetrics struct {
	Name          string  `json:"name" yaml:"name"`
	UsagePercent  int     `json:"usage_percent" yaml:"usage_percent"`
	MemoryPercent int     `json:"memory_percent" yaml:"memory_percent"`
	MemoryUsedGB  float64 `json:"memory_used_gb" yaml:"memory_used_gb"`
	MemoryTotalGB float64 `json:"memory_total_gb" yaml:"memory_total_gb"`
}

// Snapshot is the ordered set of devices seen in one poll, in enumeration order.
type Snapshot struct {
	Devices []DeviceMetrics `json:"devices" yaml:"devices"`
	// Degraded is true when Devices are placeholders because no driver
	// could be initialised.
	Degraded bool `json:"degraded" yaml:"degraded"`
}

// Len returns the number of devices in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Devices)
}

// Empty reports whether the snapshot has no devices.
func (s Snapshot) Empty() bool {
	return len(s.Devices) == 0
}

// MemoryPercent returns used/total*100 truncated toward zero and capped at 100.
// A zero total yields 0.
func MemoryPercent(used, total uint64) int {
	if total == 0 {
		return 0
	}
	pct := int(float64(used) / float64(total) * 100)
	if pct > 100 {
		return 100
	}
	return pct
}

// ToGiB converts a byte count to gibibytes.
func ToGiB(b uint64) float64 {
	return float64(b) / BytesPerGiB
}
