package telemetry

import "fmt"

// FallbackDeviceCount is the number of placeholder devices shown when no
// driver can be initialised.
const FallbackDeviceCount = 2

// NoHardwareSuffix marks placeholder device names.
const NoHardwareSuffix = "(No NVML)"

// Variant selects which placeholder formula the fallback uses.
type Variant int

const (
	// VariantAll backs the default "every GPU" view.
	VariantAll Variant = iota
	// VariantLimited backs views capped to a maximum device count.
	VariantLimited
)

// String returns a human-readable variant name.
func (v Variant) String() string {
	switch v {
	case VariantLimited:
		return "limited"
	default:
		return "all"
	}
}

// Fallback returns the placeholder snapshot for the given variant.
// Values depend only on the device index, so repeated calls are identical.
func Fallback(v Variant) Snapshot {
	devices := make([]DeviceMetrics, 0, FallbackDeviceCount)
	for i := 0; i < FallbackDeviceCount; i++ {
		devices = append(devices, fallbackDevice(v, i))
	}
	return Snapshot{Devices: devices, Degraded: true}
}

func fallbackDevice(v Variant, i int) DeviceMetrics {
	name := fmt.Sprintf("GPU %d %s", i, NoHardwareSuffix)
	if v == VariantLimited {
		return DeviceMetrics{
			Name:          name,
			UsagePercent:  i * 25,
			MemoryPercent: i*30 + 20,
			MemoryUsedGB:  float64(i)*1.5 + 2.0,
			MemoryTotalGB: 8.0,
		}
	}
	return DeviceMetrics{
		Name:          name,
		UsagePercent:  i*25 + 10,
		MemoryPercent: i*30 + 20,
		MemoryUsedGB:  float64(i)*2.0 + 3.5,
		MemoryTotalGB: 12.0,
	}
}
