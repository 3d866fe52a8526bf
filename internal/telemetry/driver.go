package telemetry

import "errors"

// ErrUnavailable is returned by Driver.Init when the hardware interface
// (driver library, binary, or device nodes) is not present.
var ErrUnavailable = errors.New("hardware management interface unavailable")

// MemoryInfo is a device's framebuffer memory in bytes.
type MemoryInfo struct {
	Used  uint64
	Total uint64
}

// Driver abstracts the hardware management interface.
type Driver interface {
	// Name identifies the driver in logs (e.g. "nvml").
	Name() string
	Init() error
	Shutdown() error
	DeviceCount() (int, error)
	DeviceByIndex(index int) (Device, error)
}

// Device is a handle to a single GPU. Each getter may fail independently.
type Device interface {
	Name() (string, error)
	Utilization() (uint32, error)
	MemoryInfo() (MemoryInfo, error)
}

// noDriver never initialises, forcing the placeholder list.
type noDriver struct{}

// NoDriver returns a Driver that always reports ErrUnavailable.
func NoDriver() Driver {
	return noDriver{}
}

func (noDriver) Name() string                      { return "mock" }
func (noDriver) Init() error                       { return ErrUnavailable }
func (noDriver) Shutdown() error                   { return nil }
func (noDriver) DeviceCount() (int, error)         { return 0, ErrUnavailable }
func (noDriver) DeviceByIndex(int) (Device, error) { return nil, ErrUnavailable }
