//go:build !linux

package telemetry

import "fmt"

// NewNVMLDriver returns a Driver that is never available; NVML is only
// wired on Linux.
func NewNVMLDriver() Driver {
	return unsupportedDriver{}
}

type unsupportedDriver struct{}

func (unsupportedDriver) Name() string { return "nvml" }

func (unsupportedDriver) Init() error {
	return fmt.Errorf("%w: nvml is not supported on this platform", ErrUnavailable)
}

func (unsupportedDriver) Shutdown() error                   { return nil }
func (unsupportedDriver) DeviceCount() (int, error)         { return 0, ErrUnavailable }
func (unsupportedDriver) DeviceByIndex(int) (Device, error) { return nil, ErrUnavailable }
