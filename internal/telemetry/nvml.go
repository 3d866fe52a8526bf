//go:build linux

package telemetry

import (
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// nvmlDriver reads devices through the NVIDIA Management Library.
type nvmlDriver struct{}

// NewNVMLDriver returns a Driver backed by libnvidia-ml. Init reports
// ErrUnavailable when the library cannot be loaded.
func NewNVMLDriver() Driver {
	return &nvmlDriver{}
}

func (d *nvmlDriver) Name() string { return "nvml" }

func (d *nvmlDriver) Init() error {
	if ret := nvml.Init(); ret != nvml.SUCCESS {
		return fmt.Errorf("%w: %s", ErrUnavailable, nvml.ErrorString(ret))
	}
	return nil
}

func (d *nvmlDriver) Shutdown() error {
	return nvmlError("shutdown", nvml.Shutdown())
}

func (d *nvmlDriver) DeviceCount() (int, error) {
	count, ret := nvml.DeviceGetCount()
	if err := nvmlError("device count", ret); err != nil {
		return 0, err
	}
	return count, nil
}

func (d *nvmlDriver) DeviceByIndex(index int) (Device, error) {
	dev, ret := nvml.DeviceGetHandleByIndex(index)
	if err := nvmlError(fmt.Sprintf("device %d handle", index), ret); err != nil {
		return nil, err
	}
	return &nvmlDevice{device: dev}, nil
}

type nvmlDevice struct {
	device nvml.Device
}

func (n *nvmlDevice) Name() (string, error) {
	name, ret := n.device.GetName()
	if err := nvmlError("name", ret); err != nil {
		return "", err
	}
	return name, nil
}

func (n *nvmlDevice) Utilization() (uint32, error) {
	rates, ret := n.device.GetUtilizationRates()
	if err := nvmlError("utilization", ret); err != nil {
		return 0, err
	}
	return rates.Gpu, nil
}

func (n *nvmlDevice) MemoryInfo() (MemoryInfo, error) {
	mem, ret := n.device.GetMemoryInfo()
	if err := nvmlError("memory info", ret); err != nil {
		return MemoryInfo{}, err
	}
	return MemoryInfo{Used: mem.Used, Total: mem.Total}, nil
}

func nvmlError(op string, ret nvml.Return) error {
	if ret == nvml.SUCCESS {
		return nil
	}
	return fmt.Errorf("nvml %s: %s", op, nvml.ErrorString(ret))
}
