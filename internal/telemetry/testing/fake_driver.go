// Package testing provides test doubles for the telemetry package.
package testing

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rileyhilliard/gpumon/internal/telemetry"
)

// ErrFetch is the default error returned by failing fake getters.
var ErrFetch = errors.New("fake fetch error")

// FakeDevice is a scripted GPU. Set the *Err fields to make a getter fail.
type FakeDevice struct {
	DeviceName string
	NameErr    error
	Util       uint32
	UtilErr    error
	Memory     telemetry.MemoryInfo
	MemoryErr  error
}

func (d *FakeDevice) Name() (string, error) {
	if d.NameErr != nil {
		return "", d.NameErr
	}
	return d.DeviceName, nil
}

func (d *FakeDevice) Utilization() (uint32, error) {
	if d.UtilErr != nil {
		return 0, d.UtilErr
	}
	return d.Util, nil
}

func (d *FakeDevice) MemoryInfo() (telemetry.MemoryInfo, error) {
	if d.MemoryErr != nil {
		return telemetry.MemoryInfo{}, d.MemoryErr
	}
	return d.Memory, nil
}

// FakeDriver simulates a hardware management interface for testing.
// A nil entry in Devices makes DeviceByIndex fail for that index.
type FakeDriver struct {
	mu sync.Mutex

	// Configuration
	InitErr     error
	CountErr    error
	ShutdownErr error
	Devices     []*FakeDevice

	// Call tracking
	InitCalls     int
	ShutdownCalls int
	CountCalls    int
}

// NewFakeDriver creates a driver that initialises successfully and exposes devices.
func NewFakeDriver(devices ...*FakeDevice) *FakeDriver {
	return &FakeDriver{Devices: devices}
}

// NewUnavailableDriver creates a driver whose Init always fails.
func NewUnavailableDriver() *FakeDriver {
	return &FakeDriver{InitErr: telemetry.ErrUnavailable}
}

func (f *FakeDriver) Name() string { return "fake" }

func (f *FakeDriver) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InitCalls++
	return f.InitErr
}

func (f *FakeDriver) Shutdown() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ShutdownCalls++
	return f.ShutdownErr
}

func (f *FakeDriver) DeviceCount() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CountCalls++
	if f.CountErr != nil {
		return 0, f.CountErr
	}
	return len(f.Devices), nil
}

func (f *FakeDriver) DeviceByIndex(index int) (telemetry.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= len(f.Devices) || f.Devices[index] == nil {
		return nil, fmt.Errorf("fake: no device at index %d", index)
	}
	return f.Devices[index], nil
}

// SetInitErr changes the Init result, e.g. to simulate a driver appearing later.
func (f *FakeDriver) SetInitErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InitErr = err
}
