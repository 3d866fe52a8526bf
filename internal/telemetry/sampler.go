package telemetry

import (
	"fmt"

	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/logger"
)

// Sampler builds Snapshots from a Driver. It is owned by one goroutine and
// is not safe for concurrent use.
type Sampler struct {
	driver     Driver
	maxDevices int
	log        logger.Logger

	ready  bool
	warned bool
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithMaxDevices caps real device lists to n and switches the placeholder
// list to the limited variant. Zero or less means no cap.
func WithMaxDevices(n int) Option {
	return func(s *Sampler) {
		if n > 0 {
			s.maxDevices = n
		}
	}
}

// WithLogger sets the logger used for degraded-mode and fetch messages.
func WithLogger(l logger.Logger) Option {
	return func(s *Sampler) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSampler creates a sampler over d. A nil driver behaves like NoDriver.
func NewSampler(d Driver, opts ...Option) *Sampler {
	if d == nil {
		d = NoDriver()
	}
	s := &Sampler{
		driver: d,
		log:    logger.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Variant returns the placeholder variant this sampler falls back to.
func (s *Sampler) Variant() Variant {
	if s.maxDevices > 0 {
		return VariantLimited
	}
	return VariantAll
}

// Sample returns the current snapshot. It never fails; see the package
// documentation for how errors are absorbed.
func (s *Sampler) Sample() Snapshot {

	if !s.ensureInit() {
		return Fallback(s.Variant())
	}

	count, err := s.driver.DeviceCount()
	if err != nil {
		s.log.Debug("%s: device count failed: %v", s.driver.Name(), err)
		count = 0
	}
	if s.maxDevices > 0 && count > s.maxDevices {
		count = s.maxDevices
	}

	devices := make([]DeviceMetrics, 0, count)
	for i := 0; i < count; i++ {
		dev, err := s.driver.DeviceByIndex(i)
		if err != nil || dev == nil {
			s.log.Debug("%s: skipping device %d: %v", s.driver.Name(), i, err)
			continue
		}
		devices = append(devices, s.readDevice(i, dev))
	}
	return Snapshot{Devices: devices}
}

// ensureInit initialises the driver once. Until that succeeds every call
// retries, so a driver that shows up later is picked up.
func (s *Sampler) ensureInit() bool {
	if s.ready {
		return true
	}
	if err := s.driver.Init(); err != nil {
		if !s.warned {
			s.log.Info("%s unavailable, showing placeholder devices: %v", s.driver.Name(), err)
			s.warned = true
		}
		return false
	}
	s.log.Info("%s initialised", s.driver.Name())
	s.ready = true
	return true
}

func (s *Sampler) readDevice(index int, dev Device) DeviceMetrics {
	m := DeviceMetrics{
		Name:         s.nameOrDefault(index, dev),
		UsagePercent: s.usageOrDefault(index, dev),
	}
	m.MemoryPercent, m.MemoryUsedGB, m.MemoryTotalGB = s.memoryOrDefault(index, dev)
	return m
}

func (s *Sampler) nameOrDefault(index int, dev Device) string {
	name, err := dev.Name()
	if err != nil || name == "" {
		s.log.Debug("device %d: name unavailable: %v", index, err)
		return fmt.Sprintf("GPU %d", index)
	}
	return name
}

func (s *Sampler) usageOrDefault(index int, dev Device) int {
	util, err := dev.Utilization()
	if err != nil {
		s.log.Debug("device %d: utilization unavailable: %v", index, err)
		return 0
	}
	return int(util)
}

func (s *Sampler) memoryOrDefault(index int, dev Device) (percent int, usedGB, totalGB float64) {
	mem, err := dev.MemoryInfo()
	if err != nil {
		s.log.Debug("device %d: memory info unavailable: %v", index, err)
		return 0, 0, 0
	}
	return MemoryPercent(mem.Used, mem.Total), ToGiB(mem.Used), ToGiB(mem.Total)
}

// Close shuts the driver down if it was initialised. A failed shutdown is
// returned as a TELEMETRY error.
func (s *Sampler) Close() error {
	if !s.ready {
		return nil
	}
	s.ready = false
	if err := s.driver.Shutdown(); err != nil {
		return errors.WrapWithCode(err, errors.ErrTelemetry,
			fmt.Sprintf("Couldn't shut down %s", s.driver.Name()), "")
	}
	return nil
}
