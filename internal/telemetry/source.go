package telemetry

import (
	"fmt"
	"sort"
)

// Source names accepted by NewDriver.
const (
	SourceNVML = "nvml"
	SourceSMI  = "nvidia-smi"
	SourceMock = "mock"
)

var driverFactories = map[string]func() Driver{
	SourceNVML: NewNVMLDriver,
	SourceSMI:  func() Driver { return NewSMIDriver(nil) },
	SourceMock: NoDriver,
}

// Sources returns the accepted source names, sorted.
func Sources() []string {
	names := make([]string, 0, len(driverFactories))
	for name := range driverFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDriver returns the driver registered under source.
func NewDriver(source string) (Driver, error) {
	factory, ok := driverFactories[source]
	if !ok {
		return nil, fmt.Errorf("unknown telemetry source %q", source)
	}
	return factory(), nil
}
