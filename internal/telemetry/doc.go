// Package telemetry produces per-poll GPU snapshots.
//
// A Sampler asks a Driver (NVML, nvidia-smi, or none) for every present
// device and builds a Snapshot from it. Sampling never fails outward:
//
//   - a field that cannot be fetched falls back to its default
//     (name "GPU {i}", usage 0, memory 0) and the device is kept
//   - a device whose handle cannot be obtained is left out
//   - a driver that cannot be initialised yields a fixed, deterministic
//     list of two placeholder devices whose names carry "(No NVML)"
//
// Snapshots are built fresh on every call and never mutated afterwards.
package telemetry
