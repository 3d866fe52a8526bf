package config

import "time"

// Config holds the dashboard settings. Every field has a default that
// reproduces the standard behaviour, so an empty config file is valid.
type Config struct {
	// Source selects the telemetry driver: "nvml", "nvidia-smi" or "mock".
	Source string `yaml:"source" mapstructure:"source"`

	// PollTimeout bounds the wait for a keypress in each loop iteration.
	PollTimeout time.Duration `yaml:"poll_timeout" mapstructure:"poll_timeout"`

	// FrameInterval is the sleep after each frame.
	FrameInterval time.Duration `yaml:"frame_interval" mapstructure:"frame_interval"`

	// MaxGPUs caps the number of devices shown. 0 shows all of them.
	MaxGPUs int `yaml:"max_gpus" mapstructure:"max_gpus"`

	// QuitKey is the single character that quits the dashboard.
	// Ctrl+C always quits as well.
	QuitKey string `yaml:"quit_key" mapstructure:"quit_key"`

	// LogFile receives log output while the dashboard runs. Empty discards it.
	// Supports ~ for the home directory.
	LogFile string `yaml:"log_file" mapstructure:"log_file"`

	// Debug enables debug-level log messages.
	Debug bool `yaml:"debug" mapstructure:"debug"`
}

// Defaults
const (
	DefaultSource        = "nvml"
	DefaultPollTimeout   = 100 * time.Millisecond
	DefaultFrameInterval = 100 * time.Millisecond
	DefaultQuitKey       = "q"

	// MaxInterval bounds poll_timeout and frame_interval.
	MaxInterval = 5 * time.Second
)

// DefaultConfig returns a Config with the standard settings.
func DefaultConfig() *Config {
	return &Config{
		Source:        DefaultSource,
		PollTimeout:   DefaultPollTimeout,
		FrameInterval: DefaultFrameInterval,
		MaxGPUs:       0,
		QuitKey:       DefaultQuitKey,
	}
}
