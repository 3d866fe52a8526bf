package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. GPUMON_MAX_GPUS.
	EnvPrefix = "GPUMON"
	// GlobalConfigDir is the directory for the user config, relative to home.
	GlobalConfigDir = ".config/gpumon"
	// GlobalConfigFile is the user config file name.
	GlobalConfigFile = "config.yaml"
)

// Config keys, shared by the config file, environment and flags.
const (
	KeySource        = "source"
	KeyPollTimeout   = "poll_timeout"
	KeyFrameInterval = "frame_interval"
	KeyMaxGPUs       = "max_gpus"
	KeyQuitKey       = "quit_key"
	KeyLogFile       = "log_file"
	KeyDebug         = "debug"
)

// NewViper returns a viper instance with defaults and GPUMON_* environment
// overrides set. Callers bind flags on it before calling Load, giving the
// precedence flags > environment > config file > defaults.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault(KeySource, d.Source)
	v.SetDefault(KeyPollTimeout, d.PollTimeout)
	v.SetDefault(KeyFrameInterval, d.FrameInterval)
	v.SetDefault(KeyMaxGPUs, d.MaxGPUs)
	v.SetDefault(KeyQuitKey, d.QuitKey)
	v.SetDefault(KeyLogFile, d.LogFile)
	v.SetDefault(KeyDebug, d.Debug)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag), which must exist
// 2. ~/.config/gpumon/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		path := ExpandTilde(explicit)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path passed to --config")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", nil
	}
	global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
	if _, err := os.Stat(global); err == nil {
		return global, nil
	}
	return "", nil
}

// Load reads the config file found for explicit (if any) into v, then
// decodes and validates the merged settings. A nil v uses NewViper.
func Load(v *viper.Viper, explicit string) (*Config, error) {
	if v == nil {
		v = NewViper()
	}

	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check "+path+" is valid YAML")
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		where := "the environment and flags"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the values in "+where)
	}
	cfg.LogFile = ExpandTilde(cfg.LogFile)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
