package config

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/telemetry"
)

// Validate checks cfg and returns a CONFIG error describing the first problem.
func Validate(cfg *Config) error {
	if err := validateSource(cfg.Source); err != nil {
		return err
	}

	if cfg.PollTimeout <= 0 || cfg.PollTimeout > MaxInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("poll_timeout must be between 0 and %s, got %s", MaxInterval, cfg.PollTimeout),
			"Use a duration like 100ms")
	}

	if cfg.FrameInterval < 0 || cfg.FrameInterval > MaxInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("frame_interval must be between 0s and %s, got %s", MaxInterval, cfg.FrameInterval),
			"Use a duration like 100ms, or 0s to redraw without pausing")
	}

	if cfg.MaxGPUs < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("max_gpus can't be negative, got %d", cfg.MaxGPUs),
			"Use 0 to show every GPU")
	}

	return validateQuitKey(cfg.QuitKey)
}

func validateSource(source string) error {
	for _, s := range telemetry.Sources() {
		if source == s {
			return nil
		}
	}
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Unknown telemetry source '%s'", source),
		"Pick one of: "+strings.Join(telemetry.Sources(), ", "))
}

func validateQuitKey(key string) error {
	r, size := utf8.DecodeRuneInString(key)
	if key == "" || size != len(key) || r == utf8.RuneError || !unicode.IsPrint(r) || unicode.IsSpace(r) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("quit_key must be a single printable character, got %q", key),
			"Use something like q or x. Ctrl+C always quits.")
	}
	return nil
}
