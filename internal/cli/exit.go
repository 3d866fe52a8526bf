package cli

import "github.com/rileyhilliard/gpumon/internal/errors"

// Process exit codes.
const (
	ExitOK     = 0
	ExitError  = 1
	ExitConfig = 2
)

// ExitCode maps err to the process exit code. An ExitError carries its own
// code; CONFIG errors exit with ExitConfig and everything else with ExitError.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if code, ok := errors.GetExitCode(err); ok {
		return code
	}
	if errors.CodeOf(err) == errors.ErrConfig {
		return ExitConfig
	}
	return ExitError
}
