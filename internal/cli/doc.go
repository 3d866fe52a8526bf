// Package cli implements the gpumon command-line interface.
//
// The root command runs the dashboard: it loads settings, takes over the
// terminal and hands the loop to dashboard.Controller until the quit key,
// Ctrl+C or a signal stops it. Subcommands:
//
//	gpumon snapshot     - Sample once and print (text, json or yaml)
//	gpumon version      - Print build information
//	gpumon completion   - Generate shell completion scripts
//
// # Flag Handling
//
// Settings flags (--source, --poll-timeout, --interval, --max-gpus,
// --quit-key, --log-file, --debug) are persistent on the root command and
// bound to viper per invocation, so flags beat GPUMON_* environment
// variables, which beat the config file. Bad flags and invalid settings are
// CONFIG errors and exit with code 2.
package cli
