package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/gpumon/internal/config"
	"github.com/rileyhilliard/gpumon/internal/dashboard"
	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/logger"
	"github.com/rileyhilliard/gpumon/internal/render"
	"github.com/rileyhilliard/gpumon/internal/screen"
	"github.com/rileyhilliard/gpumon/internal/telemetry"
	"github.com/spf13/cobra"
)

// Global flags
var cfgFile string

// settingsFlags maps config keys to the persistent flags that override them.
var settingsFlags = map[string]string{
	config.KeySource:        "source",
	config.KeyPollTimeout:   "poll-timeout",
	config.KeyFrameInterval: "interval",
	config.KeyMaxGPUs:       "max-gpus",
	config.KeyQuitKey:       "quit-key",
	config.KeyLogFile:       "log-file",
	config.KeyDebug:         "debug",
}

// rootCmd runs the dashboard
var rootCmd = &cobra.Command{
	Use:   "gpumon",
	Short: "Real-time GPU monitoring dashboard",
	Long: `Show a full-screen, live-updating dashboard of GPU usage and memory.

Telemetry comes from NVML by default. When no driver is available the
dashboard keeps running with placeholder devices.

Keyboard shortcuts:
  q / Ctrl+C  Quit

Examples:
  gpumon
  gpumon --source nvidia-smi
  gpumon --interval 500ms --max-gpus 2`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd)
	},
}

func init() {
	d := config.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ~/.config/gpumon/config.yaml)")
	flags.String("source", d.Source, "telemetry source: nvml, nvidia-smi or mock")
	flags.Duration("poll-timeout", d.PollTimeout, "how long each iteration waits for a key")
	flags.Duration("interval", d.FrameInterval, "pause between frames (0s redraws continuously)")
	flags.Int("max-gpus", d.MaxGPUs, "show at most this many GPUs (0 = all)")
	flags.String("quit-key", d.QuitKey, "key that quits the dashboard")
	flags.String("log-file", d.LogFile, "append logs to this file (default: discard)")
	flags.Bool("debug", d.Debug, "log debug messages")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid flag",
			fmt.Sprintf("Run '%s --help' for usage.", cmd.CommandPath()))
	})
}

// Execute runs the root command and exits with the code for its error.
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if err == nil {
		return
	}
	if _, ok := errors.GetExitCode(err); !ok {
		msg := err.Error()
		if !strings.HasSuffix(msg, "\n") {
			msg += "\n"
		}
		fmt.Fprint(os.Stderr, msg)
	}
	os.Exit(ExitCode(err))
}

// loadConfig merges the config file, environment and the flags of cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.NewViper()
	for key, name := range settingsFlags {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to bind flag --"+name, "")
		}
	}
	return config.Load(v, cfgFile)
}

// openLogger returns a file logger when cfg names a log file, otherwise
// fallback. The returned func closes the file.
func openLogger(cfg *config.Config, fallback logger.Logger) (logger.Logger, func(), error) {
	if cfg.LogFile == "" {
		return fallback, func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't open log file: "+cfg.LogFile,
			"Check that the directory exists and is writable, or drop --log-file.")
	}
	return logger.New(f, "[gpumon]", cfg.Debug), func() { _ = f.Close() }, nil
}

// newSampler builds the telemetry sampler for cfg.
func newSampler(cfg *config.Config, log logger.Logger) (*telemetry.Sampler, error) {
	driver, err := telemetry.NewDriver(cfg.Source)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Unknown telemetry source",
			"Use --source nvml, nvidia-smi or mock.")
	}
	return telemetry.NewSampler(driver,
		telemetry.WithMaxDevices(cfg.MaxGPUs),
		telemetry.WithLogger(log),
	), nil
}

// dashboardCommand runs the dashboard until it is told to stop.
func dashboardCommand(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Nothing may reach stdout or stderr while the dashboard owns the screen.
	log, closeLog, err := openLogger(cfg, logger.Noop())
	if err != nil {
		return err
	}
	defer closeLog()

	sampler, err := newSampler(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sampler.Close(); cerr != nil {
			log.Warn("telemetry shutdown: %v", cerr)
		}
	}()

	tty, err := screen.Open()
	if err != nil {
		return err
	}

	ctrl := dashboard.NewController(tty, sampler,
		render.New(render.WithOutput(os.Stdout), render.WithQuitKey(cfg.QuitKey)),
		dashboard.Options{
			PollTimeout:   cfg.PollTimeout,
			FrameInterval: cfg.FrameInterval,
			QuitKeys:      dashboard.QuitKeys(cfg.QuitKey),
			Signals:       dashboard.NewOSSignals(),
			Logger:        log,
		})

	log.Info("starting dashboard (source %s)", cfg.Source)
	return ctrl.Run(cmd.Context())
}
