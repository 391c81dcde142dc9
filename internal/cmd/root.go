package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/Iron-Ham/diffwatch/internal/config"
	"github.com/Iron-Ham/diffwatch/internal/errors"
	"github.com/Iron-Ham/diffwatch/internal/highlight"
	"github.com/Iron-Ham/diffwatch/internal/logging"
	"github.com/Iron-Ham/diffwatch/internal/render"
	"github.com/Iron-Ham/diffwatch/internal/runner"
	"github.com/Iron-Ham/diffwatch/internal/watch"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the diffwatch command with its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "diffwatch [flags] COMMAND...",
		Short: "Run a command repeatedly and show its output",
		Long: `diffwatch runs COMMAND through a shell every interval and redraws its
standard output full screen. With --differences, characters that changed
since the previous run are highlighted.

The comparison is by position: an inserted character highlights everything
after it on the screen.

Examples:
  # Refresh every 2 seconds
  diffwatch date

  # Every half second, highlighting changes
  diffwatch -n 0.5 -d 'ls -l /tmp'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, v)
		},
	}

	flags := rootCmd.Flags()
	// Everything after the first positional argument belongs to the command.
	flags.SetInterspersed(false)

	flags.Float64P("interval", "n", config.Default().Watch.Interval, "seconds to wait between runs")
	flags.BoolP("differences", "d", false, "highlight changes between runs")
	flags.BoolP("no-title", "t", false, "hide the header line")
	flags.Bool("truncate-title", false, "cut a header wider than the terminal to fit")
	flags.String("shell", config.Default().Watch.Shell, "shell used to run the command")
	invalidUTF8 := invalidUTF8Flag(config.Default().Display.InvalidUTF8)
	flags.VarPF(&invalidUTF8, "preserve-invalid", "", "show invalid UTF-8 as U+FFFD instead of dropping it").NoOptDefVal = "true"
	flags.StringP("config", "c", "", "config file (default is $HOME/.config/diffwatch/config.yaml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "write logs to this file instead of stderr")

	bindFlags(v, flags)

	return rootCmd
}

// bindFlags maps flags onto config keys so flags override file and env values.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	bindings := map[string]string{
		"watch.interval":         "interval",
		"watch.shell":            "shell",
		"display.differences":    "differences",
		"display.no_title":       "no-title",
		"display.truncate_title": "truncate-title",
		"display.invalid_utf8":   "preserve-invalid",
		"logging.level":          "log-level",
		"logging.file":           "log-file",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind --%s to %s: %v", name, key, err))
		}
	}
}

// invalidUTF8Flag is a switch whose value is a display.invalid_utf8 mode,
// so viper reads it like the config key it overrides.
type invalidUTF8Flag string

func (f *invalidUTF8Flag) String() string {
	return string(*f)
}

func (f *invalidUTF8Flag) Set(s string) error {
	preserve, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*f = config.InvalidUTF8Drop
	if preserve {
		*f = config.InvalidUTF8Preserve
	}
	return nil
}

// Type is empty so help lists the flag as a plain switch.
func (f *invalidUTF8Flag) Type() string {
	return ""
}

func runWatch(cmd *cobra.Command, args []string, v *viper.Viper) error {
	// Past argument validation, errors are not usage mistakes.
	cmd.SilenceUsage = true

	command := strings.Join(args, " ")
	if strings.TrimSpace(command) == "" {
		return errors.NewValidationError("command must not be empty").WithField("command")
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	if err := config.Init(v, cfgFile); err != nil {
		return errors.Wrap(err, "failed to read config")
	}
	cfg, err := config.Load(v)
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Close()

	mode := highlight.ModeDrop
	if cfg.Display.PreserveInvalidUTF8() {
		mode = highlight.ModePreserve
	}

	w := watch.New(
		watch.Options{
			Command:     command,
			Interval:    cfg.Watch.Interval,
			Differences: cfg.Display.Differences,
		},
		runner.NewShellRunner(cfg.Watch.Shell),
		highlight.New(mode),
		newRenderer(cmd.OutOrStdout(), cfg.Display),
		logger.With("shell", cfg.Watch.Shell),
	)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return w.Run(ctx)
}

func newLogger(cfg config.LoggingConfig) (*logging.Logger, error) {
	level := logging.ParseLevel(cfg.Level)
	if cfg.File == "" {
		return logging.NewLogger("", level)
	}

	logger, err := logging.NewLoggerWithRotation(cfg.File, level, logging.RotationConfig{
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create logger for %s", cfg.File)
	}
	return logger, nil
}

// commandContext returns the context passed to ExecuteContext, if any.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// newRenderer draws to out, truncating the header only when asked to.
func newRenderer(out io.Writer, cfg config.DisplayConfig) *render.Renderer {
	r := render.New(out, !cfg.NoTitle)
	if cfg.TruncateTitle {
		r.WithWidth(terminalWidth(out))
	}
	return r
}

// terminalWidth returns the column count of out, or 0 when out is not a
// terminal.
func terminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(f.Fd()) {
		return 0
	}
	width, _, err := term.GetSize(f.Fd())
	if err != nil {
		return 0
	}
	return width
}
