package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/newthinker/stocksim/internal/app"
	"github.com/newthinker/stocksim/internal/collector/yahoo"
	"github.com/newthinker/stocksim/internal/config"
	"github.com/newthinker/stocksim/internal/core"
	"github.com/newthinker/stocksim/internal/logger"
	"github.com/newthinker/stocksim/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// env is what every command runs with.
type env struct {
	cfg *config.Config
	log *zap.Logger
	app *app.App
	out *report.Printer
}

// emit writes v as JSON when --json is set, otherwise calls text.
func (e *env) emit(v any, text func() error) error {
	if jsonOutput {
		return report.JSON(os.Stdout, v)
	}
	return text()
}

func (e *env) warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

// run loads configuration, opens the app and calls fn with a context that
// is cancelled on SIGINT or SIGTERM.
func run(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) (err error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: debug || cfg.Log.Development,
		File: logger.FileConfig{
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
		},
	})
	if err != nil {
		return core.WrapError(core.ErrConfigInvalid, err)
	}
	defer log.Sync()

	log, _ = logger.WithRun(log.With(zap.String("command", cmd.Name())))
	log.Debug("command started", zap.Strings("args", os.Args[1:]))

	out, err := report.New(os.Stdout, cfg.Output.Currency, cfg.Output.Color)
	if err != nil {
		return err
	}

	a := app.New(cfg, log)
	a.RegisterCollector(yahoo.New(log))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Open(ctx); err != nil {
		return err
	}
	start := time.Now()
	defer func() {
		a.Observe(cmd.Name(), start, err)
		if closeErr := a.Close(); closeErr != nil {
			log.Warn("closing app", zap.Error(closeErr))
		}
		log.Debug("command finished", zap.Duration("duration", time.Since(start)), zap.Error(err))
	}()

	return fn(ctx, &env{cfg: cfg, log: log, app: a, out: out})
}

// amountFlag returns the flag value, or def when the flag was not given.
func amountFlag(cmd *cobra.Command, name string, value, def float64) (float64, error) {
	if !cmd.Flags().Changed(name) {
		value = def
	}
	if err := app.ValidateAmount(value); err != nil {
		return 0, err
	}
	return value, nil
}

// parseTickers normalizes ticker arguments.
func parseTickers(args []string) ([]string, error) {
	tickers := make([]string, 0, len(args))
	for _, arg := range args {
		t, err := app.ParseTicker(arg)
		if err != nil {
			return nil, err
		}
		tickers = append(tickers, t)
	}
	return tickers, nil
}

// inputArgs reports positional argument failures as invalid input.
func inputArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return core.WrapError(core.ErrInvalidInput, err)
		}
		return nil
	}
}

// requireFlags fails with invalid input when any named flag was not given.
func requireFlags(cmd *cobra.Command, names ...string) error {
	var missing []string
	for _, name := range names {
		if !cmd.Flags().Changed(name) {
			missing = append(missing, strconv.Quote(name))
		}
	}
	if len(missing) > 0 {
		return core.Errorf(core.ErrInvalidInput, "required flag(s) %s not set", strings.Join(missing, ", "))
	}
	return nil
}
