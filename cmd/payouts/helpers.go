package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmagro/sidecar-payouts/internal/config"
	"github.com/dmagro/sidecar-payouts/internal/logger"
	"github.com/dmagro/sidecar-payouts/internal/output"
)

const (
	formatTerminal = "terminal"
	formatJSON     = "json"
)

// reportedError marks an error whose diagnostic was already written to
// stdout, so main only sets the exit code.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

func checkFormat(format string) error {
	if format != formatTerminal && format != formatJSON {
		return fmt.Errorf("invalid format %q (expected terminal or json)", format)
	}
	return nil
}

// loadConfig resolves the config file, applies the persistent flag
// overrides and any command specific ones, then validates.
func loadConfig(cmd *cobra.Command, overrides ...func(*config.Config)) (*config.Config, error) {
	flags := cmd.Root().PersistentFlags()

	cfgPath, _ := flags.GetString("config")
	if cfgPath == "" {
		if _, err := os.Stat(config.DefaultPath); err == nil {
			cfgPath = config.DefaultPath
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if url, _ := flags.GetString("sidecar-url"); url != "" {
		cfg.Sidecar.URL = url
	}
	if level, _ := flags.GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	for _, apply := range overrides {
		apply(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logger.New(cmd.ErrOrStderr(), logger.Config{
		Level:         cfg.Log.Level,
		HumanFriendly: cfg.Log.HumanFriendly,
	})
}

// renderFailure prints the diagnostic for a failed stage in the requested
// format and wraps err so it is not printed twice.
func renderFailure(w io.Writer, format string, err error) error {
	if format == formatJSON {
		if jsonErr := output.RenderJSON(w, output.JSONFailure{Error: err.Error(), Timestamp: time.Now().UTC()}); jsonErr != nil {
			return errors.Join(err, jsonErr)
		}
	} else {
		output.RenderFailure(w, err)
	}
	return &reportedError{err: err}
}
