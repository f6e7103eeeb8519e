// Package logging builds the zap logger shared by the kitchen commands.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/poku-e/kitchen/internal/config"
)

// Options control where and how verbosely the logger writes.
type Options struct {
	Verbose bool
	// Interactive is set for the TUI: with no log file configured, output
	// goes to TUIFile(app) so it does not garble the alternate screen.
	Interactive bool
	App         string
}

// TUIFile is the fallback log path used while a TUI owns the terminal.
func TUIFile(app string) string {
	return filepath.Join(os.TempDir(), app+".log")
}

// New builds a production zap logger from cfg. Verbose forces debug level.
func New(cfg config.LoggingConfig, opts Options) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.DisableStacktrace = true

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	out := cfg.File
	if out == "" && opts.Interactive {
		app := opts.App
		if app == "" {
			app = "kitchen"
		}
		out = TUIFile(app)
	}
	if out != "" {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		zc.OutputPaths = []string{out}
		zc.ErrorOutputPaths = []string{out}
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if opts.App != "" {
		logger = logger.Named(opts.App)
	}
	return logger, nil
}
