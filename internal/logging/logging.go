// Package logging builds the zap logger shared by every command.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the logger flavour.
type Options struct {
	// Debug switches to the human readable development encoder at debug level.
	Debug bool

	// File sends output to a file instead of stderr. Used whenever the
	// full-screen UI owns the terminal.
	File string
}

// New builds a logger. Without Debug only errors are written, as JSON.
func New(opts Options) (*zap.Logger, error) {
	out := []string{"stderr"}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		out = []string{opts.File}
	}

	var cfg zap.Config
	if opts.Debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.Config{
			Level:         zap.NewAtomicLevelAt(zapcore.ErrorLevel),
			Encoding:      "json",
			EncoderConfig: zap.NewProductionEncoderConfig(),
		}
	}
	cfg.OutputPaths = out
	cfg.ErrorOutputPaths = out

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// DefaultFile is the log file used when the UI owns the terminal and no
// file was configured.
func DefaultFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "depsweep", "depsweep.log")
}
