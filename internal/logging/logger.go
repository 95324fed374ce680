// Package logging builds the zap logger used across the survey builder and
// hands out per-category child loggers.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"slogansurvey/internal/config"
)

// Category names a subsystem. It becomes the logger name.
type Category string

const (
	CategoryBoot      Category = "boot"      // Config, startup
	CategoryLoader    Category = "loader"    // Bank and model table loading
	CategoryAssembler Category = "assembler" // Label shuffles, lure selection
	CategoryEmit      Category = "emit"      // Block and metadata writes
	CategorySubset    Category = "subset"    // Top-N extraction
	CategoryStore     Category = "store"     // Build archive
)

// New builds a logger from cfg. verbose forces debug level.
func New(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	var zcfg zap.Config
	switch cfg.Format {
	case "json":
		zcfg = zap.NewProductionConfig()
	case "console", "":
		zcfg = zap.NewDevelopmentConfig()
		zcfg.DisableStacktrace = true
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// For returns the child logger of a category. A nil parent yields a no-op
// logger so library code can log unconditionally.
func For(parent *zap.Logger, category Category) *zap.Logger {
	if parent == nil {
		return zap.NewNop()
	}
	return parent.Named(string(category))
}
