package config

import (
	"fmt"

	"slogansurvey/internal/types"
)

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// Validate rejects unknown levels and formats.
func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q: %w", c.Level, types.ErrInvalidConfig)
	}
	switch c.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q: %w", c.Format, types.ErrInvalidConfig)
	}
	return nil
}
