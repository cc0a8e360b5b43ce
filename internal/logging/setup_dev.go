//go:build !prod

package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Setup initializes logging for development builds.
// Logs are written to os.Stderr with a tinted handler; no file output.
// Returns the configured logger, a no-op close function, and any error.
func Setup(cfg *Config) (*slog.Logger, func() error, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.Level,
		TimeFormat: time.TimeOnly,
	})

	logger := slog.New(handler)
	setGlobal(logger)

	closeFn := func() error { return nil }

	return logger, closeFn, nil
}
