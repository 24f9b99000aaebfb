// Package logging builds the simulator's structured logger: a
// colorized console handler, fanned out to an optional file handler
// when a log path is configured.
package logging

import (
	"log/slog"
	"os"

	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
)

// New returns a logger writing leveled, colorized records to stderr,
// and additionally to logPath (plain text, append mode) if logPath is
// non-empty.
func New(logPath string, verbose bool) (*slog.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:     level,
			AddSource: false,
		}),
	}

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(slogmulti.Fanout(handlers...)), nil
}
