// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

const timeFormat = time.TimeOnly

// ParseLevel maps a config/env level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// Setup installs a tint handler writing to w as the default slog logger.
// Colors are disabled when w is not a terminal.
func Setup(w io.Writer, level slog.Level) *slog.Logger {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}
	if os.Getenv("NO_COLOR") != "" {
		noColor = true
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: timeFormat,
		NoColor:    noColor,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
