package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/schematic-core/internal/infrastructure/config"
)

const serviceName = "schematic"

// Logger is a slog.Logger stamped with the service name and version. It
// satisfies the Logger interfaces of the domain packages.
type Logger struct {
	*slog.Logger
}

// New writes to the stream named by cfg.Output, "stderr" or stdout for
// anything else.
func New(cfg config.LoggingConfig, version string) *Logger {
	var w io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		w = os.Stderr
	}
	return NewWithWriter(cfg, version, w)
}

// NewWithWriter writes to w regardless of cfg.Output.
func NewWithWriter(cfg config.LoggingConfig, version string, w io.Writer) *Logger {
	level, _ := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler = slog.NewJSONHandler(w, opts)
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	}
	return &Logger{slog.New(h).With("service", serviceName, "version", version)}
}

// Default logs JSON at info to stdout. It serves until the configuration
// is loaded.
func Default() *Logger {
	return NewWithWriter(config.LoggingConfig{}, "dev", os.Stdout)
}

// ParseLevel maps debug, info, warn (or warning) and error, in any case, to
// a slog level. Anything else yields info and false.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{l.Logger.With(args...)}
}

// Component tags every entry with component=name.
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}
