// Package log wraps slog with a component-scoped logger and the field names
// shared across the service.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats accepted by Config.Format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds logger configuration. Handler, when set, wins over Format,
// Output and Level.
type Config struct {
	Level     slog.Level
	Component string
	Format    string
	Output    io.Writer
	Handler   slog.Handler
}

func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: ComponentApp,
		Format:    FormatText,
		Output:    os.Stdout,
	}
}

// Logger is a slog.Logger bound to one component. The component attribute is
// attached once, so re-scoping a logger replaces it instead of repeating it.
type Logger struct {
	*slog.Logger
	base      *slog.Logger
	component string
}

func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		out := config.Output
		if out == nil {
			out = os.Stdout
		}
		opts := &slog.HandlerOptions{Level: config.Level}
		if strings.EqualFold(config.Format, FormatJSON) {
			handler = slog.NewJSONHandler(out, opts)
		} else {
			handler = slog.NewTextHandler(out, opts)
		}
	}
	return scoped(slog.New(handler), config.Component)
}

func scoped(base *slog.Logger, component string) *Logger {
	l := base
	if component != "" {
		l = base.With(FieldComponent, component)
	}
	return &Logger{Logger: l, base: base, component: component}
}

// With returns a logger carrying the given attributes in addition to the
// component.
func (l *Logger) With(args ...any) *Logger {
	return scoped(l.base.With(args...), l.component)
}

// WithComponent returns a logger for another component, keeping every
// attribute added through With.
func (l *Logger) WithComponent(component string) *Logger {
	return scoped(l.base, component)
}

func (l *Logger) Component() string {
	return l.component
}

// SetDefault installs logger as the slog default, so packages that log
// through slog directly share its handler.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values log at info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
