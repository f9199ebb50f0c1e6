// Package logging adapts charmbracelet/log to the engine.Logger interface
// used across the library.
package logging

import (
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"github.com/goliatone/go-patternlab/pkg/engine"
)

type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

func (l Level) charm() charmlog.Level {
	switch Level(strings.ToLower(string(l))) {
	case DebugLevel:
		return charmlog.DebugLevel
	case WarnLevel:
		return charmlog.WarnLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

type Config struct {
	Level      Level
	Output     io.Writer
	JSON       bool
	TimeFormat string
}

func DefaultConfig() *Config {
	return &Config{
		Level:      InfoLevel,
		Output:     os.Stderr,
		TimeFormat: "15:04:05",
	}
}

type logger struct {
	charm *charmlog.Logger
}

var _ engine.Logger = (*logger)(nil)

// New builds a logger. A nil cfg uses DefaultConfig.
func New(cfg *Config) engine.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	charm := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: cfg.TimeFormat != "",
		TimeFormat:      cfg.TimeFormat,
		Level:           cfg.Level.charm(),
	})
	if cfg.JSON {
		charm.SetFormatter(charmlog.JSONFormatter)
	} else {
		charm.SetFormatter(charmlog.TextFormatter)
	}
	return &logger{charm: charm}
}

func (l *logger) Debug(msg string, keyvals ...any) {
	l.charm.Debug(msg, keyvals...)
}

func (l *logger) Info(msg string, keyvals ...any) {
	l.charm.Info(msg, keyvals...)
}

func (l *logger) Warn(msg string, keyvals ...any) {
	l.charm.Warn(msg, keyvals...)
}

func (l *logger) Error(msg string, keyvals ...any) {
	l.charm.Error(msg, keyvals...)
}
