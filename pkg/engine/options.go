package engine

import (
	"github.com/goliatone/go-patternlab/pkg/pattern"
	"github.com/goliatone/go-patternlab/pkg/registry"
)

// DefaultMaxDepth bounds how deeply partials may include each other.
const DefaultMaxDepth = 32

// Logger is the structured logger engines report to.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger {
	return nopLogger{}
}

// Config holds the settings shared by all engines.
type Config struct {
	Logger   Logger
	MaxDepth int
}

// Option configures an engine at construction time.
type Option func(*Config)

// WithLogger routes engine diagnostics to logger.
func WithLogger(logger Logger) Option {
	return func(cfg *Config) {
		if logger != nil {
			cfg.Logger = logger
		}
	}
}

// WithMaxDepth overrides DefaultMaxDepth. Non-positive values are ignored.
func WithMaxDepth(depth int) Option {
	return func(cfg *Config) {
		if depth > 0 {
			cfg.MaxDepth = depth
		}
	}
}

// NewConfig applies options over the defaults.
func NewConfig(options ...Option) Config {
	cfg := Config{
		Logger:   NopLogger(),
		MaxDepth: DefaultMaxDepth,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

// Report logs a diagnostic at a level matching its kind.
func (c Config) Report(err *Error) {
	if err == nil {
		return
	}
	keyvals := []any{"engine", err.Engine, "kind", err.Kind.String(), "err", err.Err}
	if err.Key != "" {
		keyvals = append(keyvals, "partial", err.Key)
	}
	switch err.Kind {
	case KindCompile, KindEvaluation:
		c.Logger.Error("pattern render failed", keyvals...)
	default:
		c.Logger.Warn("pattern include failed", keyvals...)
	}
}

// RegisterPattern stores p under its key and under its verbose path, with and
// without the file extension, so both {{> atoms-button }} and
// {{> 00-atoms/01-button }} resolve. Engines use it to implement
// RegisterPartial.
func RegisterPattern(reg *registry.Registry, p *pattern.Pattern) error {
	if reg == nil || p == nil {
		return nil
	}
	if err := reg.Register(p.Key, p.Template); err != nil {
		return err
	}
	if verbose := p.VerbosePath(); verbose != "" && verbose != p.Key {
		if err := reg.Register(verbose, p.Template); err != nil {
			return err
		}
	}
	if p.RelPath != "" && p.RelPath != p.VerbosePath() {
		if err := reg.Register(p.RelPath, p.Template); err != nil {
			return err
		}
	}
	return nil
}
