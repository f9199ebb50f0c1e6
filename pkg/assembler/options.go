package assembler

import (
	"runtime"
	"strings"

	"github.com/goliatone/go-patternlab/pkg/engine"
)

// DefaultDataDir is the directory holding data shared by every pattern.
const DefaultDataDir = "_data"

// Option configures an Assembler.
type Option func(*config)

type config struct {
	logger  engine.Logger
	workers int
	strict  bool
	ignore  []string
	dataDir string
}

func defaultConfig() config {
	return config{
		logger:  engine.NopLogger(),
		workers: runtime.GOMAXPROCS(0),
		dataDir: DefaultDataDir,
	}
}

// WithLogger routes load and build progress to logger.
func WithLogger(logger engine.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithWorkers bounds how many patterns render concurrently.
func WithWorkers(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.workers = n
		}
	}
}

// WithStrict makes Build return an error when any pattern reports a
// diagnostic. The rendered output is still returned.
func WithStrict(strict bool) Option {
	return func(cfg *config) {
		cfg.strict = strict
	}
}

// WithIgnore skips source paths matching any of the doublestar globs, e.g.
// "**/drafts/**".
func WithIgnore(globs ...string) Option {
	return func(cfg *config) {
		for _, glob := range globs {
			if glob = strings.TrimSpace(glob); glob != "" {
				cfg.ignore = append(cfg.ignore, glob)
			}
		}
	}
}

// WithDataDir overrides DefaultDataDir.
func WithDataDir(dir string) Option {
	return func(cfg *config) {
		if dir = strings.Trim(strings.TrimSpace(dir), "/"); dir != "" {
			cfg.dataDir = dir
		}
	}
}
