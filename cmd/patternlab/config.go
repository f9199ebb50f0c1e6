package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-patternlab/internal/logging"
	"github.com/goliatone/go-patternlab/pkg/assembler"
	"github.com/goliatone/go-patternlab/pkg/engine"
)

const defaultConfigFile = "patternlab.yaml"

// Config is the CLI configuration. Values come from the defaults, then the
// YAML file, then any flag set explicitly on the command line.
type Config struct {
	Source   string   `yaml:"source"`
	Output   string   `yaml:"output"`
	DataDir  string   `yaml:"dataDir"`
	Workers  int      `yaml:"workers"`
	MaxDepth int      `yaml:"maxDepth"`
	Strict   bool     `yaml:"strict"`
	Ignore   []string `yaml:"ignore"`
	LogLevel string   `yaml:"logLevel"`
	LogJSON  bool     `yaml:"logJSON"`
}

func DefaultConfig() Config {
	return Config{
		Source:   "patterns",
		Output:   "public/patterns",
		DataDir:  assembler.DefaultDataDir,
		MaxDepth: engine.DefaultMaxDepth,
		LogLevel: string(logging.InfoLevel),
	}
}

// LoadConfig reads path over the defaults. A missing file is only an error
// when required is set.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// configFromCommand loads the config file named by --config and applies the
// flags the user changed.
func configFromCommand(cmd *cobra.Command) (Config, error) {
	flags := cmd.Flags()
	path, err := flags.GetString("config")
	if err != nil {
		return Config{}, err
	}
	cfg, err := LoadConfig(path, flags.Changed("config"))
	if err != nil {
		return cfg, err
	}

	if flags.Changed("source") {
		if cfg.Source, err = flags.GetString("source"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("ignore") {
		if cfg.Ignore, err = flags.GetStringSlice("ignore"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("log-level") {
		if cfg.LogLevel, err = flags.GetString("log-level"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("log-json") {
		if cfg.LogJSON, err = flags.GetBool("log-json"); err != nil {
			return cfg, err
		}
	}
	if flags.Lookup("output") != nil && flags.Changed("output") {
		if cfg.Output, err = flags.GetString("output"); err != nil {
			return cfg, err
		}
	}
	if flags.Lookup("workers") != nil && flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return cfg, err
		}
	}
	if flags.Lookup("max-depth") != nil && flags.Changed("max-depth") {
		if cfg.MaxDepth, err = flags.GetInt("max-depth"); err != nil {
			return cfg, err
		}
	}
	if flags.Lookup("strict") != nil && flags.Changed("strict") {
		if cfg.Strict, err = flags.GetBool("strict"); err != nil {
			return cfg, err
		}
	}

	if cfg.Source == "" {
		return cfg, errors.New("source directory is required")
	}
	return cfg, nil
}

func (c Config) logger(cmd *cobra.Command) engine.Logger {
	return logging.New(&logging.Config{
		Level:      logging.Level(c.LogLevel),
		Output:     cmd.ErrOrStderr(),
		JSON:       c.LogJSON,
		TimeFormat: "15:04:05",
	})
}

func (c Config) engineOptions(log engine.Logger) []engine.Option {
	return []engine.Option{
		engine.WithLogger(log),
		engine.WithMaxDepth(c.MaxDepth),
	}
}

func (c Config) assemblerOptions(log engine.Logger) []assembler.Option {
	return []assembler.Option{
		assembler.WithLogger(log),
		assembler.WithWorkers(c.Workers),
		assembler.WithStrict(c.Strict),
		assembler.WithIgnore(c.Ignore...),
		assembler.WithDataDir(c.DataDir),
	}
}
