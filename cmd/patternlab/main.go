package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "patternlab",
		Short: "Compose and render a pattern library",
		Long: `patternlab loads a tree of pattern templates, resolves the partials they
include and renders every pattern with the engine that owns its extension.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", defaultConfigFile, "path to the YAML configuration file")
	root.PersistentFlags().String("source", "", "pattern source directory")
	root.PersistentFlags().StringSlice("ignore", nil, "glob patterns to skip, relative to the source directory")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("log-json", false, "emit logs as JSON")

	root.AddCommand(newBuildCommand(), newPartialsCommand())
	return root
}
