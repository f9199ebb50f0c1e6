package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	patternlab "github.com/goliatone/go-patternlab"
	"github.com/goliatone/go-patternlab/pkg/assembler"
)

func newBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render every pattern into the output directory",
		Args:  cobra.NoArgs,
		RunE:  runBuild,
	}
	cmd.Flags().String("output", "", "directory the rendered patterns are written to")
	cmd.Flags().Int("workers", 0, "patterns rendered concurrently (0 uses GOMAXPROCS)")
	cmd.Flags().Int("max-depth", 0, "maximum partial nesting depth")
	cmd.Flags().Bool("strict", false, "fail when any pattern reports a diagnostic")
	return cmd
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := configFromCommand(cmd)
	if err != nil {
		return err
	}
	log := cfg.logger(cmd)

	asm, err := patternlab.NewAssembler(cfg.engineOptions(log), cfg.assemblerOptions(log)...)
	if err != nil {
		return err
	}

	build, buildErr := asm.BuildFS(cmd.Context(), os.DirFS(cfg.Source))
	if build == nil {
		return buildErr
	}
	if buildErr != nil && !errors.Is(buildErr, assembler.ErrDiagnostics) {
		return buildErr
	}

	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, res := range build.Results {
		target := filepath.Join(cfg.Output, res.Pattern.Key+".html")
		if err := os.WriteFile(target, []byte(res.Output), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
	}

	for _, d := range build.Diagnostics() {
		log.Warn("pattern diagnostic", "kind", d.Kind.String(), "key", d.Key, "engine", d.Engine, "err", d.Err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "rendered %d patterns to %s\n", len(build.Results), cfg.Output)

	if buildErr != nil {
		return fmt.Errorf("%d diagnostics: %w", len(build.Diagnostics()), assembler.ErrDiagnostics)
	}
	return nil
}
