package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	patternlab "github.com/goliatone/go-patternlab"
)

func newPartialsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partials",
		Short: "List the partials each pattern includes",
		Args:  cobra.NoArgs,
		RunE:  runPartials,
	}
	cmd.Flags().Bool("reverse", false, "list the patterns including each pattern instead")
	return cmd
}

func runPartials(cmd *cobra.Command, _ []string) error {
	cfg, err := configFromCommand(cmd)
	if err != nil {
		return err
	}
	reverse, err := cmd.Flags().GetBool("reverse")
	if err != nil {
		return err
	}
	log := cfg.logger(cmd)

	asm, err := patternlab.NewAssembler(cfg.engineOptions(log), cfg.assemblerOptions(log)...)
	if err != nil {
		return err
	}
	lib, err := asm.Load(os.DirFS(cfg.Source))
	if err != nil {
		return err
	}

	lineage, included := asm.Lineage(lib)
	if reverse {
		lineage = included
	}
	out := cmd.OutOrStdout()
	for _, p := range lib.Patterns {
		keys := lineage[p.Key]
		if len(keys) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s -> %s\n", p.Key, strings.Join(keys, ", "))
	}
	return nil
}
