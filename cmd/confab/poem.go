package main

import (
	"github.com/spf13/cobra"
)

// newPoemCmd is the generate pipeline with poem-friendly defaults: a
// character chain of order 3 picks up line breaks, rhythm and coinages that
// word chains flatten out. Wrapping is off, since rewrapping would destroy
// the line breaks the chain itself produces. Every generate flag still
// applies.
func newPoemCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "poem",
		Short: "Generate poem-like text using a character chain",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}
	registerGenerateFlags(cmd.Flags(), opts, generateOptions{
		order:     3,
		count:     1,
		chars:     true,
		columns:   0,
		breakProb: 0.25,
	})
	return cmd
}
