package main

import (
	"fmt"

	"github.com/petasbytes/dimensional-agent/memory"
	"github.com/spf13/cobra"
)

func newTranscriptCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transcript PATH",
		Short: "Pretty-print a saved .json or .yaml transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := memory.LoadTranscript(args[0])
			if err != nil {
				return err
			}
			if msgs == nil {
				return fmt.Errorf("transcript %s: no such file", args[0])
			}
			return memory.PrintTranscript(cmd.OutOrStdout(), msgs)
		},
	}
}
