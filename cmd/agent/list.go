package main

import (
	"fmt"

	"github.com/petasbytes/dimensional-agent/specs"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the models under the models root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader, err := specs.NewLoader(a.cfg.ModelsDir)
			if err != nil {
				return err
			}
			names, err := loader.List()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}
