package main

import (
	"fmt"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/petasbytes/dimensional-agent/internal/prompt"
	"github.com/petasbytes/dimensional-agent/internal/textstats"
	"github.com/petasbytes/dimensional-agent/specs"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the model inputs without calling the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := specs.LoadModel(a.cfg.ModelsDir, a.cfg.Model)
			if err != nil {
				return err
			}
			system, err := prompt.ForModel(m)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			columns := 0
			for _, t := range m.Schema.Tables {
				columns += t.Columns.Len()
			}
			fmt.Fprintf(out, "model %s: %d tables, %d columns, %d metrics\n",
				m.Name, len(m.Schema.Tables), columns, len(m.Metrics.Metrics))
			for _, t := range m.Schema.Tables {
				fmt.Fprintf(out, "  %s (%s): %d columns\n", t.Name, t.Type, t.Columns.Len())
			}
			fmt.Fprintf(out, "system prompt: ~%d tokens\n", textstats.EstimateTokens(system))
			for _, w := range m.Lint() {
				ancli.PrintWarn(w + "\n")
			}
			return nil
		},
	}
}
