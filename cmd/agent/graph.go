package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/petasbytes/dimensional-agent/internal/llm"
	"github.com/petasbytes/dimensional-agent/internal/runner"
	"github.com/petasbytes/dimensional-agent/tools"
	"github.com/spf13/cobra"
)

func newGraphCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the agent graph as a Mermaid diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			offline := llm.ChatModelFunc(func(context.Context, llm.Request) (llm.Reply, error) {
				return nil, errors.New("graph rendering never calls the model")
			})
			r, err := runner.New(runner.Config{
				Model:       offline,
				Tools:       tools.Default(),
				MaxLLMCalls: a.cfg.Runner.MaxLLMCalls,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), r.Graph().Mermaid())
			return err
		},
	}
}
