package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/petasbytes/dimensional-agent/internal/prompt"
	"github.com/petasbytes/dimensional-agent/internal/provider"
	"github.com/petasbytes/dimensional-agent/internal/runner"
	"github.com/petasbytes/dimensional-agent/internal/telemetry"
	"github.com/petasbytes/dimensional-agent/memory"
	"github.com/petasbytes/dimensional-agent/specs"
	"github.com/petasbytes/dimensional-agent/tools"
	"github.com/spf13/cobra"
)

const (
	defaultModelMessage = "Provide the dimensional model for this data."
	defaultToolMessage  = "Test the tool with input 'Hello World'"
	// OutputFile is written below <model>/outputs/ by --save-model.
	OutputFile = "dimensional_model.json"
)

type runOptions struct {
	message    string
	noModel    bool
	saveModel  bool
	transcript string
}

func newRunCmd(a *app) *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the agent once and print the transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), cmd.OutOrStdout(), o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.message, "message", "", "first human message (default depends on --no-model)")
	f.BoolVar(&o.noModel, "no-model", false, "skip model inputs and use the default assistant prompt")
	f.BoolVar(&o.saveModel, "save-model", false, "write the answer to <model>/outputs/"+OutputFile)
	f.StringVar(&o.transcript, "transcript", "", "save the transcript to this .json or .yaml file")
	return cmd
}

func (a *app) run(ctx context.Context, out io.Writer, o runOptions) error {
	if o.noModel && o.saveModel {
		return errors.New("--save-model needs model inputs, drop --no-model")
	}
	if os.Getenv("ANTHROPIC_API_KEY") == "" && a.cfg.LLM.BaseURL == "" {
		return errors.New("missing ANTHROPIC_API_KEY; export it before running")
	}

	loader, err := specs.NewLoader(a.cfg.ModelsDir)
	if err != nil {
		return err
	}
	system, message := prompt.DefaultSystemPrompt, defaultToolMessage
	if !o.noModel {
		m, err := loader.Load(a.cfg.Model)
		if err != nil {
			return err
		}
		if system, err = prompt.ForModel(m); err != nil {
			return err
		}
		if o.saveModel {
			if system, err = prompt.WithAnswerSchema(system); err != nil {
				return err
			}
		}
		message = defaultModelMessage
	}
	if o.message != "" {
		message = o.message
	}

	client := provider.NewAnthropicClient(provider.ClientOptions{
		BaseURL:    a.cfg.LLM.BaseURL,
		MaxRetries: a.cfg.LLM.MaxRetries,
		Timeout:    a.cfg.LLM.Timeout,
	})
	chat := provider.NewChat(client, provider.ChatOptions{
		Model:       anthropic.Model(a.cfg.LLM.Model),
		MaxTokens:   a.cfg.LLM.MaxTokens,
		Temperature: a.cfg.LLM.Temperature,
	})
	var reg *tools.Registry
	if a.cfg.Runner.Tools {
		reg = tools.Default()
	}

	var printErr error
	r, err := runner.New(runner.Config{
		Model:        chat,
		Tools:        reg,
		SystemPrompt: system,
		MaxLLMCalls:  a.cfg.Runner.MaxLLMCalls,
		TokenBudget:  a.cfg.Runner.TokenBudget,
		Telemetry:    telemetry.NewSink(a.cfg.Telemetry.Dir, a.cfg.Telemetry.Observe),
		OnMessage: func(m memory.Message) {
			if err := memory.PrettyPrint(out, m); err != nil && printErr == nil {
				printErr = err
			}
		},
	})
	if err != nil {
		return err
	}

	state, runErr := r.Run(ctx, memory.Human(message))
	if o.transcript != "" {
		if err := memory.SaveTranscript(o.transcript, state.Messages); err != nil {
			ancli.PrintWarn(fmt.Sprintf("failed to save transcript: %v\n", err))
		}
	}
	if runErr != nil {
		return fmt.Errorf("run: %w", runErr)
	}
	if printErr != nil {
		return fmt.Errorf("print transcript: %w", printErr)
	}
	if o.saveModel {
		return saveModel(loader, a.cfg.Model, state)
	}
	return nil
}

// saveModel extracts the dimensional model from the final reply and writes it
// next to the model inputs.
func saveModel(loader *specs.Loader, name string, state runner.State) error {
	if state.Last == nil {
		return errors.New("save model: no reply")
	}
	dm, err := specs.ExtractDimensionalModel(state.Last.Text())
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	body, err := specs.MarshalIndent(dm)
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	rel := path.Join(name, "outputs", OutputFile)
	if err := loader.Sandbox().WriteFile(rel, []byte(body+"\n")); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	ancli.PrintOK(fmt.Sprintf("wrote %s\n", filepath.Join(loader.Sandbox().Root(), filepath.FromSlash(rel))))
	return nil
}
