package main

import (
	"github.com/petasbytes/dimensional-agent/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the resolved configuration shared by the subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:   "dimagent",
		Short: "Design a dimensional model from raw tables and business metrics",
		Long: `dimagent reads models/<name>/inputs/schema.json and metrics.json, asks the
chat model for a dimensional model and prints the conversation.

Configuration is read from flags, DIMAGENT_* environment variables and
./dimagent.yaml, in that order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is ./dimagent.yaml)")
	pf.String("model", "", "model directory name under the models root")
	pf.String("models-dir", "", "models root directory")
	pf.Bool("observe", false, "write telemetry events to <telemetry.dir>/events.jsonl")
	_ = a.v.BindPFlag("model", pf.Lookup("model"))
	_ = a.v.BindPFlag("models_dir", pf.Lookup("models-dir"))
	_ = a.v.BindPFlag("telemetry.observe", pf.Lookup("observe"))

	root.AddCommand(
		newRunCmd(a),
		newGraphCmd(a),
		newValidateCmd(a),
		newListCmd(a),
		newTranscriptCmd(a),
		newIntrospectCmd(a),
	)
	return root
}
