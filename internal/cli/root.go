package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lk2023060901/garden-serde/application"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	app := application.New()

	cmd := &cobra.Command{
		Use:          "serdectl",
		Short:        "Convert documents between the serde formats",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return app.Init(configPath)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = app.Close()
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (defaults to $"+application.ConfigPathEnv+")")
	cmd.AddCommand(convertCmd(app), batchCmd(app), formatsCmd(app))
	return cmd
}
