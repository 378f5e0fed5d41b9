package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentrun/agentrun/internal/engine"
	"github.com/agentrun/agentrun/internal/logger"
)

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Runs the tasks from a run configuration file",
		Long:  `agentrun start --config <config file>`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}

			lg := newLogger()
			ctx := logger.WithLogger(cmd.Context(), lg)

			eng, err := engine.New(ctx, configPath)
			if err != nil {
				lg.Error("Failed to start session", "err", err)
				return err
			}

			if err := eng.Run(ctx); err != nil {
				lg.Error("Session failed", "err", err)
				return err
			}

			if history := eng.History(); len(history) > 0 {
				cmd.Println(eng.Summary())
			}
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "", "path to the YAML run configuration file")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
