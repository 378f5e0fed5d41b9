package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentrun/agentrun/internal/config"
	"github.com/agentrun/agentrun/internal/logger"
	"github.com/agentrun/agentrun/internal/template"
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Checks a run configuration file without executing it",
		Long:  `agentrun validate --config <config file>`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}

			lg := newLogger()
			ctx := logger.WithLogger(cmd.Context(), lg)

			cfg, err := config.Load(ctx, configPath)
			if err != nil {
				lg.Error("Invalid config", "err", err)
				return err
			}
			if err := config.ValidateTasks(ctx, cfg.Tasks); err != nil {
				lg.Error("Invalid config", "err", err)
				return err
			}
			if _, err := template.NewRenderer(cfg.TemplateDir); err != nil {
				lg.Error("Invalid config", "err", err)
				return err
			}

			lg.Info("Config is valid", "path", configPath, "tasks", len(cfg.Tasks))
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "", "path to the YAML run configuration file")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
