package cmd

import (
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentrun/agentrun/internal/build"
	"github.com/agentrun/agentrun/internal/logger"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           build.Slug,
	Short:         "YAML-driven agent session runner.",
	Long:          `YAML-driven agent session runner.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func registerCommands() {
	rootCmd.AddCommand(startCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(versionCmd())
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text or json)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress log output to stderr")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))

	cobra.OnInitialize(initSettings)

	registerCommands()
}

// initSettings wires viper to the optional app-level settings file and
// the AGENTRUN_* environment variables.
func initSettings() {
	viper.SetEnvPrefix(strings.ToUpper(build.Slug))
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("settings")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(filepath.Join(xdg.ConfigHome, build.Slug))

	// the settings file is optional
	_ = viper.ReadInConfig()
}

// newLogger builds the application logger from the resolved settings.
func newLogger() logger.Logger {
	var opts []logger.Option
	if viper.GetBool("debug") {
		opts = append(opts, logger.WithDebug())
	}
	if format := viper.GetString("log-format"); format != "" {
		opts = append(opts, logger.WithFormat(format))
	}
	if viper.GetBool("quiet") {
		opts = append(opts, logger.WithQuiet())
	}
	return logger.NewLogger(opts...)
}
