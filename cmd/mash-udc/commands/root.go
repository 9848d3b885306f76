// Package commands implements the mash-udc CLI commands.
package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the mash-udc root command.
func Execute() error {
	return newRootCmd().Execute()
}

// app carries state shared by all subcommands.
type app struct {
	v          *viper.Viper
	configFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "mash-udc",
		Short: "User-directed commissioning listener and announcer",
		Long: "mash-udc listens for user-directed commissioning announcements, resolves " +
			"the announcing devices over mDNS and asks an operator for consent.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Configuration file path (YAML)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	_ = a.v.BindPFlag(keyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(
		newServeCmd(a),
		newAnnounceCmd(a),
		newLogCmd(),
		newConfigCmd(a),
		newVersionCmd(),
	)

	return rootCmd
}

func (a *app) loadConfig() (*Config, error) {
	return loadConfig(a.v, a.configFile)
}
