package cmd

import (
	"fmt"
	"os"

	"github.com/dreitier/treefactor/config"
	"github.com/spf13/cobra"
)

const app = "treefactor"

func NewRootCmd() *cobra.Command {
	var (
		debug      bool
		configFile string
		background bool
	)

	rootCmd := &cobra.Command{
		Use:           app,
		Short:         "Edit directory trees captured with `tree -J`",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.SetGlobalDebugEnabled(debug)
			config.SetRunningInBackgroundForced(background)
			if configFile != "" {
				config.SetConfigFile(configFile)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging regardless of the configured log level")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config.yaml instead of searching for it")
	rootCmd.PersistentFlags().BoolVar(&background, "background", false, "Do not listen for keyboard input; same as "+config.EnvBackground+"=true")

	rootCmd.AddCommand(
		NewServeCmd(),
		NewMoveCmd(),
		NewStatCmd(),
		NewFmtCmd(),
		NewFindCmd(),
		NewVersionCmd(),
	)

	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
