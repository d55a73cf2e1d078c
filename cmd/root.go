package cmd

import (
	"github.com/spf13/cobra"
)

// RootCommand creates and returns the trialmap command tree.
func RootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "trialmap",
		Short:         "Experiment plot import and role permission service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ./config.yaml)")

	rootCmd.AddCommand(
		serveCommand(&configPath),
		importCommand(&configPath),
		permissionsCommand(&configPath),
	)
	return rootCmd
}
