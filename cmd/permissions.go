package cmd

import (
	"fmt"
	"strings"

	"github.com/GrainArc/TrialMap/config"
	"github.com/GrainArc/TrialMap/services"
	"github.com/spf13/cobra"
)

func permissionsCommand(configPath *string) *cobra.Command {
	permissionsCmd := &cobra.Command{
		Use:   "permissions",
		Short: "Inspect and apply role permissions",
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify every role references known operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := services.DefaultPermissionResolver()
			if err := resolver.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d roles, %d operations\n", len(resolver.Roles()), len(services.PermissionTemplates))
			return nil
		},
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve <role> [entity_type]",
		Short: "Print the permissions a role holds",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := services.DefaultPermissionResolver()

			var entityTypes []string
			if len(args) == 2 {
				entityTypes = []string{args[1]}
			} else {
				cfg, err := config.Load(*configPath)
				if err != nil {
					return err
				}
				entityTypes = cfg.Permission.EntityTypes
			}

			set, err := resolver.ResolveAll(args[0], entityTypes)
			if err != nil {
				return err
			}
			if len(set) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(set.Sorted(), "\n"))
			}
			return nil
		},
	}

	syncCmd := &cobra.Command{
		Use:   "sync <role>",
		Short: "Store the resolved permissions of a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			permissions, err := a.roles.SyncRole(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d permissions stored\n", args[0], len(permissions))
			return nil
		},
	}

	permissionsCmd.AddCommand(checkCmd, resolveCmd, syncCmd)
	return permissionsCmd
}
