package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func importCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.geojson>",
		Short: "Import a GeoJSON field layout as a plan with plots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if strings.ToLower(filepath.Ext(path)) != ".geojson" {
				return fmt.Errorf("%s: only .geojson files are accepted", path)
			}
			contents, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.importer.ImportExperiment(cmd.Context(), contents)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Plan %d %q: created %d of %d features\n", result.PlanID, result.PlanName, result.Created, result.Total)
			for _, fe := range result.Skipped {
				fmt.Fprintf(out, "  skipped %v\n", fe)
			}
			return nil
		},
	}
}
