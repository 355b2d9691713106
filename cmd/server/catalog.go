package main

import (
	"fmt"

	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/catalog"
	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect fabric catalogues",
	}

	cmd.AddCommand(&cobra.Command{
		Use:          "check <file>",
		Short:        "Validate a YAML catalogue and summarise what would be loaded",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(args[0])
			if err != nil {
				return err
			}

			report := cat.Check()
			fmt.Fprintf(cmd.OutOrStdout(), "fabrics: %d\nsections: %d\ntasks: %d\n", report.Fabrics, report.Sections, report.Tasks)
			for _, line := range report.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "skipped %s\n", line)
			}
			if len(report.Skipped) > 0 {
				return fmt.Errorf("%d descriptor(s) would be ignored", len(report.Skipped))
			}
			return nil
		},
	})

	return cmd
}
