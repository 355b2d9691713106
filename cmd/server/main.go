package main

import (
	"fmt"
	"os"

	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/platform/version"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "aci-tracker",
		Short: "Shared state backend for the ACI deployment tracker",
		Long: `aci-tracker keeps the deployment checklist of every fabric in memory,
serves it over a JSON API and pushes task changes to connected
browsers over WebSocket.

Running it without a subcommand is the same as "aci-tracker serve".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}
	opts.bind(cmd)

	serveCmd := &cobra.Command{
		Use:          "serve",
		Short:        "Run the HTTP and WebSocket server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}
	opts.bind(serveCmd)

	cmd.AddCommand(serveCmd, catalogCmd(), &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get())
		},
	})

	return cmd
}
