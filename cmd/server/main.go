package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build info (injected at build time via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "finrl-desk",
	Short: "Authenticated analysis record service",
	Long: `finrl-desk issues session tokens, scores ticker and news text submissions,
stores the resulting analysis records per account and exposes operator views
across all accounts.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "finrl-desk %s (commit %s, built %s)\n", Version, Commit, BuildTime)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "finrl-desk: %v\n", err)
		os.Exit(1)
	}
}
