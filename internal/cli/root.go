// Package cli implements the Lattice command-line interface using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "Lattice — p2p network client",
	Long: `Lattice is the networking daemon of a Lattice chain node.
It maintains outbound peer connections behind a persistent
reputation gate: peers that keep failing are backed off and
retried later, and the failure history survives restarts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
