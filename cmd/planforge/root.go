package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "planforge",
	Short: "Contract compilation and dependency planning",
	Long: `Planforge turns a batch of enhancement areas into a validated,
dependency-ordered execution manifest.

For each area it classifies the domain, applies governance policy to
route the work to a specialized agent, the generic generator, or a
human reviewer, validates the generated contract, and gates it against
historical work for duplicates and conflicts. Accepted contracts are
assembled into a cycle-free build order.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(executeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(versionCmd)
}
