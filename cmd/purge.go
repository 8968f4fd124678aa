package cmd

import (
	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge [directory...]",
	Short: "Find and delete dependency directories",
	Long: `Scan for dependency directories and pick the ones to delete.
This is the same as running depsweep without a subcommand.`,
	RunE: runSweep,
}

func init() {
	addDeleteFlags(purgeCmd)
}
