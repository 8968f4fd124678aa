package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configPath string

	// Version info populated from main
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets build-time version information.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "depsweep [directory...]",
	Short: "Find and delete dependency directories",
	Long: `depsweep - find node_modules (or any named dependency directory),
see how much space each one takes and delete the ones you no longer need.

Without a subcommand it scans the given directories (default: the current
one) and opens the interactive list.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSweep,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/depsweep/config.yaml)")
	pf.StringSliceP("directory", "d", nil, "Directories to scan (repeatable)")
	pf.StringP("target", "t", "node_modules", "Name of the directories to find")
	pf.StringSliceP("exclude", "E", nil, "Skip paths containing any of these substrings")
	pf.BoolP("exclude-hidden-directories", "x", false, "Skip directories whose name starts with a dot")
	pf.BoolP("hide-errors", "e", false, "Do not report directories that could not be read")
	pf.Int("depth", 0, "Maximum path depth of a match below a root (0 = unlimited)")
	pf.BoolP("full", "f", false, "Scan from the home directory")
	pf.StringP("sort", "s", "size", "Initial sort: size, date or path")
	pf.String("size-mode", "auto", "Size estimation: auto (du, then walk) or walk")
	pf.String("strategy", "auto", "Discovery strategy: auto, glob or walk")
	pf.Int("batch-size", 50, "Directories processed concurrently per batch")
	pf.String("manifest", "package.json", "Project manifest read for name, version and activity")
	pf.Int("active-days", 30, "Projects whose manifest changed within this many days are marked active")
	pf.Bool("gb", false, "Show sizes in GiB")
	pf.Bool("json", false, "Print the scan result as JSON and exit")
	pf.Bool("debug", false, "Show detailed operation logs")
	pf.String("log-file", "", "Write logs to this file")

	addDeleteFlags(rootCmd)

	// Register all subcommands
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// addDeleteFlags registers the flags of commands that may delete.
func addDeleteFlags(c *cobra.Command) {
	c.Flags().Bool("dry-run", false, "Preview without deleting")
	c.Flags().BoolP("delete-all", "D", false, "Delete every match without asking (for scripts)")
	c.Flags().Bool("check-updates", true, "Check for a newer release in the background")
}
