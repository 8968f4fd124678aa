package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/depsweep/internal/update"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for a newer depsweep release",
	Long:  "Query GitHub releases for the latest version of depsweep, ignoring the check interval.",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := update.NewChecker()
		rel, err := c.Latest(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.Touch(time.Now()); err != nil {
			return err
		}
		if !update.Newer(appVersion, rel.Version) {
			fmt.Printf("  depsweep %s is up to date (latest %s)\n", appVersion, rel.Version)
			return nil
		}
		fmt.Printf("  A new version is available: %s (current %s)\n  %s\n", rel.Version, appVersion, rel.URL)
		return nil
	},
}
