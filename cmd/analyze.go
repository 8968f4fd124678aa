package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/depsweep/internal/analyze"
	"github.com/lakshaymaurya-felt/depsweep/internal/session"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [directory...]",
	Short: "Report dependency directories without deleting",
	Long:  "Scan for dependency directories and print their sizes, ages and projects. Nothing is deleted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd, args, false)
		if err != nil {
			return err
		}
		defer app.close()

		res, err := app.scan(cmd.Context(), true)
		if err != nil {
			return err
		}
		sortKey, _ := session.ParseSortKey(app.cfg.Sort)
		if app.cfg.JSON {
			return analyze.PrintJSON(cmd.OutOrStdout(), app.cfg.Target, app.roots, res, sortKey, app.cfg.HideErrors)
		}
		analyze.PrintStatic(cmd.OutOrStdout(), res, analyze.StaticOptions{
			Sort:       sortKey,
			GB:         app.cfg.GB,
			HideErrors: app.cfg.HideErrors,
		})
		return nil
	},
}
