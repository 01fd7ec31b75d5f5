package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peppermintos/ice/internal/ssb"
	"github.com/peppermintos/ice/internal/ui"
)

var cleanupDryRun bool

func init() {
	cleanupCmd.Flags().BoolVarP(&cleanupDryRun, "dry-run", "n", false, "only report what would change")
	rootCmd.AddCommand(cleanupCmd)
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove orphaned browser profiles",
	Long: "Deletes profile directories no launcher refers to and recreates missing\n" +
		"Firefox profiles. A lighter pass runs before most commands; it leaves\n" +
		"profiles alone when no launchers are found at all.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager()
		if err != nil {
			return err
		}

		report, rerr := mgr.Reconcile(commandContext(cmd), ssb.ReconcileOptions{DryRun: cleanupDryRun, Force: true})
		if report == nil {
			return rerr
		}

		verb := map[bool]string{true: "Would remove", false: "Removed"}[cleanupDryRun]
		for _, p := range report.Removed {
			fmt.Println(ui.Yellow.Render(verb) + " " + p)
		}
		restore := map[bool]string{true: "Would restore", false: "Restored"}[cleanupDryRun]
		for _, p := range report.Restored {
			fmt.Println(ui.Cyan.Render(restore) + " " + p)
		}
		if rerr != nil {
			return rerr
		}
		if report.Empty() {
			ui.Success("Nothing to clean up")
		} else if !cleanupDryRun {
			ui.Success("Cleaned up %d profile(s)", len(report.Removed)+len(report.Restored))
		}
		return nil
	},
}
