package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/peppermintos/ice/internal/ui"
	"github.com/peppermintos/ice/internal/updater"
	"github.com/peppermintos/ice/internal/version"
)

var versionCheck bool

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("ice %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)

		if !versionCheck {
			return nil
		}

		u := updater.New(filepath.Join(app.cfg.Paths.IceDir, "update-check.json"))
		status, err := u.CheckLatestRelease(commandContext(cmd), version.Version)
		if err != nil {
			return fmt.Errorf("failed to check for updates: %w", err)
		}

		fmt.Println()
		if !status.Available {
			ui.Success("Up to date (latest release %s)", status.Latest)
			return nil
		}
		ui.Warn("Version %s is available", ui.White.Render(status.Latest))
		if status.Release != nil && status.Release.URL != "" {
			fmt.Println("  " + ui.Dim.Render(status.Release.URL))
		}
		return nil
	},
}
