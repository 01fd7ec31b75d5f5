package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(launchCmd)
}

var launchCmd = &cobra.Command{
	Use:         "launch <slug|name>",
	Aliases:     []string{"open", "run"},
	Short:       "Open a site-specific browser",
	Long:        "Starts the command from the SSB's launcher, detached from the terminal.",
	Args:        cobra.ExactArgs(1),
	Annotations: reconcileFirst,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager()
		if err != nil {
			return err
		}
		return mgr.Launch(args[0])
	},
}
