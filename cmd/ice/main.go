package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/peppermintos/ice/internal/ui"
	"github.com/peppermintos/ice/internal/version"
)

var (
	flagConfig      string
	flagVerbose     bool
	flagNoReconcile bool
)

var rootCmd = &cobra.Command{
	Use:                "ice",
	Short:              "Ice - site-specific browser manager",
	Version:            version.Version,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.Long = ui.Green.Render("Ice") + " " + ui.Cyan.Render(version.Version) + "\n" +
		ui.Dim.Render("Create menu launchers that open a web site in its own browser window, with an optional private profile.")

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.config/ice/config.yml, or $ICE_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoReconcile, "no-reconcile", false, "skip the orphaned-profile cleanup that runs before each command")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Red.Render("Error:")+" "+err.Error())
		os.Exit(1)
	}
}
