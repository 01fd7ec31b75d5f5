package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/peppermintos/ice/internal/ui"
	"github.com/peppermintos/ice/internal/urlcheck"
)

var faviconDownload string

func init() {
	faviconCmd.Flags().StringVarP(&faviconDownload, "download", "d", "", "save the icon into this directory")
	faviconCmd.Flags().Lookup("download").NoOptDefVal = "."
	rootCmd.AddCommand(faviconCmd)
}

var faviconCmd = &cobra.Command{
	Use:   "favicon <url>",
	Short: "Find the icon a web site advertises",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := urlcheck.Normalize(args[0])
		if err != nil {
			return err
		}

		f := newFinder()
		iconURL, err := f.Discover(commandContext(cmd), addr)
		if err != nil {
			return err
		}
		fmt.Println(iconURL)

		if faviconDownload == "" {
			return nil
		}
		if err := os.MkdirAll(faviconDownload, 0755); err != nil {
			return err
		}
		path, err := f.Download(commandContext(cmd), iconURL, faviconDownload)
		if err != nil {
			return err
		}
		ui.Success("Saved %s", path)
		return nil
	},
}
