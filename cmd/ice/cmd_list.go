package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peppermintos/ice/internal/ui"
)

var listHistory bool

func init() {
	listCmd.Flags().BoolVar(&listHistory, "history", false, "show every SSB ever created, including removed ones")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:         "list",
	Aliases:     []string{"ls"},
	Short:       "List site-specific browsers",
	Args:        cobra.NoArgs,
	Annotations: reconcileFirst,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager()
		if err != nil {
			return err
		}
		if listHistory {
			return printHistory()
		}

		entries, err := mgr.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println(ui.Dim.Render("No SSBs installed. Create one with: ice create"))
			return nil
		}

		width := 4
		for _, e := range entries {
			width = max(width, len(e.Name))
		}
		fmt.Println(ui.Cyan.Render(fmt.Sprintf("%-*s  %-12s  %-9s  %s", width, "NAME", "SLUG", "PROFILE", "COMMAND")))
		for _, e := range entries {
			cmdName, _, _ := strings.Cut(e.Exec, " ")
			fmt.Printf("%s  %-12s  %-9s  %s\n",
				ui.White.Render(fmt.Sprintf("%-*s", width, e.Name)),
				e.Slug(), e.Marker, ui.Dim.Render(cmdName))
		}
		return nil
	},
}

func printHistory() error {
	if app.store == nil {
		return fmt.Errorf("history database is unavailable")
	}
	records, err := app.store.ListSSBs(true)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println(ui.Dim.Render("No history recorded yet."))
		return nil
	}

	for _, r := range records {
		status := ui.Green.Render("active")
		if r.Removed() {
			status = ui.Dim.Render("removed " + r.RemovedAt.Local().Format("2006-01-02 15:04"))
		}
		fmt.Printf("%s %s  %s\n", ui.White.Render(r.Name), ui.Dim.Render("("+r.Slug+")"), status)
		if r.URL != "" {
			fmt.Printf("  %s via %s\n", r.URL, r.Browser)
		}
		events, err := app.store.ListEvents(r.Slug)
		if err != nil {
			return err
		}
		for _, ev := range events {
			fmt.Println(ui.Dim.Render(fmt.Sprintf("  %s  %-16s %s", ev.Timestamp.Local().Format("2006-01-02 15:04"), ev.Kind, strings.TrimSpace(ev.Message))))
		}
	}
	return nil
}
