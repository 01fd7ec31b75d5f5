package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/peppermintos/ice/internal/ui"
	"github.com/peppermintos/ice/internal/wizard"
)

var removeYes bool

func init() {
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:         "remove [slug|name]...",
	Aliases:     []string{"rm", "delete"},
	Short:       "Remove site-specific browsers and their profiles",
	Long:        "Deletes the launcher, its private profile and its icon copy. Without arguments a selection list is shown.",
	Annotations: reconcileFirst,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager()
		if err != nil {
			return err
		}

		targets := args
		if len(targets) == 0 {
			if !interactive() {
				return fmt.Errorf("name the SSBs to remove")
			}
			entries, err := mgr.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No SSBs installed.")
				return nil
			}
			targets, err = wizard.RunRemove(entries)
			if errors.Is(err, wizard.ErrCancelled) {
				fmt.Println("Cancelled.")
				return nil
			}
			if err != nil {
				return err
			}
		} else if !removeYes {
			if !interactive() {
				return fmt.Errorf("refusing to remove without confirmation (use --yes)")
			}
			prompt := fmt.Sprintf("Remove %s and their profiles?", strings.Join(targets, ", "))
			if !confirm(bufio.NewReader(os.Stdin), prompt) {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		var result *multierror.Error
		for _, t := range targets {
			e, err := mgr.Remove(commandContext(cmd), t)
			if err != nil {
				ui.Failure("%s: %v", t, err)
				result = multierror.Append(result, fmt.Errorf("%s: %w", t, err))
				continue
			}
			ui.Success("Removed %s", ui.White.Render(e.Name))
		}
		if err := result.ErrorOrNil(); err != nil {
			return fmt.Errorf("%d of %d removals failed", len(result.Errors), len(targets))
		}
		return nil
	},
}

// confirm asks a y/N question and defaults to No.
func confirm(reader *bufio.Reader, prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}
