// Package wizard runs the interactive forms behind "ice create" and
// "ice remove".
package wizard

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/peppermintos/ice/internal/desktop"
	"github.com/peppermintos/ice/internal/ssb"
)

// ErrCancelled is returned when the user declines the final confirmation.
var ErrCancelled = errors.New("cancelled")

// RunCreate shows the create form and returns the resulting request.
func RunCreate(env *Environment) (ssb.Request, error) {
	answers := &CreateAnswers{}
	if err := BuildCreateForm(env, answers).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ssb.Request{}, ErrCancelled
		}
		return ssb.Request{}, fmt.Errorf("create form: %w", err)
	}
	if !answers.Confirmed {
		return ssb.Request{}, ErrCancelled
	}
	return answers.Request()
}

// RunRemove shows the remove multi-select and returns the chosen slugs.
func RunRemove(entries []*desktop.Entry) ([]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	answers := &RemoveAnswers{}
	if err := BuildRemoveForm(entries, answers).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("remove form: %w", err)
	}
	if !answers.Confirmed {
		return nil, ErrCancelled
	}
	return answers.Selected, nil
}
