package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/peppermintos/ice/internal/desktop"
)

// BuildCreateForm constructs the interactive create form.
func BuildCreateForm(env *Environment, answers *CreateAnswers) *huh.Form {
	answers.Defaults(env)

	groups := []*huh.Group{
		welcomeGroup(env),
		detailsGroup(env, answers),
		placementGroup(env, answers),
		isolateGroup(answers),
		iconGroup(answers),
		iconFileGroup(answers),
		confirmGroup(answers),
	}
	return huh.NewForm(groups...).WithTheme(huh.ThemeCatppuccin())
}

func welcomeGroup(env *Environment) *huh.Group {
	names := make([]string, 0, len(env.Installed))
	for _, b := range env.Installed {
		names = append(names, b.DisplayName())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Browsers:  %s\n", strings.Join(names, ", ")))
	sb.WriteString(fmt.Sprintf("SSBs:      %d installed", len(env.Existing)))

	return huh.NewGroup(
		huh.NewNote().
			Title("Ice").
			Description("Create a site-specific browser.\n\n" + sb.String()),
	)
}

func detailsGroup(env *Environment, answers *CreateAnswers) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().
			Title("Name").
			Description("Shown in the applications menu.").
			Value(&answers.Name).
			Validate(ValidateName(env)),
		huh.NewInput().
			Title("Address").
			Placeholder("https://example.com").
			Value(&answers.URL).
			Validate(ValidateAddress),
	)
}

func placementGroup(env *Environment, answers *CreateAnswers) *huh.Group {
	catOpts := make([]huh.Option[string], 0, len(desktop.Categories))
	for _, c := range desktop.Categories {
		catOpts = append(catOpts, huh.NewOption(string(c), string(c)))
	}

	browserOpts := make([]huh.Option[string], 0, len(env.Installed))
	for _, b := range env.Installed {
		browserOpts = append(browserOpts, huh.NewOption(b.DisplayName(), string(b)))
	}

	return huh.NewGroup(
		huh.NewSelect[string]().
			Title("Menu category").
			Options(catOpts...).
			Value(&answers.Category),
		huh.NewSelect[string]().
			Title("Browser").
			Options(browserOpts...).
			Value(&answers.Browser),
	)
}

func isolateGroup(answers *CreateAnswers) *huh.Group {
	return huh.NewGroup(
		huh.NewConfirm().
			Title("Isolate the SSB?").
			Description("An isolated SSB gets its own browser profile: separate\n" +
				"logins, cookies and history.").
			Value(&answers.Isolate),
	).WithHideFunc(answers.AlwaysIsolated)
}

func iconGroup(answers *CreateAnswers) *huh.Group {
	return huh.NewGroup(
		huh.NewSelect[string]().
			Title("Icon").
			Options(
				huh.NewOption("Download the site's icon", IconFavicon),
				huh.NewOption("Choose an image file", IconFile),
				huh.NewOption("Use the default icon", IconDefault),
			).
			Value(&answers.IconSource),
	)
}

func iconFileGroup(answers *CreateAnswers) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().
			Title("Icon file").
			Value(&answers.IconPath).
			Validate(ValidateIconFile),
	).WithHideFunc(func() bool { return answers.IconSource != IconFile })
}

func confirmGroup(answers *CreateAnswers) *huh.Group {
	return huh.NewGroup(
		huh.NewConfirm().
			TitleFunc(func() string {
				return fmt.Sprintf("Create %q?", strings.TrimSpace(answers.Name))
			}, &answers.Name).
			Value(&answers.Confirmed),
	)
}

// BuildRemoveForm constructs the multi-select used when remove is run
// without arguments.
func BuildRemoveForm(entries []*desktop.Entry, answers *RemoveAnswers) *huh.Form {
	opts := make([]huh.Option[string], 0, len(entries))
	for _, e := range entries {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s)", e.Name, e.Marker), e.Slug()))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Remove SSBs").
				Description("Launchers and their profiles will be deleted.").
				Options(opts...).
				Value(&answers.Selected).
				Validate(func(s []string) error {
					if len(s) == 0 {
						return fmt.Errorf("select at least one SSB")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete the selected SSBs?").
				Value(&answers.Confirmed),
		),
	).WithTheme(huh.ThemeCatppuccin())
}
