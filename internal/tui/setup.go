package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/allot/internal/alloc"
	"github.com/theirongolddev/allot/internal/config"
	"github.com/theirongolddev/allot/internal/model"
	"github.com/theirongolddev/allot/internal/tui/components"
	"github.com/theirongolddev/allot/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// setupValues holds the first-run form bindings.
type setupValues struct {
	funds       string
	loadDefault bool
	theme       string
}

func newSetupForm(v *setupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Total investable funds").
				Description("Leave blank to set it later with f.").
				Placeholder("100000").
				Value(&v.funds).
				Validate(func(s string) error {
					_, _, err := alloc.ParseTotalFunds(s)
					if err != nil {
						return fmt.Errorf("enter a positive number")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Start from the default portfolio?").
				Description("Nasdaq 100, S&P 500, CSI 500, credit bonds and MSCI.").
				Affirmative("Yes").
				Negative("No").
				Value(&v.loadDefault),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.theme),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		// Skipping still writes the config so setup is not offered again.
		a.setupForm = nil
		return a.finishSetup(false)
	}

	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupForm = nil
		return a.finishSetup(true)
	case huh.StateAborted:
		a.setupForm = nil
		return a.finishSetup(false)
	}

	return a, cmd
}

// finishSetup saves the config and applies the answers when the form was
// completed.
func (a App) finishSetup(completed bool) (tea.Model, tea.Cmd) {
	v := a.setupVals
	a.setupVals = nil

	if completed && v != nil {
		if theme.Known(v.theme) {
			a.cfg.Display.Theme = v.theme
			theme.SetActive(v.theme)
		}
	}
	if err := config.SaveFile(a.cfgPath, a.cfg); err != nil {
		a.log.Warn().Err(err).Str("path", a.cfgPath).Msg("saving config after setup")
	}

	if !completed || v == nil || strings.TrimSpace(v.funds) == "" {
		return a, nil
	}

	if err := a.sess.SetTotalFunds(v.funds); err != nil {
		a.modalErr = err
		return a, nil
	}
	if v.loadDefault {
		return a.loadDefaultPortfolio()
	}
	a.refresh()
	return a, nil
}

// addValues holds the add-item form bindings.
type addValues struct {
	name       string
	category   model.Category
	color      string // empty picks a random palette swatch
	percentage string
}

func newAddForm(v *addValues) *huh.Form {
	catOpts := make([]huh.Option[model.Category], 0, len(model.Categories))
	for _, c := range model.Categories {
		catOpts = append(catOpts, huh.NewOption(c.Label(), c))
	}

	colorOpts := []huh.Option[string]{huh.NewOption("Random", "")}
	for _, c := range model.Palette {
		colorOpts = append(colorOpts, huh.NewOption(c, c))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder(model.UntitledName).
				Value(&v.name),
			huh.NewSelect[model.Category]().
				Title("Category").
				Options(catOpts...).
				Value(&v.category),
			huh.NewSelect[string]().
				Title("Color").
				Options(colorOpts...).
				Value(&v.color),
			huh.NewInput().
				Title("Share of total funds (%)").
				Placeholder("0").
				Value(&v.percentage).
				Validate(func(s string) error {
					if _, err := parseNumberInput(s); err != nil {
						return fmt.Errorf("enter a number")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}

func (a App) openAddForm() (tea.Model, tea.Cmd) {
	if !a.snap.FundsSet {
		a.modalErr = fmt.Errorf("add item: %w: %w", alloc.ErrInvalidState, alloc.ErrInvalidTotalFunds)
		return a, nil
	}
	a.activeTab = tabPortfolio
	a.addVals = &addValues{category: model.DefaultCategory}
	a.addForm = newAddForm(a.addVals)
	if a.width > 0 {
		a.addForm = a.addForm.WithWidth(min(a.width, 72)).WithHeight(a.height)
	}
	return a, a.addForm.Init()
}

func (a App) updateAddForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		a.addForm, a.addVals = nil, nil
		return a, nil
	}

	form, cmd := a.addForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.addForm = f
	}

	switch a.addForm.State {
	case huh.StateAborted:
		a.addForm, a.addVals = nil, nil
		return a, nil
	case huh.StateCompleted:
		v := a.addVals
		a.addForm, a.addVals = nil, nil
		return a.submitAdd(*v)
	}

	return a, cmd
}

func (a App) submitAdd(v addValues) (tea.Model, tea.Cmd) {
	pct, err := parseNumberInput(v.percentage)
	if err != nil {
		a.modalErr = err
		return a, nil
	}

	var id string
	a, cmd := a.apply("", func() error {
		var err error
		id, err = a.sess.AddItem(alloc.NewItem{
			Name:       v.name,
			Category:   v.category,
			Color:      v.color,
			Percentage: pct,
		})
		return err
	})
	if id == "" {
		return a, cmd
	}
	a.port.cursor = len(a.snap.Items) - 1
	name := strings.TrimSpace(v.name)
	if name == "" {
		name = model.UntitledName
	}
	if a.sess.LastPersistError() != nil {
		return a, cmd
	}
	return a.notify("Added "+name, components.ToastInfo)
}
