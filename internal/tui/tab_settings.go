package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/allot/internal/cli"
	"github.com/theirongolddev/allot/internal/config"
	"github.com/theirongolddev/allot/internal/tui/components"
	"github.com/theirongolddev/allot/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

const (
	settingsFieldTheme = iota
	settingsFieldCurrency
	settingsFieldStore
	settingsFieldRecordKey
	settingsFieldDataDir
	settingsFieldLogLevel
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func (a App) updateSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
	case "enter":
		return a.settingsStartEdit()
	}
	return a, nil
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false

	ti := newSettingsInput()

	switch a.settings.cursor {
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(a.cfg.Display.Theme)
	case settingsFieldCurrency:
		ti.Placeholder = "ISO 4217 code, e.g. USD, EUR, CNY"
		ti.SetValue(a.cfg.Display.Currency)
	case settingsFieldStore:
		ti.Placeholder = config.StoreFile + " or " + config.StoreSQLite
		ti.SetValue(a.cfg.General.Store)
	case settingsFieldRecordKey:
		ti.Placeholder = "investment-portfolio-data"
		ti.SetValue(a.cfg.General.RecordKey)
	case settingsFieldDataDir:
		ti.Placeholder = "leave empty for the default location"
		ti.SetValue(a.cfg.General.DataDir)
	case settingsFieldLogLevel:
		ti.Placeholder = "debug, info, warn, error"
		ti.SetValue(a.cfg.Log.Level)
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates the edited field and writes the whole config.
// Invalid values leave the config untouched and surface in saveErr.
func (a *App) settingsSave() {
	cfg := a.cfg
	val := strings.TrimSpace(a.settings.input.Value())

	switch a.settings.cursor {
	case settingsFieldTheme:
		if !theme.Known(val) {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return
		}
		cfg.Display.Theme = val
	case settingsFieldCurrency:
		cfg.Display.Currency = strings.ToUpper(val)
	case settingsFieldStore:
		cfg.General.Store = strings.ToLower(val)
	case settingsFieldRecordKey:
		cfg.General.RecordKey = val
	case settingsFieldDataDir:
		cfg.General.DataDir = val
	case settingsFieldLogLevel:
		if _, err := zerolog.ParseLevel(strings.ToLower(val)); err != nil || val == "" {
			a.settings.saveErr = fmt.Errorf("unknown log level %q", val)
			return
		}
		cfg.Log.Level = strings.ToLower(val)
	}

	if err := cfg.Validate(); err != nil {
		a.settings.saveErr = err
		return
	}
	if err := config.SaveFile(a.cfgPath, cfg); err != nil {
		a.settings.saveErr = err
		return
	}

	a.cfg = cfg
	a.settings.saveErr = nil
	theme.SetActive(cfg.Display.Theme)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := a.cfg

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	type field struct {
		label   string
		value   string
		restart bool // takes effect on next start
	}

	dataDir := cfg.General.DataDir
	if dataDir == "" {
		dataDir = "(default)"
	}

	fields := []field{
		{"Theme", cfg.Display.Theme, false},
		{"Currency", cfg.Display.Currency, false},
		{"Store", cfg.General.Store, true},
		{"Record Key", cfg.General.RecordKey, true},
		{"Data Directory", dataDir, true},
		{"Log Level", cfg.Log.Level, true},
	}

	innerW := components.CardInnerWidth(cw)

	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		note := ""
		if f.restart {
			note = "  (next start)"
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value + note)
			formBody.WriteString(marker)
			formBody.WriteString(label)
			formBody.WriteString(value)
			usedWidth := lipgloss.Width(marker) + lipgloss.Width(label) + lipgloss.Width(value)
			if padLen := innerW - usedWidth; padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
			formBody.WriteString(dimStyle.Render(note))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	// Storage info card
	persist := "ok"
	persistStyle := greenStyle
	if err := a.sess.LastPersistError(); err != nil {
		persist = err.Error()
		persistStyle = lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	}

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Data directory:  ") + valueStyle.Render(a.dataDir) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:     ") + valueStyle.Render(a.cfgPath) + "\n")
	infoBody.WriteString(labelStyle.Render("Items:           ") + valueStyle.Render(cli.FormatNumber(int64(len(a.snap.Items)))) + "\n")
	infoBody.WriteString(labelStyle.Render("ID counter:      ") + valueStyle.Render(cli.FormatNumber(int64(a.snap.Counter))) + "\n")
	infoBody.WriteString(labelStyle.Render("Last save:       ") + persistStyle.Render(persist))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Storage", infoBody.String(), cw))

	return b.String()
}
