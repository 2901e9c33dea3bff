// Package tui provides the interactive Bubble Tea form for allot.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/allot/internal/alloc"
	"github.com/theirongolddev/allot/internal/config"
	"github.com/theirongolddev/allot/internal/tui/components"
	"github.com/theirongolddev/allot/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// EventMsg carries a session event into the Bubble Tea loop.
type EventMsg struct {
	Event alloc.Event
}

type toastExpiredMsg struct {
	seq int
}

const (
	tabPortfolio = iota
	tabCharts
	tabSettings
)

const (
	minTerminalWidth = 60
	maxContentWidth  = 140
	minContentHeight = 5
	toastDuration    = 3 * time.Second
)

// Options configures NewApp.
type Options struct {
	Session    *alloc.Session
	Config     config.Config
	ConfigPath string
	DataDir    string
	NeedSetup  bool
	Logger     zerolog.Logger
}

// App is the root Bubble Tea model.
type App struct {
	sess   *alloc.Session
	snap   alloc.Snapshot
	events chan alloc.Event
	unsub  func()

	cfg     config.Config
	cfgPath string
	dataDir string
	log     zerolog.Logger

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	port     portfolioState
	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues

	// Add-item dialog (huh form)
	addForm *huh.Form
	addVals *addValues

	// Error modal and toast
	modalErr   error
	toast      string
	toastLevel int
	toastSeq   int
}

// NewApp creates the TUI model over an existing session.
func NewApp(opts Options) App {
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.ConfigPath()
	}
	theme.SetActive(opts.Config.Display.Theme)

	events := make(chan alloc.Event, 32)
	unsub := opts.Session.Subscribe(func(ev alloc.Event) {
		select {
		case events <- ev:
		default:
			// The UI re-reads the full snapshot on the next event, so a
			// dropped event loses nothing.
		}
	})

	a := App{
		sess:    opts.Session,
		snap:    opts.Session.Snapshot(),
		events:  events,
		unsub:   unsub,
		cfg:     opts.Config,
		cfgPath: opts.ConfigPath,
		dataDir: opts.DataDir,
		log:     opts.Logger,
	}
	if opts.NeedSetup {
		a.setupVals = &setupValues{theme: theme.Active.Name}
		a.setupForm = newSetupForm(a.setupVals)
	}
	return a
}

// Close detaches the app from session events.
func (a App) Close() {
	if a.unsub != nil {
		a.unsub()
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		waitForEvent(a.events),
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

func waitForEvent(ch <-chan alloc.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return EventMsg{Event: ev}
	}
}

// refresh re-reads the session and keeps the cursor in range.
func (a *App) refresh() {
	a.snap = a.sess.Snapshot()
	if a.port.cursor >= len(a.snap.Items) {
		a.port.cursor = len(a.snap.Items) - 1
	}
	if a.port.cursor < 0 {
		a.port.cursor = 0
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(min(msg.Width, 72)).WithHeight(msg.Height)
		}
		if a.addForm != nil {
			a.addForm = a.addForm.WithWidth(min(msg.Width, 72)).WithHeight(msg.Height)
		}
		return a, nil

	case EventMsg:
		a.refresh()
		a.log.Debug().Str("kind", string(msg.Event.Kind)).Int64("seq", msg.Event.Seq).Msg("session event")
		return a, waitForEvent(a.events)

	case toastExpiredMsg:
		if msg.seq == a.toastSeq {
			a.toast = ""
		}
		return a, nil

	case tea.MouseMsg:
		if a.setupForm != nil || a.addForm != nil || a.modalErr != nil || a.showHelp {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabPortfolio && !a.port.editing {
				a.port.moveRow(-1, len(a.snap.Items))
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabPortfolio && !a.port.editing {
				a.port.moveRow(1, len(a.snap.Items))
			}
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := components.TabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)
	}

	// Forward unhandled messages to active forms (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.addForm != nil {
		return a.updateAddForm(msg)
	}
	if a.port.editing {
		var cmd tea.Cmd
		a.port.input, cmd = a.port.input.Update(msg)
		return a, cmd
	}
	if a.settings.editing {
		var cmd tea.Cmd
		a.settings.input, cmd = a.settings.input.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global: quit
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	// Forms intercept all keys
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.addForm != nil {
		return a.updateAddForm(msg)
	}

	// Error modal: only dismissal keys
	if a.modalErr != nil {
		switch key {
		case "esc", "enter", " ", "q":
			a.modalErr = nil
		}
		return a, nil
	}

	// Inline text inputs
	if a.port.editing {
		return a.updatePortfolioInput(msg)
	}
	if a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "ctrl+n":
		return a.openAddForm()
	case "D":
		return a.loadDefaultPortfolio()
	case "f":
		return a.startFundsEdit()
	case "t":
		return a.cycleTheme()
	}
	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
			return a, nil
		}
	}

	switch a.activeTab {
	case tabPortfolio:
		return a.updatePortfolioKey(msg)
	case tabSettings:
		return a.updateSettingsKey(msg)
	}
	return a, nil
}

// apply runs a session mutation and reports the outcome: an error opens
// the modal, success refreshes the view and shows ok as a toast. A failed
// save still counts as success but warns in the toast.
func (a App) apply(ok string, fn func() error) (App, tea.Cmd) {
	if err := fn(); err != nil {
		a.log.Debug().Err(err).Msg("edit rejected")
		a.modalErr = err
		return a, nil
	}
	a.refresh()
	if perr := a.sess.LastPersistError(); perr != nil {
		return a.notify("Not saved: "+perr.Error(), components.ToastWarn)
	}
	if ok == "" {
		return a, nil
	}
	return a.notify(ok, components.ToastInfo)
}

func (a App) notify(text string, level int) (App, tea.Cmd) {
	a.toastSeq++
	a.toast = text
	a.toastLevel = level
	seq := a.toastSeq
	return a, tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

func (a App) loadDefaultPortfolio() (tea.Model, tea.Cmd) {
	var ids []string
	a, cmd := a.apply("", func() error {
		var err error
		ids, err = a.sess.AddDefaultPortfolio()
		return err
	})
	if len(ids) > 0 {
		a.port.cursor = 0
		return a.notify(fmt.Sprintf("Loaded default portfolio (%d items)", len(ids)), components.ToastInfo)
	}
	return a, cmd
}

func (a App) cycleTheme() (tea.Model, tea.Cmd) {
	next := theme.Next(theme.Active.Name)
	theme.SetActive(next.Name)
	a.cfg.Display.Theme = next.Name
	if err := config.SaveFile(a.cfgPath, a.cfg); err != nil {
		return a.notify("Theme not saved: "+err.Error(), components.ToastWarn)
	}
	return a.notify("Theme: "+next.Name, components.ToastInfo)
}

// errorText turns session errors into something a user can act on.
func errorText(err error) string {
	switch {
	case errors.Is(err, alloc.ErrInvalidState) && errors.Is(err, alloc.ErrInvalidTotalFunds):
		return "Enter total funds first. Press f to set them."
	case errors.Is(err, alloc.ErrInvalidState):
		return "The portfolio cannot be edited right now."
	case errors.Is(err, alloc.ErrInvalidTotalFunds):
		return "Total funds must be a positive number."
	case errors.Is(err, alloc.ErrNegativeAmount):
		return "Amounts cannot be negative."
	case errors.Is(err, alloc.ErrInvalidAmount):
		return "Enter the amount as a number."
	case errors.Is(err, alloc.ErrNotFound):
		return "That item no longer exists."
	case errors.Is(err, alloc.ErrInvalidColor):
		return "Colors are hex values like #165DFF."
	case errors.Is(err, alloc.ErrInvalidCategory):
		return "Unknown category."
	default:
		return err.Error()
	}
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.setupForm != nil {
		return a.viewForm("Welcome to allot", "Let's set up your portfolio.", a.setupForm)
	}

	if a.addForm != nil {
		return a.viewForm("Add item", "Esc cancels.", a.addForm)
	}

	if a.modalErr != nil {
		return components.Modal("Something went wrong", errorText(a.modalErr), "Press Esc to dismiss", true, a.width, a.height)
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  allot needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewForm(title, subtitle string, form *huh.Form) string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	body := titleStyle.Render("◈ "+title) + "\n" + subStyle.Render(subtitle) + "\n\n" + form.View()
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, body)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		name     string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"1 2 3", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move between items"},
			{"h l", "Move between fields"},
		}},
		{"Editing", []struct{ key, desc string }{
			{"Enter", "Edit field (cycles category and color)"},
			{"+ -", "Nudge share by 1%"},
			{"ctrl+n", "Add item"},
			{"d", "Delete item"},
			{"D", "Load default portfolio"},
			{"f", "Set total funds"},
		}},
		{"General", []struct{ key, desc string }{
			{"t", "Cycle theme"},
			{"Esc", "Cancel / Dismiss"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.name))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	hints := "[?]help  [q]uit"
	switch a.activeTab {
	case tabPortfolio:
		hints = "[enter]edit  [+/-]share  [ctrl+n]add  [d]el  [f]unds  [?]help"
	case tabSettings:
		hints = "[j/k]move  [enter]edit  [?]help"
	}
	info := fmt.Sprintf("%d items", len(a.snap.Items))
	statusBar := components.RenderStatusBar(w, hints, info, a.toast, a.toastLevel)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabPortfolio:
		content = a.renderPortfolioTab(cw)
	case tabCharts:
		content = a.renderChartsTab(cw, contentH)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
