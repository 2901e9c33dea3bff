package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/allot/internal/alloc"
	"github.com/theirongolddev/allot/internal/config"
	"github.com/theirongolddev/allot/internal/model"
	"github.com/theirongolddev/allot/internal/tui/components"
	"github.com/theirongolddev/allot/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, funds string, withDefault bool) (App, *alloc.Session) {
	t.Helper()
	theme.SetActive(theme.FlexokiDark.Name)

	sess := alloc.NewSession()
	if funds != "" {
		require.NoError(t, sess.SetTotalFunds(funds))
	}
	if withDefault {
		_, err := sess.AddDefaultPortfolio()
		require.NoError(t, err)
	}

	a := NewApp(Options{
		Session:    sess,
		Config:     config.DefaultConfig(),
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		DataDir:    t.TempDir(),
		Logger:     zerolog.Nop(),
	})
	t.Cleanup(a.Close)

	a = send(a, tea.WindowSizeMsg{Width: 120, Height: 40})
	return a, sess
}

func send(a App, msg tea.Msg) App {
	m, _ := a.Update(msg)
	return m.(App)
}

func keys(a App, s string) App {
	for _, r := range s {
		a = send(a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return a
}

func enter(a App) App { return send(a, tea.KeyMsg{Type: tea.KeyEnter}) }
func esc(a App) App   { return send(a, tea.KeyMsg{Type: tea.KeyEsc}) }

func TestFundsEditThenDefaultPortfolio(t *testing.T) {
	a, sess := newTestApp(t, "", false)

	a = keys(a, "f")
	require.True(t, a.port.editing)
	a = send(a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("100000")})
	a = enter(a)

	assert.False(t, a.port.editing)
	assert.Nil(t, a.modalErr)
	assert.True(t, a.snap.FundsSet)
	_, v, _ := sess.TotalFunds()
	assert.Equal(t, 100000.0, v)

	a = keys(a, "D")
	require.Len(t, a.snap.Items, 5)
	assert.Equal(t, "Nasdaq 100", a.snap.Items[0].Name)
	assert.Equal(t, model.AllocationComplete, a.snap.Summary.AllocationStatus)
	assert.NotEmpty(t, a.toast)
}

func TestAddWithoutFundsOpensModal(t *testing.T) {
	a, _ := newTestApp(t, "", false)

	a = send(a, tea.KeyMsg{Type: tea.KeyCtrlN})
	require.Error(t, a.modalErr)
	assert.ErrorIs(t, a.modalErr, alloc.ErrInvalidState)
	assert.Nil(t, a.addForm)
	assert.Contains(t, errorText(a.modalErr), "total funds")

	// Other keys are swallowed until the modal is dismissed.
	a = keys(a, "2")
	assert.Equal(t, tabPortfolio, a.activeTab)
	a = esc(a)
	assert.Nil(t, a.modalErr)
}

func TestNudgeAndDelete(t *testing.T) {
	a, sess := newTestApp(t, "100000", true)

	a = keys(a, "j+")
	require.Equal(t, 1, a.port.cursor)
	assert.InDelta(t, 21, a.snap.Items[1].Percentage, 1e-9)
	assert.InDelta(t, 21000, a.snap.Items[1].Amount, 1e-9)
	assert.Equal(t, model.AllocationOver, a.snap.Summary.AllocationStatus)

	a = keys(a, "--")
	assert.InDelta(t, 19, a.snap.Items[1].Percentage, 1e-9)

	a = keys(a, "d")
	require.Len(t, a.snap.Items, 4)
	assert.Equal(t, "CSI 500", a.snap.Items[1].Name)
	assert.Len(t, sess.Items(), 4)
}

func TestCursorStaysInRange(t *testing.T) {
	a, _ := newTestApp(t, "100000", true)

	a = keys(a, "G")
	assert.Equal(t, 4, a.port.cursor)
	a = keys(a, "j")
	assert.Equal(t, 4, a.port.cursor)
	a = keys(a, "d")
	assert.Equal(t, 3, a.port.cursor)
	a = keys(a, "g")
	assert.Equal(t, 0, a.port.cursor)
}

func TestUnchangedEditIsNoop(t *testing.T) {
	a, sess := newTestApp(t, "1000", false)
	_, err := sess.AddItem(alloc.NewItem{Name: "Thirds", Percentage: 100.0 / 3})
	require.NoError(t, err)
	a = send(a, EventMsg{})
	before := sess.Items()

	a = keys(a, "ll") // percentage column
	a = enter(a)
	require.True(t, a.port.editing)
	assert.Equal(t, "33.3", a.port.input.Value())
	a = enter(a)

	assert.False(t, a.port.editing)
	assert.Equal(t, before, sess.Items())
}

func TestEditNameAndAmount(t *testing.T) {
	a, sess := newTestApp(t, "100000", true)

	a = enter(a)
	require.True(t, a.port.editing)
	a.port.input.SetValue("Tech")
	a = enter(a)
	assert.Equal(t, "Tech", sess.Items()[0].Name)

	a = keys(a, "l")
	a = enter(a)
	a.port.input.SetValue("50,000")
	a = enter(a)
	item := sess.Items()[0]
	assert.Equal(t, 50000.0, item.Amount)
	assert.InDelta(t, 50, item.Percentage, 1e-9)
}

func TestInvalidAmountShowsModal(t *testing.T) {
	a, sess := newTestApp(t, "100000", true)
	before := sess.Items()

	a = keys(a, "l")
	a = enter(a)
	a.port.input.SetValue("lots")
	a = enter(a)
	require.Error(t, a.modalErr)
	assert.ErrorIs(t, a.modalErr, alloc.ErrInvalidAmount)
	assert.Equal(t, before, sess.Items())

	a = esc(a)
	a = enter(a)
	a.port.input.SetValue("-5")
	a = enter(a)
	assert.ErrorIs(t, a.modalErr, alloc.ErrNegativeAmount)
}

func TestCycleCategoryAndColor(t *testing.T) {
	a, sess := newTestApp(t, "100000", true)

	a = keys(a, "lll") // category
	a = enter(a)
	assert.Equal(t, model.CategoryBond, sess.Items()[0].Category)

	a = keys(a, "l") // color
	a = enter(a)
	assert.Equal(t, model.Palette[1], sess.Items()[0].Color)

	a = keys(a, "l") // wraps to name
	assert.Equal(t, fieldName, a.port.field)
}

func TestSubmitAdd(t *testing.T) {
	a, sess := newTestApp(t, "2000", true)

	m, _ := a.submitAdd(addValues{name: " Gold ", category: model.CategoryOther, color: "#00b42a", percentage: "5"})
	a = m.(App)

	items := sess.Items()
	require.Len(t, items, 6)
	added := items[5]
	assert.Equal(t, "Gold", added.Name)
	assert.Equal(t, model.CategoryOther, added.Category)
	assert.Equal(t, "#00B42A", added.Color)
	assert.InDelta(t, 100, added.Amount, 1e-9)
	assert.Equal(t, 5, a.port.cursor)
	assert.Equal(t, "Added Gold", a.toast)
}

func TestTabSwitching(t *testing.T) {
	a, _ := newTestApp(t, "", false)

	a = keys(a, "2")
	assert.Equal(t, tabCharts, a.activeTab)
	a = send(a, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, tabSettings, a.activeTab)
	a = send(a, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, tabPortfolio, a.activeTab)
	a = send(a, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, tabSettings, a.activeTab)

	x := -1
	for i := 0; i < 200; i++ {
		if components.TabAtX(i) == tabCharts {
			x = i
			break
		}
	}
	require.GreaterOrEqual(t, x, 0)
	a = send(a, tea.MouseMsg{X: x, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, tabCharts, a.activeTab)
}

func TestHelpToggle(t *testing.T) {
	a, _ := newTestApp(t, "", false)

	a = keys(a, "?")
	assert.True(t, a.showHelp)
	assert.Contains(t, a.View(), "Keyboard Shortcuts")
	a = keys(a, "x")
	assert.False(t, a.showHelp)
}

func TestViewRendersEveryTab(t *testing.T) {
	for _, withItems := range []bool{false, true} {
		funds := ""
		if withItems {
			funds = "100000"
		}
		a, _ := newTestApp(t, funds, withItems)
		for _, k := range []string{"1", "2", "3"} {
			a = keys(a, k)
			out := a.View()
			assert.Contains(t, out, "allot", "tab %s", k)
			assert.Equal(t, 40, strings.Count(out, "\n")+1, "tab %s height", k)
		}
	}
}

func TestViewTooNarrow(t *testing.T) {
	a, _ := newTestApp(t, "", false)
	a = send(a, tea.WindowSizeMsg{Width: 40, Height: 20})
	assert.Contains(t, a.View(), "too narrow")
}

func TestSettingsSave(t *testing.T) {
	a, _ := newTestApp(t, "", false)
	a = keys(a, "3")

	// Theme is the first field.
	a = enter(a)
	require.True(t, a.settings.editing)
	a.settings.input.SetValue("no-such-theme")
	a = enter(a)
	assert.Error(t, a.settings.saveErr)
	assert.Equal(t, "flexoki-dark", a.cfg.Display.Theme)

	a = enter(a)
	a.settings.input.SetValue("tokyo-night")
	a = enter(a)
	require.NoError(t, a.settings.saveErr)
	assert.Equal(t, "tokyo-night", a.cfg.Display.Theme)
	assert.Equal(t, "tokyo-night", theme.Active.Name)

	saved, err := config.LoadFile(a.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "tokyo-night", saved.Display.Theme)

	// Currency must be a known code.
	a = keys(a, "j")
	a = enter(a)
	a.settings.input.SetValue("zzz")
	a = enter(a)
	assert.Error(t, a.settings.saveErr)
	a = enter(a)
	a.settings.input.SetValue("eur")
	a = enter(a)
	require.NoError(t, a.settings.saveErr)
	assert.Equal(t, "EUR", a.cfg.Display.Currency)
}

func TestCycleThemeSavesConfig(t *testing.T) {
	a, _ := newTestApp(t, "", false)
	a = keys(a, "t")
	assert.Equal(t, theme.Next("flexoki-dark").Name, theme.Active.Name)
	_, err := os.Stat(a.cfgPath)
	assert.NoError(t, err)
}

func TestFinishSetup(t *testing.T) {
	a, sess := newTestApp(t, "", false)
	a.setupVals = &setupValues{funds: "50000", loadDefault: true, theme: "terminal"}

	m, _ := a.finishSetup(true)
	a = m.(App)

	assert.Nil(t, a.setupVals)
	assert.Equal(t, "terminal", a.cfg.Display.Theme)
	assert.Len(t, sess.Items(), 5)
	assert.Len(t, a.snap.Items, 5)
	_, err := os.Stat(a.cfgPath)
	assert.NoError(t, err)
}

func TestFinishSetupSkipped(t *testing.T) {
	a, sess := newTestApp(t, "", false)
	a.setupVals = &setupValues{funds: "50000", loadDefault: true, theme: "terminal"}

	m, _ := a.finishSetup(false)
	a = m.(App)

	_, _, set := sess.TotalFunds()
	assert.False(t, set)
	assert.Equal(t, "flexoki-dark", a.cfg.Display.Theme)
}

func TestParseNumberInput(t *testing.T) {
	v, err := parseNumberInput(" 1,250.5 ")
	require.NoError(t, err)
	assert.Equal(t, 1250.5, v)

	v, err = parseNumberInput("")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = parseNumberInput("1e")
	assert.ErrorIs(t, err, alloc.ErrInvalidAmount)
}
