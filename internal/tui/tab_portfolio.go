package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/theirongolddev/allot/internal/alloc"
	"github.com/theirongolddev/allot/internal/cli"
	"github.com/theirongolddev/allot/internal/model"
	"github.com/theirongolddev/allot/internal/tui/components"
	"github.com/theirongolddev/allot/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fieldName = iota
	fieldAmount
	fieldPercentage
	fieldCategory
	fieldColor
	fieldCount // sentinel
)

// editFunds marks the total-funds input, which is not a table column.
const editFunds = -1

// portfolioState tracks the item table cursor and the inline editor.
type portfolioState struct {
	cursor int
	field  int

	editing bool
	target  int // a field constant or editFunds
	itemID  string
	initial string
	input   textinput.Model
}

func (p *portfolioState) moveRow(delta, n int) {
	if n == 0 {
		p.cursor = 0
		return
	}
	p.cursor = min(max(p.cursor+delta, 0), n-1)
}

func (p *portfolioState) moveField(delta int) {
	p.field = (p.field + delta + fieldCount) % fieldCount
}

func newInlineInput(value, placeholder string) textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 24
	ti.Placeholder = placeholder
	ti.SetValue(value)
	ti.Focus()
	return ti
}

func (a App) selectedItem() (model.LineItem, bool) {
	if a.port.cursor < 0 || a.port.cursor >= len(a.snap.Items) {
		return model.LineItem{}, false
	}
	return a.snap.Items[a.port.cursor], true
}

func (a App) updatePortfolioKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(a.snap.Items)

	switch msg.String() {
	case "j", "down":
		a.port.moveRow(1, n)
	case "k", "up":
		a.port.moveRow(-1, n)
	case "g", "home":
		a.port.cursor = 0
	case "G", "end":
		a.port.moveRow(n, n)
	case "l", "tab":
		a.port.moveField(1)
	case "h", "shift+tab":
		a.port.moveField(-1)
	case "enter":
		return a.startFieldEdit()
	case "+", "=":
		return a.nudgePercentage(1)
	case "-", "_":
		return a.nudgePercentage(-1)
	case "d", "delete":
		item, ok := a.selectedItem()
		if !ok {
			return a, nil
		}
		return a.apply("Removed "+item.DisplayName(), func() error {
			return a.sess.RemoveItem(item.ID)
		})
	}
	return a, nil
}

func (a App) nudgePercentage(delta float64) (tea.Model, tea.Cmd) {
	item, ok := a.selectedItem()
	if !ok {
		return a, nil
	}
	pct := item.Percentage + delta
	return a.apply("", func() error {
		return a.sess.UpdateItem(item.ID, alloc.Patch{Percentage: &pct})
	})
}

func (a App) startFundsEdit() (tea.Model, tea.Cmd) {
	a.activeTab = tabPortfolio
	a.port.editing = true
	a.port.target = editFunds
	a.port.itemID = ""
	a.port.initial = a.snap.TotalFunds
	a.port.input = newInlineInput(a.snap.TotalFunds, "e.g. 100000 (blank to clear)")
	return a, a.port.input.Cursor.BlinkCmd()
}

// startFieldEdit opens the inline editor on text fields and cycles the
// value of choice fields.
func (a App) startFieldEdit() (tea.Model, tea.Cmd) {
	item, ok := a.selectedItem()
	if !ok {
		return a, nil
	}

	switch a.port.field {
	case fieldCategory:
		next := nextCategory(item.Category)
		return a.apply("", func() error {
			return a.sess.UpdateItem(item.ID, alloc.Patch{Category: &next})
		})
	case fieldColor:
		next := nextColor(item.Color)
		return a.apply("", func() error {
			return a.sess.UpdateItem(item.ID, alloc.Patch{Color: &next})
		})
	}

	var value string
	switch a.port.field {
	case fieldName:
		value = item.Name
	case fieldAmount:
		value = cli.FormatAmount(item.Amount)
	case fieldPercentage:
		value = strings.TrimSuffix(cli.FormatPercent(item.Percentage), "%")
	}

	a.port.editing = true
	a.port.target = a.port.field
	a.port.itemID = item.ID
	a.port.initial = value
	a.port.input = newInlineInput(value, "")
	return a, a.port.input.Cursor.BlinkCmd()
}

func (a App) updatePortfolioInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.port.editing = false
		return a, nil
	case "enter":
		a.port.editing = false
		return a.commitPortfolioInput(a.port.input.Value())
	}

	var cmd tea.Cmd
	a.port.input, cmd = a.port.input.Update(msg)
	return a, cmd
}

// commitPortfolioInput applies the editor value. An untouched value is a
// no-op so rounding in the prefilled text never rewrites stored precision.
func (a App) commitPortfolioInput(raw string) (tea.Model, tea.Cmd) {
	if raw == a.port.initial {
		return a, nil
	}

	if a.port.target == editFunds {
		return a.apply("Total funds updated", func() error {
			return a.sess.SetTotalFunds(raw)
		})
	}

	id := a.port.itemID
	var patch alloc.Patch
	switch a.port.target {
	case fieldName:
		patch.Name = &raw
	case fieldAmount, fieldPercentage:
		v, err := parseNumberInput(raw)
		if err != nil {
			a.modalErr = err
			return a, nil
		}
		if a.port.target == fieldAmount {
			patch.Amount = &v
		} else {
			patch.Percentage = &v
		}
	}
	return a.apply("", func() error {
		return a.sess.UpdateItem(id, patch)
	})
}

// parseNumberInput reads a numeric field. A blank field means zero.
func parseNumberInput(raw string) (float64, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", alloc.ErrInvalidAmount, raw)
	}
	return v, nil
}

func nextCategory(c model.Category) model.Category {
	i := slices.Index(model.Categories, c)
	return model.Categories[(i+1)%len(model.Categories)]
}

func nextColor(c string) string {
	i := slices.Index(model.Palette, model.NormalizeColor(c))
	return model.Palette[(i+1)%len(model.Palette)]
}

func (a App) renderPortfolioTab(cw int) string {
	t := theme.Active
	sum := a.snap.Summary
	cur := a.cfg.Display.Currency

	// Funds card or inline funds editor
	fundsValue := "not set"
	fundsNote := "press f to set"
	if a.snap.FundsSet {
		fundsValue = cli.FormatMoney(sum.TotalFunds, cur)
		fundsNote = ""
	}
	if a.port.editing && a.port.target == editFunds {
		fundsValue = a.port.input.View()
		fundsNote = "enter to save, esc to cancel"
	}

	remainingColor := t.GreenBright
	if sum.RemainingStatus == model.RemainingNegative {
		remainingColor = t.Red
	}

	metrics := []components.Metric{
		{Label: "Total Funds", Value: fundsValue, Note: fundsNote, Color: t.AccentBright},
		{Label: "Allocated", Value: cli.FormatMoney(sum.AllocatedAmount, cur), Note: cli.AllocationLabel(sum.AllocationStatus), Color: components.ColorForAllocation(sum.AllocationStatus)},
		{Label: "Remaining", Value: cli.FormatMoney(sum.RemainingAmount, cur), Note: cli.RemainingLabel(sum.RemainingStatus), Color: remainingColor},
	}
	if cw >= 100 {
		metrics = append(metrics, components.Metric{Label: "Items", Value: strconv.Itoa(sum.Items)})
	}

	gaugeW := max(components.CardInnerWidth(cw)-18, 10)
	gauge := components.AllocationGauge("Allocated", sum.AllocatedPercentage, sum.AllocationStatus, 10, gaugeW)

	var b strings.Builder
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("", gauge, cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Line Items", a.renderItemTable(components.CardInnerWidth(cw)), cw))
	return b.String()
}

func (a App) renderItemTable(innerW int) string {
	t := theme.Active
	cur := a.cfg.Display.Currency

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright)
	cellStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.AccentDim).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	if len(a.snap.Items) == 0 {
		if !a.snap.FundsSet {
			return mutedStyle.Render("No items yet. Press f to set total funds, then ctrl+n to add an item or D for the default portfolio.")
		}
		return mutedStyle.Render("No items yet. Press ctrl+n to add an item or D for the default portfolio.")
	}

	// Fixed columns; name takes what is left.
	catW, amtW, pctW, colorW, flagW := 12, 16, 8, 10, 2
	nameW := max(innerW-2-catW-amtW-pctW-colorW-flagW-5, 8)
	widths := [fieldCount]int{nameW, amtW, pctW, catW, colorW}

	var b strings.Builder
	b.WriteString(headerStyle.Render(
		"  " + fitText("Name", nameW) + " " + padLeft("Amount", amtW) + " " + padLeft("Share", pctW) + " " +
			fitText("Category", catW) + " " + fitText("Color", colorW) + strings.Repeat(" ", flagW)))
	b.WriteString("\n")

	totalFunds := a.snap.Summary.TotalFunds
	for i, it := range a.snap.Items {
		selected := i == a.port.cursor
		base := rowStyle
		if selected {
			base = selStyle
		}

		cells := [fieldCount]string{
			fitText(it.DisplayName(), nameW),
			padLeft(cli.FormatMoney(it.Amount, cur), amtW),
			padLeft(cli.FormatPercent(it.Percentage), pctW),
			fitText(it.Category.Label(), catW),
			"",
		}

		if selected {
			b.WriteString(markerStyle.Render("▸ "))
		} else {
			b.WriteString(base.Render("  "))
		}

		for f := 0; f < fieldCount; f++ {
			if f > 0 {
				b.WriteString(base.Render(" "))
			}
			if selected && a.port.editing && a.port.target == f {
				b.WriteString(fitStyled(a.port.input.View(), widths[f], base))
				continue
			}
			style := base
			if selected && f == a.port.field {
				style = cellStyle
			}
			if f == fieldColor {
				swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(it.Color)).Background(style.GetBackground()).Render("██")
				b.WriteString(swatch + style.Render(fitText(" "+it.Color, colorW-2)))
				continue
			}
			b.WriteString(style.Render(cells[f]))
		}

		if alloc.OverAllocated(a.snap.Items, it.ID, totalFunds) {
			b.WriteString(warnStyle.Render(padLeft("!", flagW)))
		} else {
			b.WriteString(base.Render(strings.Repeat(" ", flagW)))
		}
		if i < len(a.snap.Items)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// fitText truncates or right-pads s to exactly w cells.
func fitText(s string, w int) string {
	s = truncStr(s, w)
	return s + strings.Repeat(" ", max(w-lipgloss.Width(s), 0))
}

func padLeft(s string, w int) string {
	return strings.Repeat(" ", max(w-lipgloss.Width(s), 0)) + s
}

// fitStyled pads a pre-rendered string to w cells with the row background.
func fitStyled(s string, w int, bg lipgloss.Style) string {
	if pad := w - lipgloss.Width(s); pad > 0 {
		return s + bg.Render(strings.Repeat(" ", pad))
	}
	return s
}
