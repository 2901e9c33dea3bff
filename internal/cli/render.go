package cli

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/allot/internal/model"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	goodStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	badStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// pad fills s to width display cells. Names may contain wide runes, so
// widths are measured with lipgloss rather than len.
func pad(s string, width int, right bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

func rule(b *strings.Builder, widths []int, left, mid, right string) {
	b.WriteString(dimStyle.Render(left))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(mid))
		}
	}
	b.WriteString(dimStyle.Render(right))
	b.WriteString("\n")
}

// RenderTable renders a bordered table with headers and rows. The first
// column is left-aligned and the rest right-aligned. A row of just "---"
// draws a separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], lipgloss.Width(cell))
				}
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule(&b, widths, "╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(" " + pad(h, widths[i], false) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		rule(&b, widths, "├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule(&b, widths, "├", "┼", "┤")
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(" " + pad(cell, widths[i], i > 0) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule(&b, widths, "╰", "┴", "╯")
	return b.String()
}

// ShareWidths splits width cells among values in proportion, using the
// largest-remainder method so the parts always sum to width.
func ShareWidths(values []float64, width int) []int {
	out := make([]int, len(values))
	var total float64
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}
	if total <= 0 || width <= 0 {
		return out
	}

	type rem struct {
		i    int
		frac float64
	}
	rems := make([]rem, 0, len(values))
	used := 0
	for i, v := range values {
		if v <= 0 {
			continue
		}
		exact := v / total * float64(width)
		out[i] = int(math.Floor(exact))
		used += out[i]
		rems = append(rems, rem{i, exact - float64(out[i])})
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for k := 0; used < width && k < len(rems); k++ {
		out[rems[k].i]++
		used++
	}
	return out
}

// RenderShareBar draws the chart series as one colored stacked bar. It is
// the terminal stand-in for the pie chart.
func RenderShareBar(s model.ChartSeries, width int) string {
	var b strings.Builder
	for i, w := range ShareWidths(s.Values, width) {
		if w == 0 {
			continue
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Colors[i]))
		b.WriteString(style.Render(strings.Repeat("█", w)))
	}
	return b.String()
}

// RenderLegend lists each chart entry with its swatch, share and amount.
func RenderLegend(s model.ChartSeries, currency string) string {
	if s.Empty {
		return "  " + lipgloss.NewStyle().Foreground(lipgloss.Color(model.NoDataColor)).Render("■") +
			" " + mutedStyle.Render(s.Labels[0]) + "\n"
	}

	var total float64
	for _, v := range s.Values {
		total += v
	}
	nameW := 0
	for _, l := range s.Labels {
		nameW = max(nameW, lipgloss.Width(l))
	}

	var b strings.Builder
	for i, l := range s.Labels {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Colors[i])).Render("■")
		share := s.Values[i] / total * 100
		fmt.Fprintf(&b, "  %s %s  %s  %s\n",
			swatch,
			valueStyle.Render(pad(l, nameW, false)),
			mutedStyle.Render(pad(FormatPercent(share), 6, true)),
			valueStyle.Render(FormatMoney(s.Values[i], currency)),
		)
	}
	return b.String()
}

// RenderSummary renders the totals block under the item table.
func RenderSummary(s model.Summary, currency string) string {
	remaining := goodStyle
	switch s.RemainingStatus {
	case model.RemainingNegative:
		remaining = badStyle
	case model.RemainingPositive:
		remaining = warnStyle
	}
	allocated := warnStyle
	switch s.AllocationStatus {
	case model.AllocationOver:
		allocated = badStyle
	case model.AllocationComplete:
		allocated = goodStyle
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render("Total funds "), valueStyle.Render(FormatMoney(s.TotalFunds, currency)))
	fmt.Fprintf(&b, "  %s %s %s\n", mutedStyle.Render("Allocated   "),
		valueStyle.Render(FormatMoney(s.AllocatedAmount, currency)),
		allocated.Render(fmt.Sprintf("(%s, %s)", FormatPercent(s.AllocatedPercentage), AllocationLabel(s.AllocationStatus))))
	fmt.Fprintf(&b, "  %s %s %s\n", mutedStyle.Render("Remaining   "),
		remaining.Render(FormatMoney(s.RemainingAmount, currency)),
		mutedStyle.Render("("+RemainingLabel(s.RemainingStatus)+")"))
	return b.String()
}

// ItemRows builds table rows for the portfolio table. Over-allocating rows
// are marked with "!".
func ItemRows(items []model.LineItem, over func(id string) bool, currency string) [][]string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		mark := ""
		if over != nil && over(it.ID) {
			mark = warnStyle.Render("!")
		}
		rows = append(rows, []string{
			it.ID,
			it.DisplayName(),
			it.Category.Label(),
			FormatMoney(it.Amount, currency),
			FormatPercent(it.Percentage),
			lipgloss.NewStyle().Foreground(lipgloss.Color(it.Color)).Render("■") + " " + it.Color,
			mark,
		})
	}
	return rows
}

// ItemHeaders matches the columns produced by ItemRows.
var ItemHeaders = []string{"ID", "Name", "Category", "Amount", "Share", "Color", ""}
