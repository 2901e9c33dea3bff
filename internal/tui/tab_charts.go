package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/allot/internal/cli"
	"github.com/theirongolddev/allot/internal/model"
	"github.com/theirongolddev/allot/internal/tui/components"
	"github.com/theirongolddev/allot/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderChartsTab(cw, h int) string {
	series := a.snap.Chart
	cur := a.cfg.Display.Currency
	innerW := components.CardInnerWidth(cw)

	colors := make([]lipgloss.Color, len(series.Colors))
	for i, c := range series.Colors {
		colors[i] = lipgloss.Color(c)
	}

	// Share bar with legend
	var share strings.Builder
	share.WriteString(components.ShareBar(series.Values, colors, innerW))
	share.WriteString("\n\n")
	share.WriteString(a.renderLegend(series, innerW))

	// Amount bars, numbered to match the legend
	values := series.Values
	if series.Empty {
		values = []float64{0}
	}
	labels := make([]string, len(values))
	for i := range labels {
		labels[i] = strconv.Itoa(i + 1)
	}
	shareCard := components.ContentCard("Allocation Share", share.String(), cw)
	chartH := max(h-lipgloss.Height(shareCard)-5, 6)
	bars := components.BarChart(values, labels, colors, innerW, chartH)

	title := "Amount by Item"
	if !series.Empty {
		title = fmt.Sprintf("Amount by Item (%s)", cur)
	}

	var b strings.Builder
	b.WriteString(shareCard)
	b.WriteString("\n")
	b.WriteString(components.ContentCard(title, bars, cw))
	return b.String()
}

// renderLegend lists each series entry with its swatch, amount and share,
// two columns when there is room.
func (a App) renderLegend(series model.ChartSeries, innerW int) string {
	t := theme.Active
	cur := a.cfg.Display.Currency

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	if series.Empty {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(model.NoDataColor)).Background(t.Surface).Render("██")
		return swatch + space.Render(" ") + mutedStyle.Render(series.Labels[0])
	}

	total := 0.0
	for _, v := range series.Values {
		total += v
	}

	cols := 1
	if innerW >= 90 {
		cols = 2
	}
	colW := innerW / cols

	entries := make([]string, len(series.Labels))
	for i, label := range series.Labels {
		share := 0.0
		if total > 0 {
			share = series.Values[i] / total * 100
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(series.Colors[i])).Background(t.Surface).Render("██")
		num := mutedStyle.Render(fmt.Sprintf("%2d ", i+1))
		tail := fmt.Sprintf(" %s  %s", cli.FormatMoney(series.Values[i], cur), cli.FormatPercent(share))
		nameW := max(colW-lipgloss.Width(tail)-6, 4)
		entry := num + swatch + space.Render(" ") + textStyle.Render(fitText(label, nameW)) + mutedStyle.Render(tail)
		entries[i] = fitStyled(entry, colW, space)
	}

	var b strings.Builder
	for i := 0; i < len(entries); i += cols {
		if i > 0 {
			b.WriteString("\n")
		}
		for j := i; j < min(i+cols, len(entries)); j++ {
			b.WriteString(entries[j])
		}
	}
	return b.String()
}
