package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/allot/internal/cli"
	"github.com/theirongolddev/allot/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// ShareBar renders values as one stacked horizontal bar of exactly width
// cells, each segment in its own color. It stands in for a pie chart.
func ShareBar(values []float64, colors []lipgloss.Color, width int) string {
	t := theme.Active
	if width <= 0 {
		return ""
	}

	var b strings.Builder
	used := 0
	for i, w := range cli.ShareWidths(values, width) {
		if w == 0 {
			continue
		}
		style := lipgloss.NewStyle().Foreground(colors[i]).Background(t.Surface)
		b.WriteString(style.Render(strings.Repeat("█", w)))
		used += w
	}
	if used < width {
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render(strings.Repeat("░", width-used)))
	}
	return b.String()
}

// BarChart renders vertical bars, one per value, each in its own color.
// Labels are drawn under the bars and truncated to the bar width.
func BarChart(values []float64, labels []string, colors []lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}

	t := theme.Active

	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Y-axis: compute tick step and ceiling
	tickStep := chartTickStep(maxVal)
	maxIntervals := max(height/2, 2)
	for {
		n := int(math.Ceil(maxVal / tickStep))
		if n <= maxIntervals {
			break
		}
		tickStep *= 2
	}
	ceiling := math.Ceil(maxVal/tickStep) * tickStep
	numIntervals := max(int(math.Round(ceiling/tickStep)), 1)

	rowsPerTick := max(height/numIntervals, 2)
	chartH := rowsPerTick * numIntervals

	yLabelW := max(len(formatChartLabel(ceiling))+1, 4)
	tickLabels := make(map[int]string)
	for i := 1; i <= numIntervals; i++ {
		tickLabels[i*rowsPerTick] = formatChartLabel(tickStep * float64(i))
	}

	chartW := max(width-yLabelW-1, 5)
	n := len(values)

	gap := 1
	if n <= 1 {
		gap = 0
	}
	barW := chartW
	if n > 1 {
		barW = (chartW - (n-1)*gap) / n
	}
	barW = min(max(barW, 1), 10)
	axisLen := n*barW + max(0, n-1)*gap

	blocks := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		rowTop := ceiling * float64(row) / float64(chartH)
		rowBottom := ceiling * float64(row-1) / float64(chartH)

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, tickLabels[row])))
		b.WriteString(axisStyle.Render("│"))

		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			barStyle := lipgloss.NewStyle().Foreground(colorAt(colors, i, t.Accent)).Background(t.Surface)
			switch {
			case v >= rowTop:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > rowBottom:
				idx := int((v - rowBottom) / (rowTop - rowBottom) * 8)
				idx = min(max(idx, 1), 8)
				b.WriteString(barStyle.Render(strings.Repeat(string(blocks[idx]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└"))
	b.WriteString(axisStyle.Render(strings.Repeat("─", axisLen)))

	if len(labels) == n {
		labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		for i, l := range labels {
			if i > 0 && gap > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			b.WriteString(labelStyle.Render(fitCells(l, barW)))
		}
	}

	return b.String()
}

func colorAt(colors []lipgloss.Color, i int, fallback lipgloss.Color) lipgloss.Color {
	if i < len(colors) && colors[i] != "" {
		return colors[i]
	}
	return fallback
}

// fitCells truncates or pads s to exactly w display cells.
func fitCells(s string, w int) string {
	var b strings.Builder
	used := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if used+rw > w {
			break
		}
		b.WriteRune(r)
		used += rw
	}
	return b.String() + strings.Repeat(" ", w-used)
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	switch {
	case v >= 1e9:
		if v == math.Trunc(v/1e9)*1e9 {
			return fmt.Sprintf("%.0fB", v/1e9)
		}
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		if v == math.Trunc(v/1e6)*1e6 {
			return fmt.Sprintf("%.0fM", v/1e6)
		}
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		if v == math.Trunc(v/1e3)*1e3 {
			return fmt.Sprintf("%.0fk", v/1e3)
		}
		return fmt.Sprintf("%.1fk", v/1e3)
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
