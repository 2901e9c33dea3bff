package components

import (
	"fmt"

	"github.com/theirongolddev/allot/internal/model"
	"github.com/theirongolddev/allot/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForAllocation maps an allocation status to a theme color: green when
// complete, orange while under, red when over.
func ColorForAllocation(s model.AllocationStatus) lipgloss.Color {
	t := theme.Active
	switch s {
	case model.AllocationComplete:
		return t.Green
	case model.AllocationOver:
		return t.Red
	default:
		return t.Orange
	}
}

// AllocationGauge renders how much of total funds is allocated as a labeled
// progress bar. pct is 0-100 and may exceed 100; the bar saturates while the
// label shows the true value.
func AllocationGauge(label string, pct float64, status model.AllocationStatus, labelW, barWidth int) string {
	t := theme.Active

	fill := pct / 100
	if fill < 0 {
		fill = 0
	}
	if fill > 1 {
		fill = 1
	}

	color := ColorForAllocation(status)
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(fill) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%5.1f%%", pct))
}
