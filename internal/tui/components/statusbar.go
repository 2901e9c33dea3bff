package components

import (
	"strings"

	"github.com/theirongolddev/allot/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Toast levels.
const (
	ToastInfo = iota
	ToastWarn
)

// RenderStatusBar renders the bottom status bar. A non-empty toast replaces
// the right-hand info.
func RenderStatusBar(width int, hints, info, toast string, level int) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	left := base.Render(" " + hints)
	right := base.Render(info + " ")
	if toast != "" {
		color := t.GreenBright
		if level == ToastWarn {
			color = t.Orange
		}
		right = lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true).Render(toast + " ")
	}

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + base.Render(strings.Repeat(" ", gap)) + right
}

