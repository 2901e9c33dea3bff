package components

import (
	"github.com/theirongolddev/allot/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Modal renders a bordered dialog centered in a width x height area. Error
// dialogs use the red border.
func Modal(title, body, hint string, isError bool, width, height int) string {
	t := theme.Active

	border := t.BorderAccent
	titleColor := t.AccentBright
	if isError {
		border = t.Red
		titleColor = t.Red
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Padding(1, 3).
		MaxWidth(max(width-4, 20))

	titleStyle := lipgloss.NewStyle().Foreground(titleColor).Background(t.Surface).Bold(true)
	bodyStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Width(min(60, max(width-12, 16)))
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	content := titleStyle.Render(title) + "\n\n" + bodyStyle.Render(body)
	if hint != "" {
		content += "\n\n" + hintStyle.Render(hint)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, cardStyle.Render(content),
		lipgloss.WithWhitespaceBackground(t.Background))
}
