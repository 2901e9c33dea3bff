package components

import (
	"strings"

	"github.com/theirongolddev/allot/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  rune
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Portfolio", Key: '1'},
	{Name: "Charts", Key: '2'},
	{Name: "Settings", Key: '3'},
}

// TabLabel renders one tab's text without styling, e.g. "[1] Portfolio".
func TabLabel(tab Tab) string {
	return "[" + string(tab.Key) + "] " + tab.Name
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Padding(0, 1)

	brandStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true).
		Padding(0, 1)

	parts := []string{brandStyle.Render("◈ allot")}
	for i, tab := range Tabs {
		if i == activeIdx {
			parts = append(parts, activeStyle.Render(TabLabel(tab)))
		} else {
			parts = append(parts, inactiveStyle.Render(TabLabel(tab)))
		}
	}

	row := strings.Join(parts, lipgloss.NewStyle().Background(t.Surface).Render(" "))
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}

// TabAtX returns the tab under column x of the rendered tab bar, or -1.
// Hitboxes follow the same widths RenderTabBar uses.
func TabAtX(x int) int {
	pos := lipgloss.Width("◈ allot") + 2 + 1 // brand padding + separator
	for i, tab := range Tabs {
		w := lipgloss.Width(TabLabel(tab)) + 2
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1
	}
	return -1
}
