package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/allot/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSums(t *testing.T) {
	for _, tc := range []struct{ total, n int }{{80, 3}, {81, 4}, {7, 7}, {10, 1}} {
		sum := 0
		for _, w := range LayoutRow(tc.total, tc.n) {
			sum += w
		}
		if sum != tc.total {
			t.Errorf("LayoutRow(%d, %d) sums to %d", tc.total, tc.n, sum)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Error("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := lipgloss.Height(shortCard)
	tallLines := lipgloss.Height(tallCard)
	if shortLines >= tallLines {
		t.Fatal("short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}

	want := lipgloss.Width(lines[0])
	for i, line := range lines {
		if lipgloss.Width(line) != want {
			t.Errorf("line %d width = %d, want %d", i, lipgloss.Width(line), want)
		}
		if i >= shortLines && !strings.Contains(line, "\x1b[") {
			t.Errorf("padding line %d has no ANSI styling", i)
		}
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")
	row := MetricCardRow([]Metric{
		{Label: "Total", Value: "$100.00"},
		{Label: "Allocated", Value: "$50.00", Note: "50.0%"},
		{Label: "Remaining", Value: "$50.00", Color: theme.Active.Green},
	}, 90)
	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 90 {
			t.Errorf("line %d width = %d, want 90", i, w)
		}
	}
}
