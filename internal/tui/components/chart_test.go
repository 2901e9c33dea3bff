package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/allot/internal/model"
	"github.com/theirongolddev/allot/internal/tui/theme"
)

func TestShareBarExactWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")
	colors := []lipgloss.Color{"#165DFF", "#00B42A", "#FF7D00"}
	for _, w := range []int{1, 17, 60} {
		got := ShareBar([]float64{45, 20, 35}, colors, w)
		if lipgloss.Width(got) != w {
			t.Errorf("ShareBar width = %d, want %d", lipgloss.Width(got), w)
		}
	}
	if got := ShareBar([]float64{0}, colors[:1], 10); lipgloss.Width(got) != 10 {
		t.Errorf("empty ShareBar width = %d, want 10", lipgloss.Width(got))
	}
}

func TestBarChartShape(t *testing.T) {
	theme.SetActive("flexoki-dark")
	out := BarChart(
		[]float64{45_000, 20_000, 0},
		[]string{"1", "2", "3"},
		[]lipgloss.Color{"#165DFF", "#00B42A", "#FF7D00"},
		60, 10,
	)
	lines := strings.Split(out, "\n")
	if len(lines) < 4 {
		t.Fatalf("chart too short: %d lines", len(lines))
	}
	if !strings.Contains(lines[len(lines)-2], "└") {
		t.Fatalf("missing x axis: %q", lines[len(lines)-2])
	}
	if !strings.Contains(out, "50k") {
		t.Fatalf("expected a 50k tick label in\n%s", out)
	}
}

func TestFitCells(t *testing.T) {
	if got := fitCells("Nasdaq", 3); got != "Nas" {
		t.Errorf("fitCells = %q", got)
	}
	if got := fitCells("债券", 3); lipgloss.Width(got) != 3 {
		t.Errorf("fitCells wide = %q (width %d)", got, lipgloss.Width(got))
	}
	if got := fitCells("a", 3); got != "a  " {
		t.Errorf("fitCells pad = %q", got)
	}
}

func TestColorForAllocation(t *testing.T) {
	theme.SetActive("flexoki-dark")
	if ColorForAllocation(model.AllocationOver) != theme.Active.Red {
		t.Error("over should be red")
	}
	if ColorForAllocation(model.AllocationComplete) != theme.Active.Green {
		t.Error("complete should be green")
	}
}

func TestTabAtX(t *testing.T) {
	bar := RenderTabBar(0, 80)
	plain := stripANSI(bar)
	for i, tab := range Tabs {
		x := strings.Index(plain, TabLabel(tab))
		if x < 0 {
			t.Fatalf("tab %q not rendered", tab.Name)
		}
		// strings.Index counts bytes; the brand glyph is 3 bytes but 1 cell.
		col := lipgloss.Width(plain[:x])
		if got := TabAtX(col); got != i {
			t.Errorf("TabAtX(%d) = %d, want %d", col, got, i)
		}
	}
	if TabAtX(0) != -1 {
		t.Error("brand should not be a tab")
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	in := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			in = true
		case in && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			in = false
		case !in:
			b.WriteRune(r)
		}
	}
	return b.String()
}
