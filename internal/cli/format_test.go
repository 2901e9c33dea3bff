package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/allot/internal/model"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{25000, "25000.00"},
		{1.005, "1.01"},
		{0.125, "0.13"},
		{1.0 / 3, "0.33"},
		{-2.5, "-2.50"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0%"},
		{45, "45.0%"},
		{33.333333, "33.3%"},
		{99.95, "100.0%"},
		{12.25, "12.3%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		v    float64
		code string
		want string
	}{
		{1234.5, "USD", "$1,234.50"},
		{0.005, "usd", "$0.01"},
		{100, "JPY", "¥100"},
		{10, "nope", "$10.00"},
		{1e17, "USD", "$100,000,000,000,000,000.00"},
		{-1e17, "USD", "-$100,000,000,000,000,000.00"},
		{1e20, "JPY", "¥100,000,000,000,000,000,000"},
		{1e300, "USD", "$1" + strings.Repeat(",000", 100) + ".00"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.v, tt.code); got != tt.want {
			t.Errorf("FormatMoney(%v, %q) = %q, want %q", tt.v, tt.code, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
		-1234:   "-1,234",
	}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestShareWidthsSumToWidth(t *testing.T) {
	tests := []struct {
		values []float64
		width  int
	}{
		{[]float64{45, 20, 15, 10, 10}, 40},
		{[]float64{1, 1, 1}, 10},
		{[]float64{1}, 7},
		{[]float64{0, 5, 0}, 9},
	}
	for _, tt := range tests {
		got := ShareWidths(tt.values, tt.width)
		sum := 0
		for i, w := range got {
			sum += w
			if tt.values[i] <= 0 && w != 0 {
				t.Errorf("values %v: zero value got width %d", tt.values, w)
			}
		}
		if sum != tt.width {
			t.Errorf("ShareWidths(%v, %d) sums to %d", tt.values, tt.width, sum)
		}
	}
	if got := ShareWidths([]float64{0, 0}, 10); got[0] != 0 || got[1] != 0 {
		t.Errorf("all-zero values should get no width, got %v", got)
	}
}

func TestRenderShareBarWidth(t *testing.T) {
	lipgloss.SetColorProfile(termenv.TrueColor)
	s := model.ChartSeries{
		Labels: []string{"a", "b"},
		Values: []float64{3, 1},
		Colors: []string{"#165DFF", "#00B42A"},
	}
	if w := lipgloss.Width(RenderShareBar(s, 20)); w != 20 {
		t.Fatalf("bar width = %d, want 20", w)
	}
}

func TestRenderLegendEmpty(t *testing.T) {
	s := model.ChartSeries{Labels: []string{"No data"}, Values: []float64{1}, Colors: []string{model.NoDataColor}, Empty: true}
	if out := RenderLegend(s, "USD"); !strings.Contains(out, "No data") {
		t.Fatalf("legend = %q, want No data entry", out)
	}
}

func TestRenderTableWideRunes(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Name", "Amount"},
		Rows:    [][]string{{"债券", "1.00"}, {"Bonds", "22.00"}},
	})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := lipgloss.Width(lines[0])
	for _, l := range lines {
		if lipgloss.Width(l) != want {
			t.Fatalf("ragged table line %q (width %d, want %d)", l, lipgloss.Width(l), want)
		}
	}
}
