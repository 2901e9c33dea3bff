package alloc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountToPercentage(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		funds  float64
		want   float64
	}{
		{"quarter", 25_000, 100_000, 25},
		{"zero amount", 0, 100_000, 0},
		{"caps at 100", 150_000, 100_000, 100},
		{"unset funds", 500, 0, 0},
		{"negative funds", 500, -10, 0},
		{"nan amount", math.NaN(), 100, 0},
		{"nan funds", 50, math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AmountToPercentage(tt.amount, tt.funds), 1e-9)
		})
	}
}

func TestPercentageToAmount(t *testing.T) {
	tests := []struct {
		name  string
		pct   float64
		funds float64
		want  float64
	}{
		{"forty five", 45, 100_000, 45_000},
		{"clamps high", 130, 1_000, 1_000},
		{"clamps low", -5, 1_000, 0},
		{"unset funds", 50, 0, 0},
		{"nan", math.NaN(), 1_000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PercentageToAmount(tt.pct, tt.funds), 1e-9)
		})
	}
}

func TestConversionRoundTrip(t *testing.T) {
	for _, funds := range []float64{1, 3, 777.77, 100_000, 1e9} {
		for _, pct := range []float64{0, 0.1, 33.333, 50, 99.99, 100} {
			amt := PercentageToAmount(pct, funds)
			got := AmountToPercentage(amt, funds)
			assert.InDelta(t, pct, got, 1e-9, "funds=%v pct=%v", funds, pct)
		}
	}
}

func TestConversionRoundTripFromAmount(t *testing.T) {
	for _, funds := range []float64{1, 3, 777.77, 100_000, 1e9} {
		for _, share := range []float64{0, 0.001, 1.0 / 3, 0.5, 0.9999, 1} {
			amt := share * funds
			got := PercentageToAmount(AmountToPercentage(amt, funds), funds)
			assert.InDelta(t, amt, got, 1e-6, "funds=%v amount=%v", funds, amt)
		}
	}
}

func TestRepeatedRoundTripsDoNotDrift(t *testing.T) {
	const funds = 777.77
	amt := funds / 3
	pct := AmountToPercentage(amt, funds)
	for range 1000 {
		amt = PercentageToAmount(pct, funds)
		pct = AmountToPercentage(amt, funds)
	}
	assert.InDelta(t, funds/3, amt, 1e-9)
	assert.InDelta(t, 100.0/3, pct, 1e-9)
}

func TestClampPercentage(t *testing.T) {
	assert.Equal(t, 0.0, ClampPercentage(-1))
	assert.Equal(t, 100.0, ClampPercentage(100.5))
	assert.Equal(t, 42.5, ClampPercentage(42.5))
	assert.Equal(t, 0.0, ClampPercentage(math.NaN()))
	assert.Equal(t, 100.0, ClampPercentage(math.Inf(1)))
}
