package alloc

import "math"

// AmountToPercentage returns amount as a share of totalFunds, capped at 100.
// The amount itself is not clamped, so over-allocation stays visible in
// currency terms while the percentage saturates.
func AmountToPercentage(amount, totalFunds float64) float64 {
	if !(totalFunds > 0) {
		return 0
	}
	pct := sanitize(amount) / totalFunds * 100
	return math.Min(pct, 100)
}

// PercentageToAmount clamps percentage to [0, 100] and returns that share of
// totalFunds. Non-positive totalFunds yields 0.
func PercentageToAmount(percentage, totalFunds float64) float64 {
	if !(totalFunds > 0) {
		return 0
	}
	return ClampPercentage(percentage) / 100 * totalFunds
}

// ClampPercentage limits p to [0, 100]; NaN becomes 0.
func ClampPercentage(p float64) float64 {
	return math.Max(0, math.Min(sanitize(p), 100))
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
