package alloc

import (
	"math"

	"github.com/theirongolddev/allot/internal/model"
)

// Tolerance is the float slack used when classifying exact remainders and
// complete allocations.
const Tolerance = 1e-9

// NoDataLabel labels the placeholder chart entry shown for an empty ledger.
const NoDataLabel = "No data"

// ComputeSummary aggregates the items against totalFunds. The result is
// advisory: over-allocation is flagged, never rejected.
func ComputeSummary(items []model.LineItem, totalFunds float64) model.Summary {
	funds := sanitize(totalFunds)

	var allocated float64
	for _, it := range items {
		allocated += it.Amount
	}

	remaining := funds - allocated
	pct := 0.0
	if funds > 0 {
		pct = allocated / funds * 100
	}

	return model.Summary{
		TotalFunds:          funds,
		AllocatedAmount:     allocated,
		RemainingAmount:     remaining,
		AllocatedPercentage: pct,
		RemainingStatus:     classifyRemaining(remaining),
		AllocationStatus:    classifyAllocation(pct),
		Items:               len(items),
	}
}

func classifyRemaining(remaining float64) model.RemainingStatus {
	switch {
	case math.Abs(remaining) <= Tolerance:
		return model.RemainingExact
	case remaining < 0:
		return model.RemainingNegative
	default:
		return model.RemainingPositive
	}
}

func classifyAllocation(pct float64) model.AllocationStatus {
	switch {
	case math.Abs(pct-100) <= Tolerance:
		return model.AllocationComplete
	case pct > 100:
		return model.AllocationOver
	default:
		return model.AllocationUnder
	}
}

// OverAllocated reports whether the item with the given id pushes the
// ledger total past totalFunds. It drives the per-row warning marker.
func OverAllocated(items []model.LineItem, id string, totalFunds float64) bool {
	if !(totalFunds > 0) {
		return false
	}
	var total float64
	found := false
	for _, it := range items {
		total += it.Amount
		if it.ID == id {
			found = true
		}
	}
	return found && total > totalFunds+Tolerance
}

// ChartSeries builds the renderer payload from items with a positive amount.
// An empty selection yields a single placeholder entry.
func ChartSeries(items []model.LineItem) model.ChartSeries {
	var s model.ChartSeries
	for _, it := range items {
		if !(it.Amount > 0) {
			continue
		}
		s.Labels = append(s.Labels, it.DisplayName())
		s.Values = append(s.Values, it.Amount)
		s.Colors = append(s.Colors, it.Color)
	}
	if len(s.Values) == 0 {
		return model.ChartSeries{
			Labels: []string{NoDataLabel},
			Values: []float64{1},
			Colors: []string{model.NoDataColor},
			Empty:  true,
		}
	}
	return s
}
