package model

// RemainingStatus classifies the unallocated remainder.
type RemainingStatus int

const (
	RemainingExact RemainingStatus = iota
	RemainingPositive
	RemainingNegative
)

func (s RemainingStatus) String() string {
	switch s {
	case RemainingPositive:
		return "positive"
	case RemainingNegative:
		return "negative"
	default:
		return "exact"
	}
}

// MarshalText renders the status by name in JSON payloads.
func (s RemainingStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// AllocationStatus classifies the allocated share of total funds.
type AllocationStatus int

const (
	AllocationUnder AllocationStatus = iota
	AllocationComplete
	AllocationOver
)

func (s AllocationStatus) String() string {
	switch s {
	case AllocationComplete:
		return "complete"
	case AllocationOver:
		return "over"
	default:
		return "under"
	}
}

// MarshalText renders the status by name in JSON payloads.
func (s AllocationStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Summary holds the portfolio totals derived from the ledger.
type Summary struct {
	TotalFunds          float64          `json:"total_funds"`
	AllocatedAmount     float64          `json:"allocated_amount"`
	RemainingAmount     float64          `json:"remaining_amount"`
	AllocatedPercentage float64          `json:"allocated_percentage"`
	RemainingStatus     RemainingStatus  `json:"remaining_status"`
	AllocationStatus    AllocationStatus `json:"allocation_status"`
	Items               int              `json:"items"`
}

// ChartSeries is the parallel-array payload handed to chart renderers.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors"`
	Empty  bool      `json:"empty"`
}
