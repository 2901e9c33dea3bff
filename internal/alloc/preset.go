package alloc

import "github.com/theirongolddev/allot/internal/model"

// Preset is one row of the default portfolio.
type Preset struct {
	Name       string
	Percentage float64
	Category   model.Category
	Color      string
}

// DefaultPortfolio is the one-click starter allocation. Percentages sum to 100.
var DefaultPortfolio = []Preset{
	{Name: "Nasdaq 100", Percentage: 45, Category: model.CategoryFund, Color: "#165DFF"},
	{Name: "S&P 500", Percentage: 20, Category: model.CategoryFund, Color: "#00B42A"},
	{Name: "CSI 500", Percentage: 15, Category: model.CategoryFund, Color: "#FF7D00"},
	{Name: "Credit Bonds", Percentage: 10, Category: model.CategoryBond, Color: "#722ED1"},
	{Name: "MSCI", Percentage: 10, Category: model.CategoryFund, Color: "#F759AB"},
}
