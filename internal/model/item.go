// Package model defines domain types for allot portfolios.
package model

import (
	"regexp"
	"strings"
)

// LineItem is one allocation row. Amount and Percentage are stored at full
// precision and may drift from each other when one is edited directly.
type LineItem struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Amount     float64  `json:"amount"`
	Percentage float64  `json:"percentage"`
	Category   Category `json:"category"`
	Color      string   `json:"color"`
}

// UntitledName replaces an empty name when an edit is committed.
const UntitledName = "Untitled"

// DisplayName returns the name, or UntitledName when blank.
func (it LineItem) DisplayName() string {
	if n := strings.TrimSpace(it.Name); n != "" {
		return n
	}
	return UntitledName
}

// Category is the asset class of a line item.
type Category string

const (
	CategoryStock      Category = "stock"
	CategoryFund       Category = "fund"
	CategoryBond       Category = "bond"
	CategoryRealEstate Category = "real_estate"
	CategoryCrypto     Category = "crypto"
	CategoryOther      Category = "other"
)

// DefaultCategory is assigned to new items and to unrecognized stored values.
const DefaultCategory = CategoryStock

// Categories lists every category in display order.
var Categories = []Category{
	CategoryStock, CategoryFund, CategoryBond,
	CategoryRealEstate, CategoryCrypto, CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryStock:      "Stock",
	CategoryFund:       "Fund",
	CategoryBond:       "Bond",
	CategoryRealEstate: "Real Estate",
	CategoryCrypto:     "Crypto",
	CategoryOther:      "Other",
}

// Records written by the browser version of the form store the Chinese
// option labels instead of enum values.
var legacyCategories = map[string]Category{
	"股票":   CategoryStock,
	"基金":   CategoryFund,
	"债券":   CategoryBond,
	"房地产":  CategoryRealEstate,
	"数字货币": CategoryCrypto,
	"其他":   CategoryOther,
}

// Label returns the human-readable category name.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory accepts enum values, display labels (case-insensitive) and
// legacy labels.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if c := Category(strings.ToLower(s)); c.Valid() {
		return c, true
	}
	if c, ok := legacyCategories[s]; ok {
		return c, true
	}
	for c, label := range categoryLabels {
		if strings.EqualFold(label, s) {
			return c, true
		}
	}
	return "", false
}

// Palette is the fixed set of swatches offered for new items.
var Palette = []string{"#165DFF", "#00B42A", "#FF7D00", "#722ED1", "#F759AB"}

// NoDataColor is used for the synthetic chart entry of an empty ledger.
const NoDataColor = "#E5E6EB"

var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidColor reports whether s is a #RGB or #RRGGBB hex color.
func ValidColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// NormalizeColor upper-cases a hex color so palette comparisons are stable.
func NormalizeColor(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
