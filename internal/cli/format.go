// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/allot/internal/model"
)

// DefaultCurrency is used when a currency code is unknown.
const DefaultCurrency = "USD"

// FormatAmount renders an amount with exactly two decimals, rounding half
// away from zero on the shortest decimal form of v. Stored values are never
// rounded; this is display only.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatPercent renders a 0-100 percentage with one decimal and a % sign.
func FormatPercent(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(1) + "%"
}

// FormatMoney renders v in the given currency with grouping and symbol,
// e.g. 1234.5 USD -> "$1,234.50". Unknown codes fall back to USD.
func FormatMoney(v float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	cur := money.GetCurrency(code)
	if cur == nil {
		code = DefaultCurrency
		cur = money.GetCurrency(code)
	}
	d := decimal.NewFromFloat(v).Round(int32(cur.Fraction))
	shifted := d.Shift(int32(cur.Fraction))
	if !shifted.BigInt().IsInt64() {
		return formatLargeMoney(d, cur)
	}
	return money.New(shifted.IntPart(), code).Display()
}

// formatLargeMoney lays out amounts whose minor units overflow int64 using
// the currency's own template, separators and symbol.
func formatLargeMoney(d decimal.Decimal, cur *money.Currency) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(int32(cur.Fraction)), ".")
	amount := groupDigits(whole, cur.Thousand)
	if frac != "" {
		amount += cur.Decimal + frac
	}
	out := strings.Replace(cur.Template, "1", amount, 1)
	return sign + strings.Replace(out, "$", cur.Grapheme, 1)
}

func groupDigits(s, sep string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// RemainingLabel is the user-facing wording for a remaining-funds status.
func RemainingLabel(s model.RemainingStatus) string {
	switch s {
	case model.RemainingNegative:
		return "over budget"
	case model.RemainingExact:
		return "fully allocated"
	default:
		return "unallocated"
	}
}

// AllocationLabel is the user-facing wording for an allocation status.
func AllocationLabel(s model.AllocationStatus) string {
	switch s {
	case model.AllocationOver:
		return "over-allocated"
	case model.AllocationComplete:
		return "complete"
	default:
		return "under-allocated"
	}
}
