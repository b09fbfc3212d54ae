package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount formats an amount with exactly two decimals and no symbol,
// e.g. "12.50", "0.00".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatMoney formats an amount as symbol + two decimals, e.g. "$12.50".
// Negative amounts carry the sign before the symbol: "-$3.00".
func FormatMoney(symbol string, amount decimal.Decimal) string {
	neg := amount.IsNegative()
	if neg {
		amount = amount.Neg()
	}

	s := amount.StringFixed(2)

	var b strings.Builder
	b.Grow(len(s) + len(symbol) + 1)
	if neg {
		b.WriteString("-")
	}
	b.WriteString(symbol)
	b.WriteString(s)
	return b.String()
}
