package pricing

import (
	"github.com/shopspring/decimal"

	"tienda/utils"
)

// DefaultFreeLabel is shown instead of a zero amount
const DefaultFreeLabel = "Free"

// Formatter turns amounts into display and payment strings
type Formatter struct {
	FreeLabel string // Shown for zero amounts
	Symbol    string // Currency symbol prefix
}

// DefaultFormatter returns the "$" formatter with the "Free" label
func DefaultFormatter() Formatter {
	return Formatter{FreeLabel: DefaultFreeLabel, Symbol: "$"}
}

// Format returns the free label for zero, otherwise symbol + two decimals ("$19.99")
func (f Formatter) Format(d decimal.Decimal) string {
	if d.IsZero() {
		return f.FreeLabel
	}
	return utils.FormatMoney(f.Symbol, d)
}

// Amount returns d with exactly two decimals and no symbol ("19.99", "0.00")
func (f Formatter) Amount(d decimal.Decimal) string {
	return utils.FormatAmount(d)
}
