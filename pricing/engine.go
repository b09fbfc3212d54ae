package pricing

import (
	"github.com/shopspring/decimal"

	"tienda/models"
)

// Engine derives cart amounts and classifications from display prices.
// Each entry price is parsed once per computation.
type Engine struct {
	formatter Formatter
}

// NewEngine creates a new pricing engine using the given display formatter
func NewEngine(formatter Formatter) *Engine {
	return &Engine{formatter: formatter}
}

// Formatter returns the engine's display formatter
func (e *Engine) Formatter() Formatter {
	return e.formatter
}

// Subtotal returns price * qty for an entry. Unparseable prices count as 0
// so a malformed catalog price never breaks the cart total.
func (e *Engine) Subtotal(entry models.CartEntry) decimal.Decimal {
	return subtotal(Parse(entry.Price), entry.Qty)
}

func subtotal(price ParsedPrice, qty int) decimal.Decimal {
	return price.OrZero().Mul(decimal.NewFromInt(int64(qty)))
}

// Total sums the subtotals of all entries. An empty cart totals 0.
func (e *Engine) Total(entries []models.CartEntry) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(e.Subtotal(entry))
	}
	return total
}

// IsAllFree reports whether the cart is non-empty and every entry price reads
// as exactly zero. Unparseable prices are not free.
func (e *Engine) IsAllFree(entries []models.CartEntry) bool {
	if len(entries) == 0 {
		return false
	}
	for _, entry := range entries {
		if !Parse(entry.Price).IsFree() {
			return false
		}
	}
	return true
}

// ItemCount returns the sum of quantities across entries
func (e *Engine) ItemCount(entries []models.CartEntry) int {
	count := 0
	for _, entry := range entries {
		count += entry.Qty
	}
	return count
}

// DiscountVisible reports whether a listing should show the original price
// next to the current one: the original must exist and be numerically higher,
// or, when neither reads as a number, simply differ as text.
func (e *Engine) DiscountVisible(originalPrice, price string) bool {
	if originalPrice == "" {
		return false
	}
	orig, origOK := Parse(originalPrice).Value()
	cur, curOK := Parse(price).Value()
	switch {
	case origOK && curOK:
		return orig.GreaterThan(cur)
	case !origOK && !curOK:
		return originalPrice != price
	default:
		return false
	}
}

// Summarize builds the cart page view: per-line subtotals, total and classification
func (e *Engine) Summarize(entries []models.CartEntry) *models.CartSummary {
	summary := &models.CartSummary{
		Items: make([]models.CartLine, 0, len(entries)),
	}
	total := decimal.Zero
	allFree := len(entries) > 0
	for _, entry := range entries {
		price := Parse(entry.Price)
		sub := subtotal(price, entry.Qty)
		total = total.Add(sub)
		if !price.IsFree() {
			allFree = false
		}
		summary.Items = append(summary.Items, models.CartLine{
			CartEntry:       entry,
			Subtotal:        e.formatter.Amount(sub),
			DisplaySubtotal: e.formatter.Format(sub),
		})
		summary.ItemCount += entry.Qty
	}
	summary.Total = e.formatter.Amount(total)
	summary.DisplayTotal = e.formatter.Format(total)
	summary.AllFree = allFree
	if len(entries) > 0 {
		summary.Strategy = StrategyFor(allFree)
	}
	return summary
}

// StrategyFor maps the all-free classification to a checkout strategy
func StrategyFor(allFree bool) string {
	if allFree {
		return models.StrategyFreeDownload
	}
	return models.StrategyPayment
}
