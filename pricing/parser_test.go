package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      string
		parseable bool
	}{
		{"currency amount", "$19.99", "19.99", true},
		{"free token", "Gratis", "0", true},
		{"free token mixed case and padding", "  GRATIS  ", "0", true},
		{"english free token", "Free", "0", true},
		{"free token inside text", "Descarga gratis", "0", true},
		{"zero literal with symbol", "$0", "0", true},
		{"zero literal with decimals", "$0.00", "0", true},
		{"bare zero", "0", "0", true},
		{"bare zero with decimals", "0.00", "0", true},
		{"zero with currency code", "$ 0.00 USD", "0", true},
		{"first comma becomes decimal point", "12,50 €", "12.5", true},
		{"thousands separator reads as decimal point", "$1,234.00", "1.234", true},
		{"leading fraction", ".5", "0.5", true},
		{"trailing point", "5.", "5", true},
		{"stops at second sign", "1-2", "1", true},
		{"negative zero", "-0", "0", true},
		{"plain integer", "10", "10", true},
		{"empty", "", "", false},
		{"whitespace", "   ", "", false},
		{"symbol only", "$", "", false},
		{"text", "Consultar", "", false},
		{"negative amount", "-5.00", "", false},
		{"separators only", ".,", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			assert.Equal(t, tt.parseable, got.Parseable(), "parseable(%q)", tt.raw)
			if !tt.parseable {
				return
			}
			value, ok := got.Value()
			assert.True(t, ok)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(value), "Parse(%q) = %s, want %s", tt.raw, value, tt.want)
		})
	}
}

func TestParsePtr(t *testing.T) {
	assert.False(t, ParsePtr(nil).Parseable())

	price := "$3.50"
	value, ok := ParsePtr(&price).Value()
	assert.True(t, ok)
	assert.Equal(t, "3.5", value.String())
}

func TestParsedPrice_FreeIsDistinctFromUnparseable(t *testing.T) {
	free := Parse("Gratis")
	bad := Parse("TBD")

	assert.True(t, free.IsFree())
	assert.False(t, bad.IsFree())
	assert.True(t, free.Parseable())
	assert.False(t, bad.Parseable())

	// Both contribute nothing to a total
	assert.True(t, free.OrZero().IsZero())
	assert.True(t, bad.OrZero().IsZero())

	assert.Equal(t, "unparseable", bad.String())
	assert.Equal(t, "0", free.String())
}

func TestUnparseableIsZeroValue(t *testing.T) {
	var p ParsedPrice
	assert.Equal(t, Unparseable(), p)
	assert.False(t, p.Parseable())
}
