package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tienda/models"
)

func mixedCart() []models.CartEntry {
	return []models.CartEntry{
		{ID: 1, Title: "Pack de stickers", Price: "$10.00", Qty: 2},
		{ID: 2, Title: "Wallpaper", Price: "Gratis", Qty: 1},
	}
}

func TestEngine_TotalAndClassification(t *testing.T) {
	engine := NewEngine(DefaultFormatter())

	t.Run("mixed cart totals paid entries only", func(t *testing.T) {
		cart := mixedCart()
		assert.Equal(t, "20", engine.Total(cart).String())
		assert.False(t, engine.IsAllFree(cart))
		assert.Equal(t, 3, engine.ItemCount(cart))
	})

	t.Run("empty cart is zero and never all free", func(t *testing.T) {
		assert.True(t, engine.Total(nil).IsZero())
		assert.False(t, engine.IsAllFree(nil))
		assert.False(t, engine.IsAllFree([]models.CartEntry{}))
	})

	t.Run("free cart", func(t *testing.T) {
		cart := []models.CartEntry{
			{ID: 3, Price: "Gratis", Qty: 1},
			{ID: 4, Price: "$0.00", Qty: 5},
		}
		assert.True(t, engine.IsAllFree(cart))
		assert.True(t, engine.Total(cart).IsZero())
	})

	t.Run("unparseable price is neither free nor counted", func(t *testing.T) {
		cart := []models.CartEntry{
			{ID: 3, Price: "Gratis", Qty: 1},
			{ID: 5, Price: "Consultar", Qty: 2},
		}
		assert.False(t, engine.IsAllFree(cart))
		assert.True(t, engine.Total(cart).IsZero())
		assert.True(t, engine.Subtotal(cart[1]).IsZero())
	})

	t.Run("subtotal multiplies by quantity", func(t *testing.T) {
		sub := engine.Subtotal(models.CartEntry{Price: "$2.50", Qty: 3})
		assert.True(t, decimal.RequireFromString("7.5").Equal(sub))
	})
}

func TestEngine_Summarize(t *testing.T) {
	engine := NewEngine(DefaultFormatter())

	summary := engine.Summarize(mixedCart())
	require.Len(t, summary.Items, 2)

	assert.Equal(t, "20.00", summary.Items[0].Subtotal)
	assert.Equal(t, "$20.00", summary.Items[0].DisplaySubtotal)
	assert.Equal(t, "0.00", summary.Items[1].Subtotal)
	assert.Equal(t, "Free", summary.Items[1].DisplaySubtotal)

	assert.Equal(t, "20.00", summary.Total)
	assert.Equal(t, "$20.00", summary.DisplayTotal)
	assert.Equal(t, 3, summary.ItemCount)
	assert.False(t, summary.AllFree)
	assert.Equal(t, models.StrategyPayment, summary.Strategy)
}

func TestEngine_SummarizeEmpty(t *testing.T) {
	engine := NewEngine(DefaultFormatter())

	summary := engine.Summarize(nil)
	assert.NotNil(t, summary.Items)
	assert.Empty(t, summary.Items)
	assert.Equal(t, "0.00", summary.Total)
	assert.Equal(t, "Free", summary.DisplayTotal)
	assert.False(t, summary.AllFree)
	assert.Empty(t, summary.Strategy)
}

func TestEngine_SummarizeAllFree(t *testing.T) {
	engine := NewEngine(Formatter{FreeLabel: "Gratis", Symbol: "$"})

	summary := engine.Summarize([]models.CartEntry{{ID: 3, Price: "Gratis", Qty: 1, DownloadURL: "f.zip"}})
	assert.True(t, summary.AllFree)
	assert.Equal(t, models.StrategyFreeDownload, summary.Strategy)
	assert.Equal(t, "Gratis", summary.DisplayTotal)
}

func TestEngine_DiscountVisible(t *testing.T) {
	engine := NewEngine(DefaultFormatter())

	tests := []struct {
		name     string
		original string
		price    string
		want     bool
	}{
		{"higher original", "$20.00", "$10.00", true},
		{"lower original", "$10.00", "$20.00", false},
		{"equal amounts", "$10.00", "$10", false},
		{"no original", "", "$10.00", false},
		{"paid to free", "$5.00", "Gratis", true},
		{"distinct labels", "Precio normal", "Oferta", true},
		{"identical labels", "Oferta", "Oferta", false},
		{"label against amount", "Antes", "$10.00", false},
		{"amount against label", "$10.00", "Consultar", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.DiscountVisible(tt.original, tt.price))
		})
	}
}

func TestStrategyFor(t *testing.T) {
	assert.Equal(t, models.StrategyFreeDownload, StrategyFor(true))
	assert.Equal(t, models.StrategyPayment, StrategyFor(false))
}
