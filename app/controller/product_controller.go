package controller

import (
	"fmt"
	"net/http"

	"tienda/models"
	"tienda/pricing"
	"tienda/repository"
)

// ProductController handles HTTP requests for the product catalog
type ProductController struct {
	catalog repository.CatalogSourceInterface
	engine  *pricing.Engine
}

// NewProductController creates a new ProductController
func NewProductController(catalog repository.CatalogSourceInterface, engine *pricing.Engine) *ProductController {
	return &ProductController{
		catalog: catalog,
		engine:  engine,
	}
}

// ListProducts handles GET /tienda/products
func (c *ProductController) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := c.catalog.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list products: %v", err), http.StatusInternalServerError)
		return
	}

	formatter := c.engine.Formatter()

	cards := make([]models.ProductCard, 0, len(products))
	for _, p := range products {
		// Prices that do not read as numbers are shown as published
		display := p.Price
		if price, ok := pricing.Parse(p.Price).Value(); ok {
			display = formatter.Format(price)
		}
		cards = append(cards, models.ProductCard{
			Product:         p,
			DisplayPrice:    display,
			DiscountVisible: c.engine.DiscountVisible(p.OriginalPrice, p.Price),
		})
	}

	writeJSON(w, http.StatusOK, models.ProductListResponse{
		Products: cards,
		Count:    len(cards),
	})
}
