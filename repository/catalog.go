package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"tienda/models"
)

// Catalog is an in-memory, read-only product list loaded once at startup
type Catalog struct {
	products []models.Product
	byID     map[int64]int
}

// Ensure Catalog implements CatalogSourceInterface
var _ CatalogSourceInterface = (*Catalog)(nil)

// NewCatalog indexes products by id; later duplicates of an id are ignored
func NewCatalog(products []models.Product) *Catalog {
	c := &Catalog{
		products: make([]models.Product, 0, len(products)),
		byID:     make(map[int64]int, len(products)),
	}
	for _, p := range products {
		if _, exists := c.byID[p.ID]; exists {
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// DecodeCatalog reads a products.json document (a JSON array of products)
func DecodeCatalog(r io.Reader) (*Catalog, error) {
	var products []models.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return NewCatalog(products), nil
}

// List returns a copy of the catalog in published order
func (c *Catalog) List(ctx context.Context) ([]models.Product, error) {
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out, nil
}

// Get returns the product with the given id
func (c *Catalog) Get(ctx context.Context, id int64) (*models.Product, error) {
	idx, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	p := c.products[idx]
	return &p, nil
}
