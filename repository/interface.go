package repository

import (
	"context"
	"errors"

	"tienda/models"
)

// ErrProductNotFound is returned when a catalog has no product with the requested id
var ErrProductNotFound = errors.New("product not found")

// Change is a notification that the value under Key was written or removed.
// Origin identifies the writer; it is empty when the writer is unknown.
type Change struct {
	Key    string
	Origin string
}

// KeyValueStore defines the contract for the persistent key-value store holding carts
type KeyValueStore interface {
	// Get returns the value for key and whether it exists
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
	// Watch delivers changes to key until ctx is done; the channel is then closed
	Watch(ctx context.Context, key string) (<-chan Change, error)
}

// CatalogSourceInterface defines the contract for the read-only product catalog
type CatalogSourceInterface interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
}
