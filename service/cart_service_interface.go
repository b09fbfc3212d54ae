package service

import (
	"context"

	"tienda/models"
)

// CartServiceInterface defines the contract for cart operations
type CartServiceInterface interface {
	Add(ctx context.Context, product models.Product) (*models.CartEntry, error)
	Increment(ctx context.Context, id int64) error
	Decrement(ctx context.Context, id int64) error
	Remove(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
	Entries(ctx context.Context) (models.Cart, error)
	TotalItemCount(ctx context.Context) (int, error)
}
