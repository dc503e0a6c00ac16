package repository

import (
	"context"

	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
)

// ProductRepository exposes catalog records and stock mutations.
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	Create(ctx context.Context, product model.Product) (*model.Product, error)
	SetStock(ctx context.Context, id int64, quantity int) (*model.Product, error)
	// ApplyStockDelta adds delta to stock only if the result stays non-negative.
	ApplyStockDelta(ctx context.Context, id int64, delta int) (*model.Product, error)
}
