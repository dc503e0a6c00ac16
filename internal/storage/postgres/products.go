package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/luisbfsousa/mect-sub001/internal/domain/errors"
	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
)

const productColumns = `id, name, price, stock_quantity, low_stock_threshold, created_at, updated_at`

func scanProduct(row scanner) (*model.Product, error) {
	var p model.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity, &p.LowStockThreshold, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	p, err := scanProduct(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.NewNotFoundError("product", id)
		}
		return nil, wrap("get product", err)
	}
	return p, nil
}

func (r *productRepository) Create(ctx context.Context, product model.Product) (*model.Product, error) {
	const query = `INSERT INTO products (name, price, stock_quantity, low_stock_threshold) VALUES ($1, $2, $3, $4)
                   RETURNING id, created_at, updated_at`
	err := r.storage.pool.QueryRow(ctx, query, product.Name, product.Price.StringFixed(2), product.StockQuantity, product.LowStockThreshold).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, wrap("create product", err)
	}
	return &product, nil
}

func (r *productRepository) SetStock(ctx context.Context, id int64, quantity int) (*model.Product, error) {
	const query = `UPDATE products SET stock_quantity=$1, updated_at=NOW() WHERE id=$2 RETURNING ` + productColumns
	p, err := scanProduct(r.storage.pool.QueryRow(ctx, query, quantity, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.NewNotFoundError("product", id)
		}
		return nil, wrap("set stock", err)
	}
	return p, nil
}

func (r *productRepository) ApplyStockDelta(ctx context.Context, id int64, delta int) (*model.Product, error) {
	const query = `UPDATE products SET stock_quantity = stock_quantity + $1, updated_at=NOW()
                   WHERE id=$2 AND stock_quantity + $1 >= 0
                   RETURNING ` + productColumns
	p, err := scanProduct(r.storage.pool.QueryRow(ctx, query, delta, id))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrap("apply stock delta", err)
	}
	return nil, stockShortage(ctx, r.storage.pool, id, -delta)
}

// stockShortage explains why a conditional stock update matched no row.
func stockShortage(ctx context.Context, q querier, id int64, requested int) error {
	const query = `SELECT stock_quantity FROM products WHERE id=$1`
	var available int
	if err := q.QueryRow(ctx, query, id).Scan(&available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.NewNotFoundError("product", id)
		}
		return wrap("read stock", err)
	}
	return &domainErrors.InsufficientStockError{ProductID: id, Requested: requested, Available: available}
}
