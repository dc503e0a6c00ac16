package usecase

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/luisbfsousa/mect-sub001/internal/domain/errors"
	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
	"github.com/luisbfsousa/mect-sub001/internal/domain/repository"
)

// StockEvaluator inspects a product after its stock changed.
type StockEvaluator interface {
	Evaluate(ctx context.Context, product *model.Product)
}

// NewProduct carries catalog input for CreateProduct.
type NewProduct struct {
	Name              string
	Price             decimal.Decimal
	StockQuantity     int
	LowStockThreshold *int
}

// CatalogService owns product records and catalog-side stock changes.
type CatalogService struct {
	products repository.ProductRepository
	monitor  StockEvaluator
}

// NewCatalogService constructs CatalogService.
func NewCatalogService(products repository.ProductRepository, monitor StockEvaluator) *CatalogService {
	return &CatalogService{products: products, monitor: monitor}
}

// CreateProduct stores a product and evaluates its initial stock.
func (s *CatalogService) CreateProduct(ctx context.Context, in NewProduct) (*model.Product, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, domainErrors.NewValidationError("name", "must not be empty")
	case in.Price.IsNegative():
		return nil, domainErrors.NewValidationError("price", "must not be negative")
	case !in.Price.Equal(in.Price.Round(2)):
		return nil, domainErrors.NewValidationError("price", "must have at most two decimal places")
	case in.StockQuantity < 0:
		return nil, domainErrors.NewValidationError("stockQuantity", "must not be negative")
	case in.LowStockThreshold != nil && *in.LowStockThreshold < 0:
		return nil, domainErrors.NewValidationError("lowStockThreshold", "must not be negative")
	}

	product, err := s.products.Create(ctx, model.Product{
		Name:              name,
		Price:             in.Price,
		StockQuantity:     in.StockQuantity,
		LowStockThreshold: in.LowStockThreshold,
	})
	if err != nil {
		return nil, err
	}
	s.monitor.Evaluate(ctx, product)
	return product, nil
}

// GetProduct returns one product.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return s.products.FindByID(ctx, id)
}

// SetStock overwrites stock with an absolute quantity.
func (s *CatalogService) SetStock(ctx context.Context, id int64, quantity int) (*model.Product, error) {
	if quantity < 0 {
		return nil, domainErrors.NewValidationError("stockQuantity", "must not be negative")
	}
	product, err := s.products.SetStock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}
	s.monitor.Evaluate(ctx, product)
	return product, nil
}

// AdjustStock applies a relative change. The result may not go below zero.
func (s *CatalogService) AdjustStock(ctx context.Context, id int64, delta int) (*model.Product, error) {
	if delta == 0 {
		return nil, domainErrors.NewValidationError("delta", "must not be zero")
	}
	product, err := s.products.ApplyStockDelta(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	s.monitor.Evaluate(ctx, product)
	return product, nil
}
