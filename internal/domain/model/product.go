package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold applies when a product carries no threshold.
const DefaultLowStockThreshold = 10

// Product is a catalog record referenced by orders.
type Product struct {
	ID                int64
	Name              string
	Price             decimal.Decimal
	StockQuantity     int
	LowStockThreshold *int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Threshold returns the low stock threshold, falling back to the default.
func (p *Product) Threshold() int {
	if p.LowStockThreshold == nil || *p.LowStockThreshold < 0 {
		return DefaultLowStockThreshold
	}
	return *p.LowStockThreshold
}

// Stock returns stock clamped at zero.
func (p *Product) Stock() int {
	if p.StockQuantity < 0 {
		return 0
	}
	return p.StockQuantity
}
