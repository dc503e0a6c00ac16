package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRequest creates a catalog product.
type ProductRequest struct {
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	StockQuantity     int             `json:"stockQuantity"`
	LowStockThreshold *int            `json:"lowStockThreshold,omitempty"`
}

// StockRequest overwrites the stock level.
type StockRequest struct {
	StockQuantity *int `json:"stockQuantity"`
}

// ProductResponse describes a catalog product.
type ProductResponse struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	StockQuantity     int             `json:"stockQuantity"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}
