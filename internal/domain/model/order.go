package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether status belongs to the finite status set.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no guarded transition leaves status.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Address is a shipping or billing snapshot taken at purchase time.
type Address struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Order describes a customer purchase.
type Order struct {
	ID                    int64
	CustomerID            string
	Status                OrderStatus
	TotalAmount           decimal.Decimal
	TaxAmount             decimal.Decimal
	ShippingCost          decimal.Decimal
	ShippingAddress       Address
	BillingAddress        Address
	TrackingNumber        *string
	ShippingProvider      *string
	EstimatedDeliveryDate *time.Time
	PaymentConfirmedAt    *time.Time
	CustomerNotes         *string
	AdminNotes            *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	Items                 []OrderItem
}

// ItemsTotal sums item subtotals.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// OrderItem is one immutable line of an order.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// NewOrderItem snapshots price and computes the line subtotal.
func NewOrderItem(productID int64, quantity int, unitPrice decimal.Decimal) OrderItem {
	return OrderItem{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}
