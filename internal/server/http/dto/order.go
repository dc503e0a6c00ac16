package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddressPayload is a shipping or billing address.
type AddressPayload struct {
	FullName   string `json:"fullName"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// OrderItemRequest is one requested line. Price is accepted but never trusted.
type OrderItemRequest struct {
	ProductID int64            `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

// CreateOrderRequest describes the checkout payload.
type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items"`
	ShippingAddress AddressPayload     `json:"shippingAddress"`
	BillingAddress  *AddressPayload    `json:"billingAddress,omitempty"`
	TotalAmount     decimal.Decimal    `json:"totalAmount"`
	ShippingCost    decimal.Decimal    `json:"shippingCost"`
	TaxAmount       decimal.Decimal    `json:"taxAmount"`
	Notes           *string            `json:"notes,omitempty"`
}

// ShipRequest carries optional tracking data.
type ShipRequest struct {
	TrackingNumber   *string `json:"trackingNumber"`
	ShippingProvider *string `json:"shippingProvider"`
}

// DeliverRequest requires an explicit confirmation flag.
type DeliverRequest struct {
	Confirm bool `json:"confirm"`
}

// StatusRequest sets an order status directly.
type StatusRequest struct {
	Status string `json:"status"`
}

// AdminOrderUpdateRequest is a partial administrative override.
type AdminOrderUpdateRequest struct {
	Status           string  `json:"status"`
	PaymentConfirmed *bool   `json:"paymentConfirmed"`
	TrackingNumber   *string `json:"trackingNumber"`
	ShippingProvider *string `json:"shippingProvider"`
	AdminNotes       *string `json:"adminNotes"`
}

// OrderItemResponse is one stored order line.
type OrderItemResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse describes an order with its items.
type OrderResponse struct {
	ID                    int64               `json:"id"`
	CustomerID            string              `json:"customerId"`
	Status                string              `json:"status"`
	TotalAmount           decimal.Decimal     `json:"totalAmount"`
	TaxAmount             decimal.Decimal     `json:"taxAmount"`
	ShippingCost          decimal.Decimal     `json:"shippingCost"`
	ShippingAddress       AddressPayload      `json:"shippingAddress"`
	BillingAddress        AddressPayload      `json:"billingAddress"`
	TrackingNumber        *string             `json:"trackingNumber,omitempty"`
	ShippingProvider      *string             `json:"shippingProvider,omitempty"`
	EstimatedDeliveryDate *time.Time          `json:"estimatedDeliveryDate,omitempty"`
	PaymentConfirmedAt    *time.Time          `json:"paymentConfirmedAt,omitempty"`
	Notes                 *string             `json:"notes,omitempty"`
	AdminNotes            *string             `json:"adminNotes,omitempty"`
	CreatedAt             time.Time           `json:"createdAt"`
	UpdatedAt             time.Time           `json:"updatedAt"`
	Items                 []OrderItemResponse `json:"items"`
}
