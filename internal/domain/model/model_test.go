package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		name     string
		got      OrderStatus
		value    string
		terminal bool
	}{
		{"pending", OrderStatusPending, "pending", false},
		{"processing", OrderStatusProcessing, "processing", false},
		{"shipped", OrderStatusShipped, "shipped", false},
		{"delivered", OrderStatusDelivered, "delivered", true},
		{"cancelled", OrderStatusCancelled, "cancelled", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
			if !tc.got.Valid() {
				t.Fatalf("expected %s to be valid", tc.got)
			}
			if tc.got.Terminal() != tc.terminal {
				t.Fatalf("expected terminal=%v for %s", tc.terminal, tc.got)
			}
		})
	}

	if OrderStatus("returned").Valid() {
		t.Fatal("unexpected valid status")
	}
}

func TestNewOrderItemComputesSubtotal(t *testing.T) {
	item := NewOrderItem(3, 2, decimal.RequireFromString("10.00"))
	if !item.Subtotal.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("unexpected subtotal %s", item.Subtotal)
	}

	order := Order{Items: []OrderItem{item, NewOrderItem(4, 1, decimal.RequireFromString("0.99"))}}
	if !order.ItemsTotal().Equal(decimal.RequireFromString("20.99")) {
		t.Fatalf("unexpected items total %s", order.ItemsTotal())
	}
}

func TestProductThresholdAndStock(t *testing.T) {
	p := Product{StockQuantity: -3}
	if p.Threshold() != DefaultLowStockThreshold {
		t.Fatalf("expected default threshold, got %d", p.Threshold())
	}
	if p.Stock() != 0 {
		t.Fatalf("expected clamped stock, got %d", p.Stock())
	}

	threshold := 5
	p = Product{StockQuantity: 7, LowStockThreshold: &threshold}
	if p.Threshold() != 5 || p.Stock() != 7 {
		t.Fatalf("unexpected threshold/stock %d/%d", p.Threshold(), p.Stock())
	}
}

func TestUserDisplayName(t *testing.T) {
	cases := []struct {
		user User
		want string
	}{
		{User{FirstName: "Ana", LastName: "Silva", Email: "a@x"}, "Ana Silva"},
		{User{FirstName: "Ana", Email: "a@x"}, "Ana"},
		{User{LastName: "Silva", Email: "a@x"}, "Silva"},
		{User{Email: "a@x"}, "a@x"},
	}
	for _, tc := range cases {
		if got := tc.user.DisplayName(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}
