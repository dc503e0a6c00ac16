package usecase

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
	"github.com/luisbfsousa/mect-sub001/internal/identity"
	"github.com/luisbfsousa/mect-sub001/internal/metrics"
	"github.com/luisbfsousa/mect-sub001/internal/storage/memory"
	"github.com/luisbfsousa/mect-sub001/internal/test"
)

var fixedNow = time.Date(2024, time.March, 10, 15, 30, 0, 0, time.UTC)

type harness struct {
	store         *memory.Store
	notifications *test.NotificationRepositoryStub
	dispatcher    *NotificationDispatcher
	monitor       *InventoryMonitor
	identities    *IdentityService
	catalog       *CatalogService
	orders        *OrderCreationService
	machine       *OrderStatusMachine
	logs          *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, nil))
	m := metrics.New()
	policy := identity.DefaultPolicy()

	store := memory.New()
	notifications := &test.NotificationRepositoryStub{}
	dispatcher := NewNotificationDispatcher(notifications, store.Users(), policy, m, logger)
	monitor := NewInventoryMonitor(dispatcher, m, logger)
	identities := NewIdentityService(store.Users(), policy, logger)
	machine := NewOrderStatusMachine(store.Orders(), dispatcher, 5, m, logger)
	machine.clock = func() time.Time { return fixedNow }

	h := &harness{
		store:         store,
		notifications: notifications,
		dispatcher:    dispatcher,
		monitor:       monitor,
		identities:    identities,
		catalog:       NewCatalogService(store.Products(), monitor),
		orders:        NewOrderCreationService(store.Orders(), store.Products(), identities, monitor, m, logger),
		machine:       machine,
		logs:          logs,
	}
	h.addUser(t, model.User{ID: "admin-1", Role: model.RoleAdministrator})
	h.addUser(t, model.User{ID: "staff-1", Role: model.RoleWarehouseStaff})
	return h
}

func (h *harness) addUser(t *testing.T, u model.User) {
	t.Helper()
	if _, _, err := h.store.Users().CreateIfAbsent(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func (h *harness) addProduct(t *testing.T, price string, stock int, threshold *int) *model.Product {
	t.Helper()
	p, err := h.store.Products().Create(context.Background(), model.Product{
		Name:              "Ceramic mug",
		Price:             decimal.RequireFromString(price),
		StockQuantity:     stock,
		LowStockThreshold: threshold,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func (h *harness) stock(t *testing.T, id int64) int {
	t.Helper()
	p, err := h.store.Products().FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("read product: %v", err)
	}
	return p.StockQuantity
}

// placeOrder creates a pending order of qty units of product for customer "cust-1".
func (h *harness) placeOrder(t *testing.T, productID int64, qty int) *model.Order {
	t.Helper()
	order, err := h.orders.CreateOrder(context.Background(), customer(), orderInput(productID, qty, "2.00", "22.00"))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func customer() identity.Identity {
	return identity.Identity{
		Subject:   "cust-1",
		Email:     "ana@example.com",
		GivenName: "Ana",
		Role:      model.RoleCustomer,
	}
}

func address() model.Address {
	return model.Address{FullName: "Ana Silva", Line1: "Rua das Flores 1", City: "Lisbon", PostalCode: "1000-001", Country: "PT"}
}

func orderInput(productID int64, qty int, shipping, clientTotal string) CreateOrderInput {
	return CreateOrderInput{
		Items: []OrderLine{{ProductID: productID, Quantity: qty}},
		Shipping: ShippingInfo{
			ShippingAddress: address(),
			ShippingCost:    decimal.RequireFromString(shipping),
		},
		ClientTotal: decimal.RequireFromString(clientTotal),
	}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
