package handlers

import (
	"context"

	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
	"github.com/luisbfsousa/mect-sub001/internal/identity"
	"github.com/luisbfsousa/mect-sub001/internal/usecase"
)

// IdentityFacade resolves bearer tokens.
type IdentityFacade interface {
	Authenticate(ctx context.Context, token string) (identity.Identity, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, caller identity.Identity, in usecase.CreateOrderInput) (*model.Order, error)
	Order(ctx context.Context, caller identity.Identity, id int64) (*model.Order, error)
	Orders(ctx context.Context, caller identity.Identity) ([]model.Order, error)
	ConfirmPayment(ctx context.Context, caller identity.Identity, id int64) (*model.Order, error)
	CancelOrder(ctx context.Context, caller identity.Identity, id int64) (*model.Order, error)
	MarkAsDelivered(ctx context.Context, caller identity.Identity, id int64, confirm bool) (*model.Order, error)
	MarkAsShipped(ctx context.Context, id int64, trackingNumber, provider *string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error)
	AdminUpdateOrder(ctx context.Context, id int64, update usecase.AdminUpdate) (*model.Order, error)
}

// CatalogFacade provides product and stock operations.
type CatalogFacade interface {
	CreateProduct(ctx context.Context, in usecase.NewProduct) (*model.Product, error)
	SetStock(ctx context.Context, id int64, quantity int) (*model.Product, error)
}

// NotificationFacade provides the caller's inbox.
type NotificationFacade interface {
	Notifications(ctx context.Context, caller identity.Identity, unreadOnly bool) ([]model.Notification, error)
	UnreadCount(ctx context.Context, caller identity.Identity) (int, error)
	MarkRead(ctx context.Context, caller identity.Identity, id int64) (*model.Notification, error)
	MarkAllRead(ctx context.Context, caller identity.Identity) (int, error)
}

// HealthFacade checks dependencies.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// EngineFacade aggregates the full set of operations used across handlers.
type EngineFacade interface {
	IdentityFacade
	OrderFacade
	CatalogFacade
	NotificationFacade
	HealthFacade
}
