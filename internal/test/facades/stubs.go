// Package facades holds request-surface facade stubs shared by HTTP tests.
package facades

import (
	"context"

	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
	"github.com/luisbfsousa/mect-sub001/internal/identity"
	"github.com/luisbfsousa/mect-sub001/internal/test"
	"github.com/luisbfsousa/mect-sub001/internal/usecase"
)

// OrderFacadeStub lets handler tests override individual order operations.
// Unset operations answer with an empty order carrying the requested id.
type OrderFacadeStub struct {
	CreateFn  func(context.Context, identity.Identity, usecase.CreateOrderInput) (*model.Order, error)
	OrderFn   func(context.Context, identity.Identity, int64) (*model.Order, error)
	OrdersFn  func(context.Context, identity.Identity) ([]model.Order, error)
	ConfirmFn func(context.Context, identity.Identity, int64) (*model.Order, error)
	CancelFn  func(context.Context, identity.Identity, int64) (*model.Order, error)
	DeliverFn func(context.Context, identity.Identity, int64, bool) (*model.Order, error)
	ShipFn    func(context.Context, int64, *string, *string) (*model.Order, error)
	StatusFn  func(context.Context, int64, model.OrderStatus) (*model.Order, error)
	AdminFn   func(context.Context, int64, usecase.AdminUpdate) (*model.Order, error)
}

func (s OrderFacadeStub) CreateOrder(ctx context.Context, caller identity.Identity, in usecase.CreateOrderInput) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, caller, in)
	}
	return &model.Order{ID: 1, CustomerID: caller.Subject, Status: model.OrderStatusPending}, nil
}

func (s OrderFacadeStub) Order(ctx context.Context, caller identity.Identity, id int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, caller, id)
	}
	return &model.Order{ID: id}, nil
}

func (s OrderFacadeStub) Orders(ctx context.Context, caller identity.Identity) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, caller)
	}
	return nil, nil
}

func (s OrderFacadeStub) ConfirmPayment(ctx context.Context, caller identity.Identity, id int64) (*model.Order, error) {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, caller, id)
	}
	return &model.Order{ID: id, Status: model.OrderStatusProcessing}, nil
}

func (s OrderFacadeStub) CancelOrder(ctx context.Context, caller identity.Identity, id int64) (*model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, caller, id)
	}
	return &model.Order{ID: id, Status: model.OrderStatusCancelled}, nil
}

func (s OrderFacadeStub) MarkAsDelivered(ctx context.Context, caller identity.Identity, id int64, confirm bool) (*model.Order, error) {
	if s.DeliverFn != nil {
		return s.DeliverFn(ctx, caller, id, confirm)
	}
	return &model.Order{ID: id, Status: model.OrderStatusDelivered}, nil
}

func (s OrderFacadeStub) MarkAsShipped(ctx context.Context, id int64, trackingNumber, provider *string) (*model.Order, error) {
	if s.ShipFn != nil {
		return s.ShipFn(ctx, id, trackingNumber, provider)
	}
	return &model.Order{ID: id, Status: model.OrderStatusShipped, TrackingNumber: trackingNumber, ShippingProvider: provider}, nil
}

func (s OrderFacadeStub) UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, id, status)
	}
	return &model.Order{ID: id, Status: status}, nil
}

func (s OrderFacadeStub) AdminUpdateOrder(ctx context.Context, id int64, update usecase.AdminUpdate) (*model.Order, error) {
	if s.AdminFn != nil {
		return s.AdminFn(ctx, id, update)
	}
	return &model.Order{ID: id, Status: update.Status}, nil
}

// CatalogFacadeStub lets handler tests override catalog operations.
type CatalogFacadeStub struct {
	CreateFn func(context.Context, usecase.NewProduct) (*model.Product, error)
	StockFn  func(context.Context, int64, int) (*model.Product, error)
}

func (s CatalogFacadeStub) CreateProduct(ctx context.Context, in usecase.NewProduct) (*model.Product, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, in)
	}
	return &model.Product{ID: 1, Name: in.Name, Price: in.Price, StockQuantity: in.StockQuantity}, nil
}

func (s CatalogFacadeStub) SetStock(ctx context.Context, id int64, quantity int) (*model.Product, error) {
	if s.StockFn != nil {
		return s.StockFn(ctx, id, quantity)
	}
	return &model.Product{ID: id, StockQuantity: quantity}, nil
}

// NotificationFacadeStub lets handler tests override inbox operations.
type NotificationFacadeStub struct {
	ListFn    func(context.Context, identity.Identity, bool) ([]model.Notification, error)
	CountFn   func(context.Context, identity.Identity) (int, error)
	ReadFn    func(context.Context, identity.Identity, int64) (*model.Notification, error)
	ReadAllFn func(context.Context, identity.Identity) (int, error)
}

func (s NotificationFacadeStub) Notifications(ctx context.Context, caller identity.Identity, unreadOnly bool) ([]model.Notification, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, caller, unreadOnly)
	}
	return nil, nil
}

func (s NotificationFacadeStub) UnreadCount(ctx context.Context, caller identity.Identity) (int, error) {
	if s.CountFn != nil {
		return s.CountFn(ctx, caller)
	}
	return 0, nil
}

func (s NotificationFacadeStub) MarkRead(ctx context.Context, caller identity.Identity, id int64) (*model.Notification, error) {
	if s.ReadFn != nil {
		return s.ReadFn(ctx, caller, id)
	}
	return &model.Notification{ID: id, RecipientID: caller.Subject, Read: true}, nil
}

func (s NotificationFacadeStub) MarkAllRead(ctx context.Context, caller identity.Identity) (int, error) {
	if s.ReadAllFn != nil {
		return s.ReadAllFn(ctx, caller)
	}
	return 0, nil
}

// HealthFacadeStub reports Err from HealthCheck.
type HealthFacadeStub struct {
	Err error
}

func (s HealthFacadeStub) HealthCheck(context.Context) error { return s.Err }

// EngineFacadeStub aggregates stubs for router tests.
type EngineFacadeStub struct {
	test.AuthenticatorStub
	OrderFacadeStub
	CatalogFacadeStub
	NotificationFacadeStub
	HealthFacadeStub
}
