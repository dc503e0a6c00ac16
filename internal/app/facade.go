package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/luisbfsousa/mect-sub001/internal/config"
	domainErrors "github.com/luisbfsousa/mect-sub001/internal/domain/errors"
	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
	"github.com/luisbfsousa/mect-sub001/internal/domain/repository"
	"github.com/luisbfsousa/mect-sub001/internal/identity"
	pkgAuth "github.com/luisbfsousa/mect-sub001/internal/pkg/auth"
	"github.com/luisbfsousa/mect-sub001/internal/usecase"
)

// FacadeDeps lists the services EngineFacade composes.
type FacadeDeps struct {
	fx.In

	Config        *config.Config
	Verifier      pkgAuth.Verifier
	Policy        identity.Policy
	Identities    *usecase.IdentityService
	Orders        *usecase.OrderCreationService
	Machine       *usecase.OrderStatusMachine
	Catalog       *usecase.CatalogService
	Notifications *usecase.NotificationDispatcher
	Store         repository.Factory
}

// EngineFacade is the single entry point of the request surface. It resolves callers and
// enforces per-order ownership on top of the role checks done by middleware.
type EngineFacade struct {
	verifier      pkgAuth.Verifier
	policy        identity.Policy
	clientID      string
	identities    *usecase.IdentityService
	orders        *usecase.OrderCreationService
	machine       *usecase.OrderStatusMachine
	catalog       *usecase.CatalogService
	notifications *usecase.NotificationDispatcher
	store         repository.Factory
}

// NewEngineFacade constructs EngineFacade.
func NewEngineFacade(deps FacadeDeps) *EngineFacade {
	var clientID string
	if deps.Config != nil {
		clientID = deps.Config.IdentityClientID
	}
	return &EngineFacade{
		verifier:      deps.Verifier,
		policy:        deps.Policy,
		clientID:      clientID,
		identities:    deps.Identities,
		orders:        deps.Orders,
		machine:       deps.Machine,
		catalog:       deps.Catalog,
		notifications: deps.Notifications,
		store:         deps.Store,
	}
}

// Authenticate verifies token, resolves the caller's role and records the identity locally.
func (f *EngineFacade) Authenticate(ctx context.Context, token string) (identity.Identity, error) {
	raw, err := f.verifier.Verify(token)
	if err != nil {
		return identity.Identity{}, err
	}
	id, err := identity.Extract(raw, f.clientID, f.policy)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("%w: %v", pkgAuth.ErrInvalidToken, err)
	}
	if _, err := f.identities.GetOrCreateIdentity(ctx, id); err != nil {
		return identity.Identity{}, err
	}
	return id, nil
}

func (f *EngineFacade) CreateOrder(ctx context.Context, caller identity.Identity, in usecase.CreateOrderInput) (*model.Order, error) {
	return f.orders.CreateOrder(ctx, caller, in)
}

func (f *EngineFacade) Order(ctx context.Context, caller identity.Identity, id int64) (*model.Order, error) {
	return f.ownedOrder(ctx, caller, id, model.RoleWarehouseStaff)
}

func (f *EngineFacade) Orders(ctx context.Context, caller identity.Identity) ([]model.Order, error) {
	return f.orders.ListOrders(ctx, caller.Subject)
}

func (f *EngineFacade) ConfirmPayment(ctx context.Context, caller identity.Identity, id int64) (*model.Order, error) {
	if _, err := f.ownedOrder(ctx, caller, id, model.RoleAdministrator); err != nil {
		return nil, err
	}
	return f.machine.ConfirmPayment(ctx, id)
}

func (f *EngineFacade) CancelOrder(ctx context.Context, caller identity.Identity, id int64) (*model.Order, error) {
	if _, err := f.ownedOrder(ctx, caller, id, model.RoleAdministrator); err != nil {
		return nil, err
	}
	return f.machine.CancelOrder(ctx, id)
}

func (f *EngineFacade) MarkAsDelivered(ctx context.Context, caller identity.Identity, id int64, confirm bool) (*model.Order, error) {
	if _, err := f.ownedOrder(ctx, caller, id, model.RoleWarehouseStaff); err != nil {
		return nil, err
	}
	return f.machine.MarkAsDelivered(ctx, id, confirm)
}

func (f *EngineFacade) MarkAsShipped(ctx context.Context, id int64, trackingNumber, provider *string) (*model.Order, error) {
	return f.machine.MarkAsShipped(ctx, id, trackingNumber, provider)
}

func (f *EngineFacade) UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	return f.machine.UpdateOrderStatus(ctx, id, status)
}

func (f *EngineFacade) AdminUpdateOrder(ctx context.Context, id int64, update usecase.AdminUpdate) (*model.Order, error) {
	return f.machine.AdminUpdateOrder(ctx, id, update)
}

func (f *EngineFacade) CreateProduct(ctx context.Context, in usecase.NewProduct) (*model.Product, error) {
	return f.catalog.CreateProduct(ctx, in)
}

func (f *EngineFacade) SetStock(ctx context.Context, id int64, quantity int) (*model.Product, error) {
	return f.catalog.SetStock(ctx, id, quantity)
}

func (f *EngineFacade) Notifications(ctx context.Context, caller identity.Identity, unreadOnly bool) ([]model.Notification, error) {
	return f.notifications.List(ctx, caller.Subject, unreadOnly)
}

func (f *EngineFacade) UnreadCount(ctx context.Context, caller identity.Identity) (int, error) {
	return f.notifications.UnreadCount(ctx, caller.Subject)
}

func (f *EngineFacade) MarkRead(ctx context.Context, caller identity.Identity, id int64) (*model.Notification, error) {
	return f.notifications.MarkRead(ctx, caller.Subject, id)
}

func (f *EngineFacade) MarkAllRead(ctx context.Context, caller identity.Identity) (int, error) {
	return f.notifications.MarkAllRead(ctx, caller.Subject)
}

// HealthCheck pings the backing store.
func (f *EngineFacade) HealthCheck(ctx context.Context) error {
	return f.store.HealthCheck(ctx)
}

// ownedOrder loads the order and lets through its owner or any caller ranked at least privileged.
func (f *EngineFacade) ownedOrder(ctx context.Context, caller identity.Identity, id int64, privileged model.Role) (*model.Order, error) {
	order, err := f.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.CustomerID == caller.Subject || f.policy.AtLeast(caller.Role, privileged) {
		return order, nil
	}
	return nil, domainErrors.ErrForbidden
}
