// Package memory keeps engine state in process. Every operation runs under one mutex, which gives
// the same atomicity the postgres store gets from transactions and row locks.
package memory

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/luisbfsousa/mect-sub001/internal/domain/errors"
	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
	"github.com/luisbfsousa/mect-sub001/internal/domain/repository"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("memory store is closed")

// Store implements repository.Factory.
type Store struct {
	mu sync.Mutex

	users         map[string]model.User
	products      map[int64]model.Product
	orders        map[int64]model.Order
	notifications map[int64]model.Notification

	nextProductID      int64
	nextOrderID        int64
	nextItemID         int64
	nextNotificationID int64

	clock  func() time.Time
	closed bool
}

var _ repository.Factory = (*Store)(nil)

// New constructs an empty store.
func New() *Store {
	return &Store{
		users:         make(map[string]model.User),
		products:      make(map[int64]model.Product),
		orders:        make(map[int64]model.Order),
		notifications: make(map[int64]model.Notification),
		clock:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() repository.UserRepository                 { return userRepo{s} }
func (s *Store) Orders() repository.OrderRepository               { return orderRepo{s} }
func (s *Store) Products() repository.ProductRepository           { return productRepo{s} }
func (s *Store) Notifications() repository.NotificationRepository { return notificationRepo{s} }

// HealthCheck reports whether the store still accepts operations.
func (s *Store) HealthCheck(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close rejects further operations.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// lock acquires the store mutex unless ctx is done or the store is closed.
func (s *Store) lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	return nil
}

type userRepo struct{ s *Store }

func (r userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, domainErrors.NewNotFoundError("user", id)
	}
	return &user, nil
}

func (r userRepo) CreateIfAbsent(ctx context.Context, user model.User) (*model.User, bool, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, false, err
	}
	defer r.s.mu.Unlock()

	if existing, ok := r.s.users[user.ID]; ok {
		return &existing, false, nil
	}
	user.CreatedAt = r.s.clock()
	r.s.users[user.ID] = user
	return &user, true, nil
}

func (r userRepo) RaiseRole(ctx context.Context, id string, role model.Role, replaceable []model.Role) (*model.User, bool, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, false, err
	}
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, false, domainErrors.NewNotFoundError("user", id)
	}
	if !slices.Contains(replaceable, user.Role) {
		return &user, false, nil
	}
	user.Role = role
	r.s.users[id] = user
	return &user, true, nil
}

func (r userRepo) FindByRoleIn(ctx context.Context, roles []model.Role) ([]model.User, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	wanted := make(map[model.Role]struct{}, len(roles))
	for _, role := range roles {
		wanted[role] = struct{}{}
	}
	result := make([]model.User, 0)
	for _, user := range r.s.users {
		if _, ok := wanted[user.Role]; ok {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type productRepo struct{ s *Store }

func (r productRepo) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	product, ok := r.s.products[id]
	if !ok {
		return nil, domainErrors.NewNotFoundError("product", id)
	}
	return cloneProduct(product), nil
}

func (r productRepo) Create(ctx context.Context, product model.Product) (*model.Product, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	r.s.nextProductID++
	now := r.s.clock()
	product.ID = r.s.nextProductID
	product.CreatedAt = now
	product.UpdatedAt = now
	r.s.products[product.ID] = *cloneProduct(product)
	return cloneProduct(product), nil
}

func (r productRepo) SetStock(ctx context.Context, id int64, quantity int) (*model.Product, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	product, ok := r.s.products[id]
	if !ok {
		return nil, domainErrors.NewNotFoundError("product", id)
	}
	product.StockQuantity = quantity
	product.UpdatedAt = r.s.clock()
	r.s.products[id] = product
	return cloneProduct(product), nil
}

func (r productRepo) ApplyStockDelta(ctx context.Context, id int64, delta int) (*model.Product, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	product, ok := r.s.products[id]
	if !ok {
		return nil, domainErrors.NewNotFoundError("product", id)
	}
	if product.StockQuantity+delta < 0 {
		return nil, &domainErrors.InsufficientStockError{ProductID: id, Requested: -delta, Available: product.StockQuantity}
	}
	product.StockQuantity += delta
	product.UpdatedAt = r.s.clock()
	r.s.products[id] = product
	return cloneProduct(product), nil
}

type orderRepo struct{ s *Store }

func (r orderRepo) CreateWithReservation(ctx context.Context, order *model.Order) (*model.Order, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[order.CustomerID]; !ok {
		return nil, domainErrors.NewNotFoundError("user", order.CustomerID)
	}

	requested := make(map[int64]int, len(order.Items))
	for _, item := range order.Items {
		requested[item.ProductID] += item.Quantity
	}
	for _, id := range sortedKeys(requested) {
		product, ok := r.s.products[id]
		if !ok {
			return nil, domainErrors.NewNotFoundError("product", id)
		}
		if product.StockQuantity < requested[id] {
			return nil, &domainErrors.InsufficientStockError{ProductID: id, Requested: requested[id], Available: product.StockQuantity}
		}
	}

	now := r.s.clock()
	for id, qty := range requested {
		product := r.s.products[id]
		product.StockQuantity -= qty
		product.UpdatedAt = now
		r.s.products[id] = product
	}

	r.s.nextOrderID++
	stored := cloneOrder(*order)
	stored.ID = r.s.nextOrderID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	for i := range stored.Items {
		r.s.nextItemID++
		stored.Items[i].ID = r.s.nextItemID
		stored.Items[i].OrderID = stored.ID
	}
	r.s.orders[stored.ID] = stored

	result := cloneOrder(stored)
	return &result, nil
}

func (r orderRepo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	order, ok := r.s.orders[id]
	if !ok {
		return nil, domainErrors.NewNotFoundError("order", id)
	}
	result := cloneOrder(order)
	return &result, nil
}

func (r orderRepo) ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	result := make([]model.Order, 0)
	for _, order := range r.s.orders {
		if order.CustomerID == customerID {
			result = append(result, cloneOrder(order))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (r orderRepo) Update(ctx context.Context, id int64, mutate repository.OrderMutation) (*model.Order, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	current, ok := r.s.orders[id]
	if !ok {
		return nil, domainErrors.NewNotFoundError("order", id)
	}
	working := cloneOrder(current)
	if err := mutate(&working); err != nil {
		return nil, err
	}

	// ownership and items are fixed at creation
	working.ID = current.ID
	working.CustomerID = current.CustomerID
	working.Items = current.Items
	working.CreatedAt = current.CreatedAt
	working.UpdatedAt = r.s.clock()
	r.s.orders[id] = cloneOrder(working)

	result := cloneOrder(working)
	return &result, nil
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(ctx context.Context, n model.Notification) (*model.Notification, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	r.s.nextNotificationID++
	n.ID = r.s.nextNotificationID
	n.Read = false
	n.CreatedAt = r.s.clock()
	n.OrderID = cloneInt64(n.OrderID)
	r.s.notifications[n.ID] = n
	return &n, nil
}

func (r notificationRepo) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]model.Notification, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	result := make([]model.Notification, 0)
	for _, n := range r.s.notifications {
		if n.RecipientID != recipientID || (unreadOnly && n.Read) {
			continue
		}
		n.OrderID = cloneInt64(n.OrderID)
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r notificationRepo) CountUnread(ctx context.Context, recipientID string) (int, error) {
	if err := r.s.lock(ctx); err != nil {
		return 0, err
	}
	defer r.s.mu.Unlock()

	count := 0
	for _, n := range r.s.notifications {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r notificationRepo) MarkRead(ctx context.Context, recipientID string, id int64) (*model.Notification, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return nil, domainErrors.NewNotFoundError("notification", id)
	}
	n.Read = true
	r.s.notifications[id] = n
	n.OrderID = cloneInt64(n.OrderID)
	return &n, nil
}

func (r notificationRepo) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	if err := r.s.lock(ctx); err != nil {
		return 0, err
	}
	defer r.s.mu.Unlock()

	updated := 0
	for id, n := range r.s.notifications {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			r.s.notifications[id] = n
			updated++
		}
	}
	return updated, nil
}

func sortedKeys(m map[int64]int) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func cloneProduct(p model.Product) *model.Product {
	if p.LowStockThreshold != nil {
		v := *p.LowStockThreshold
		p.LowStockThreshold = &v
	}
	return &p
}

func cloneOrder(o model.Order) model.Order {
	o.Items = append([]model.OrderItem(nil), o.Items...)
	o.TrackingNumber = cloneString(o.TrackingNumber)
	o.ShippingProvider = cloneString(o.ShippingProvider)
	o.CustomerNotes = cloneString(o.CustomerNotes)
	o.AdminNotes = cloneString(o.AdminNotes)
	o.EstimatedDeliveryDate = cloneTime(o.EstimatedDeliveryDate)
	o.PaymentConfirmedAt = cloneTime(o.PaymentConfirmedAt)
	return o
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
