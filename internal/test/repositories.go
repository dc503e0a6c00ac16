package test

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/luisbfsousa/mect-sub001/internal/domain/errors"
	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
	"github.com/luisbfsousa/mect-sub001/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	mu      sync.Mutex
	Users   map[string]*model.User
	Err     error
	FindErr error
	Updates []model.Role
}

// NewUserRepositoryStub constructs stub repository seeded with users.
func NewUserRepositoryStub(users ...model.User) *UserRepositoryStub {
	s := &UserRepositoryStub{Users: make(map[string]*model.User)}
	for _, u := range users {
		u := u
		s.Users[u.ID] = &u
	}
	return s
}

// GetByID fetches user by id or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[id]; ok {
		c := *user
		return &c, nil
	}
	return nil, domainErrors.NewNotFoundError("user", id)
}

// CreateIfAbsent stores user unless the id is taken.
func (s *UserRepositoryStub) CreateIfAbsent(ctx context.Context, user model.User) (*model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, false, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if existing, ok := s.Users[user.ID]; ok {
		c := *existing
		return &c, false, nil
	}
	user.CreatedAt = time.Now()
	s.Users[user.ID] = &user
	c := user
	return &c, true, nil
}

// RaiseRole applies and records role changes allowed by replaceable.
func (s *UserRepositoryStub) RaiseRole(ctx context.Context, id string, role model.Role, replaceable []model.Role) (*model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, false, s.Err
	}
	user, ok := s.Users[id]
	if !ok {
		return nil, false, domainErrors.NewNotFoundError("user", id)
	}
	raised := slices.Contains(replaceable, user.Role)
	if raised {
		user.Role = role
		s.Updates = append(s.Updates, role)
	}
	c := *user
	return &c, raised, nil
}

// FindByRoleIn returns users holding any of roles ordered by id.
func (s *UserRepositoryStub) FindByRoleIn(ctx context.Context, roles []model.Role) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	var result []model.User
	for _, u := range s.Users {
		for _, r := range roles {
			if u.Role == r {
				result = append(result, *u)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// NotificationRepositoryStub keeps created notifications and can fail selectively.
type NotificationRepositoryStub struct {
	mu       sync.Mutex
	Created  []model.Notification
	CreateFn func(context.Context, model.Notification) error
	next     int64
}

// Create appends notification unless CreateFn rejects it.
func (s *NotificationRepositoryStub) Create(ctx context.Context, n model.Notification) (*model.Notification, error) {
	if s.CreateFn != nil {
		if err := s.CreateFn(ctx, n); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	n.ID = s.next
	n.CreatedAt = time.Now()
	s.Created = append(s.Created, n)
	return &n, nil
}

// ByType returns created notifications of kind.
func (s *NotificationRepositoryStub) ByType(kind model.NotificationType) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Notification
	for _, n := range s.Created {
		if n.Type == kind {
			result = append(result, n)
		}
	}
	return result
}

// ListByRecipient returns recipient notifications newest first.
func (s *NotificationRepositoryStub) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Notification
	for i := len(s.Created) - 1; i >= 0; i-- {
		n := s.Created[i]
		if n.RecipientID == recipientID && (!unreadOnly || !n.Read) {
			result = append(result, n)
		}
	}
	return result, nil
}

// CountUnread counts unread notifications for recipient.
func (s *NotificationRepositoryStub) CountUnread(ctx context.Context, recipientID string) (int, error) {
	list, _ := s.ListByRecipient(ctx, recipientID, true)
	return len(list), nil
}

// MarkRead flags one notification as read.
func (s *NotificationRepositoryStub) MarkRead(ctx context.Context, recipientID string, id int64) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Created {
		if s.Created[i].ID == id && s.Created[i].RecipientID == recipientID {
			s.Created[i].Read = true
			n := s.Created[i]
			return &n, nil
		}
	}
	return nil, domainErrors.NewNotFoundError("notification", id)
}

// MarkAllRead flags all recipient notifications as read.
func (s *NotificationRepositoryStub) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := 0
	for i := range s.Created {
		if s.Created[i].RecipientID == recipientID && !s.Created[i].Read {
			s.Created[i].Read = true
			updated++
		}
	}
	return updated, nil
}

// ProductRepositoryStub delegates to overrides and fails loudly otherwise.
type ProductRepositoryStub struct {
	FindFn   func(context.Context, int64) (*model.Product, error)
	CreateFn func(context.Context, model.Product) (*model.Product, error)
	SetFn    func(context.Context, int64, int) (*model.Product, error)
	DeltaFn  func(context.Context, int64, int) (*model.Product, error)
}

func (s ProductRepositoryStub) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	if s.FindFn != nil {
		return s.FindFn(ctx, id)
	}
	return nil, domainErrors.NewNotFoundError("product", id)
}

func (s ProductRepositoryStub) Create(ctx context.Context, p model.Product) (*model.Product, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, p)
	}
	p.ID = 1
	return &p, nil
}

func (s ProductRepositoryStub) SetStock(ctx context.Context, id int64, quantity int) (*model.Product, error) {
	if s.SetFn != nil {
		return s.SetFn(ctx, id, quantity)
	}
	return nil, domainErrors.NewNotFoundError("product", id)
}

func (s ProductRepositoryStub) ApplyStockDelta(ctx context.Context, id int64, delta int) (*model.Product, error) {
	if s.DeltaFn != nil {
		return s.DeltaFn(ctx, id, delta)
	}
	return nil, domainErrors.NewNotFoundError("product", id)
}

// OrderRepositoryStub delegates to overrides.
type OrderRepositoryStub struct {
	CreateFn func(context.Context, *model.Order) (*model.Order, error)
	GetFn    func(context.Context, int64) (*model.Order, error)
	ListFn   func(context.Context, string) ([]model.Order, error)
	UpdateFn func(context.Context, int64, repository.OrderMutation) (*model.Order, error)
}

func (s OrderRepositoryStub) CreateWithReservation(ctx context.Context, o *model.Order) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, o)
	}
	c := *o
	c.ID = 1
	return &c, nil
}

func (s OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id)
	}
	return nil, domainErrors.NewNotFoundError("order", id)
}

func (s OrderRepositoryStub) ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, customerID)
	}
	return nil, nil
}

func (s OrderRepositoryStub) Update(ctx context.Context, id int64, mutate repository.OrderMutation) (*model.Order, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, id, mutate)
	}
	return nil, domainErrors.NewNotFoundError("order", id)
}

var (
	_ repository.UserRepository         = (*UserRepositoryStub)(nil)
	_ repository.NotificationRepository = (*NotificationRepositoryStub)(nil)
	_ repository.ProductRepository      = ProductRepositoryStub{}
	_ repository.OrderRepository        = OrderRepositoryStub{}
)
