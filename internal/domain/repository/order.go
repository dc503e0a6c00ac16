package repository

import (
	"context"

	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
)

// OrderMutation edits a locked order in place. Returning an error aborts the update.
type OrderMutation func(order *model.Order) error

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// CreateWithReservation persists the order with its items and decrements stock for every
	// line in one atomic unit. Any failed decrement aborts the whole unit.
	CreateWithReservation(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error)
	// Update locks the order row, applies mutate and persists the result.
	Update(ctx context.Context, id int64, mutate OrderMutation) (*model.Order, error)
}
