package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/luisbfsousa/mect-sub001/internal/domain/errors"
	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
	"github.com/luisbfsousa/mect-sub001/internal/domain/repository"
	"github.com/luisbfsousa/mect-sub001/internal/metrics"
)

// StatusNotifier turns committed transitions into notifications.
type StatusNotifier interface {
	StatusChanged(ctx context.Context, order *model.Order, oldStatus, newStatus model.OrderStatus) (*model.Notification, error)
	PaymentConfirmed(ctx context.Context, order *model.Order) (*model.Notification, error)
	DeliveryNoticeToStaff(ctx context.Context, order *model.Order) ([]model.Notification, error)
}

// AdminUpdate is an administrative override. Nil fields are left untouched.
type AdminUpdate struct {
	Status           model.OrderStatus
	PaymentConfirmed *bool
	TrackingNumber   *string
	ShippingProvider *string
	AdminNotes       *string
}

// DefaultEstimatedDeliveryDays is used when the machine is built without a delivery window.
const DefaultEstimatedDeliveryDays = 5

// OrderStatusMachine guards status transitions and drives their notifications.
type OrderStatusMachine struct {
	orders       repository.OrderRepository
	notifier     StatusNotifier
	deliveryDays int
	clock        func() time.Time
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewOrderStatusMachine constructs OrderStatusMachine.
func NewOrderStatusMachine(
	orders repository.OrderRepository,
	notifier StatusNotifier,
	deliveryDays int,
	m *metrics.Metrics,
	logger *slog.Logger,
) *OrderStatusMachine {
	if deliveryDays <= 0 {
		deliveryDays = DefaultEstimatedDeliveryDays
	}
	return &OrderStatusMachine{
		orders:       orders,
		notifier:     notifier,
		deliveryDays: deliveryDays,
		clock:        func() time.Time { return time.Now().UTC() },
		metrics:      m,
		logger:       logger,
	}
}

// ConfirmPayment moves a pending order to processing.
func (m *OrderStatusMachine) ConfirmPayment(ctx context.Context, id int64) (*model.Order, error) {
	order, old, err := m.transition(ctx, "confirmPayment", id, func(o *model.Order) error {
		if o.Status != model.OrderStatusPending {
			return invalidState("confirmPayment", o.Status, model.OrderStatusProcessing)
		}
		now := m.clock()
		o.Status = model.OrderStatusProcessing
		o.PaymentConfirmedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.recordTransition(old, order.Status)
	if _, err := m.notifier.PaymentConfirmed(ctx, order); err != nil {
		m.fanoutFailed(order, "payment confirmed notification", err)
	}
	return order, nil
}

// MarkAsShipped ships a processing order, or refreshes tracking data on an already shipped one.
// Supplied tracking fields overwrite stored values.
func (m *OrderStatusMachine) MarkAsShipped(ctx context.Context, id int64, trackingNumber, provider *string) (*model.Order, error) {
	trackingNumber = trimmed(trackingNumber)
	provider = trimmed(provider)

	order, old, err := m.transition(ctx, "markAsShipped", id, func(o *model.Order) error {
		if o.Status != model.OrderStatusProcessing && o.Status != model.OrderStatusShipped {
			return invalidState("markAsShipped", o.Status, model.OrderStatusShipped)
		}
		if trackingNumber != nil {
			o.TrackingNumber = trackingNumber
		}
		if provider != nil {
			o.ShippingProvider = provider
		}
		eta := m.estimatedDelivery()
		o.Status = model.OrderStatusShipped
		o.EstimatedDeliveryDate = &eta
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.recordTransition(old, order.Status)
	m.notifyStatusChanged(ctx, order, old)
	return order, nil
}

// MarkAsDelivered completes a shipped order. The caller must confirm explicitly.
func (m *OrderStatusMachine) MarkAsDelivered(ctx context.Context, id int64, confirm bool) (*model.Order, error) {
	if !confirm {
		return nil, domainErrors.NewValidationError("confirm", "delivery must be confirmed")
	}

	order, old, err := m.transition(ctx, "markAsDelivered", id, func(o *model.Order) error {
		if o.Status != model.OrderStatusShipped {
			return invalidState("markAsDelivered", o.Status, model.OrderStatusDelivered)
		}
		o.Status = model.OrderStatusDelivered
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.recordTransition(old, order.Status)
	m.notifyStatusChanged(ctx, order, old)
	if _, err := m.notifier.DeliveryNoticeToStaff(ctx, order); err != nil {
		m.fanoutFailed(order, "staff delivery notice", err)
	}
	return order, nil
}

// CancelOrder cancels a pending or processing order. Reserved stock is not returned.
func (m *OrderStatusMachine) CancelOrder(ctx context.Context, id int64) (*model.Order, error) {
	order, old, err := m.transition(ctx, "cancelOrder", id, func(o *model.Order) error {
		if o.Status != model.OrderStatusPending && o.Status != model.OrderStatusProcessing {
			return invalidState("cancelOrder", o.Status, model.OrderStatusCancelled)
		}
		o.Status = model.OrderStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.recordTransition(old, order.Status)
	m.notifyStatusChanged(ctx, order, old)
	return order, nil
}

// AdminUpdateOrder applies every supplied field without consulting the transition graph.
// Only the status value itself is checked.
func (m *OrderStatusMachine) AdminUpdateOrder(ctx context.Context, id int64, update AdminUpdate) (*model.Order, error) {
	if !update.Status.Valid() {
		return nil, domainErrors.NewValidationError("status", "unknown order status")
	}

	order, old, err := m.transition(ctx, "adminUpdateOrder", id, func(o *model.Order) error {
		o.Status = update.Status
		if update.PaymentConfirmed != nil {
			switch {
			case *update.PaymentConfirmed && o.PaymentConfirmedAt == nil:
				now := m.clock()
				o.PaymentConfirmedAt = &now
			case !*update.PaymentConfirmed:
				o.PaymentConfirmedAt = nil
			}
		}
		if update.TrackingNumber != nil {
			o.TrackingNumber = emptyToNil(update.TrackingNumber)
		}
		if update.ShippingProvider != nil {
			o.ShippingProvider = emptyToNil(update.ShippingProvider)
		}
		if update.AdminNotes != nil {
			o.AdminNotes = emptyToNil(update.AdminNotes)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if old != order.Status {
		m.recordTransition(old, order.Status)
		m.notifyStatusChanged(ctx, order, old)
	}
	return order, nil
}

// UpdateOrderStatus is the status-only form of AdminUpdateOrder.
func (m *OrderStatusMachine) UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	return m.AdminUpdateOrder(ctx, id, AdminUpdate{Status: status})
}

// transition runs mutate against the locked order and reports the status it held before.
func (m *OrderStatusMachine) transition(ctx context.Context, op string, id int64, mutate repository.OrderMutation) (*model.Order, model.OrderStatus, error) {
	ctx, span := tracer.Start(ctx, "order."+op, trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	var old model.OrderStatus
	order, err := m.orders.Update(ctx, id, func(o *model.Order) error {
		old = o.Status
		return mutate(o)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" rejected")
		return nil, "", err
	}
	span.SetAttributes(
		attribute.String("order.status.old", string(old)),
		attribute.String("order.status.new", string(order.Status)),
	)
	return order, old, nil
}

func (m *OrderStatusMachine) notifyStatusChanged(ctx context.Context, order *model.Order, old model.OrderStatus) {
	if _, err := m.notifier.StatusChanged(ctx, order, old, order.Status); err != nil {
		m.fanoutFailed(order, "status notification", err)
	}
}

func (m *OrderStatusMachine) recordTransition(from, to model.OrderStatus) {
	m.metrics.StatusTransition(string(from), string(to))
}

func (m *OrderStatusMachine) fanoutFailed(order *model.Order, what string, err error) {
	m.metrics.FanoutFailure("notification")
	m.logger.Error(what+" failed",
		slog.Int64("order_id", order.ID),
		slog.String("status", string(order.Status)),
		slog.String("error", err.Error()),
	)
}

// estimatedDelivery returns today plus the delivery window, truncated to midnight UTC.
func (m *OrderStatusMachine) estimatedDelivery() time.Time {
	now := m.clock().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, m.deliveryDays)
}

func invalidState(op string, from, to model.OrderStatus) error {
	return &domainErrors.InvalidStateError{Op: op, From: string(from), To: string(to)}
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

func emptyToNil(v *string) *string {
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}
