package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainErrors "github.com/luisbfsousa/mect-sub001/internal/domain/errors"
	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
	"github.com/luisbfsousa/mect-sub001/internal/domain/repository"
	"github.com/luisbfsousa/mect-sub001/internal/identity"
	"github.com/luisbfsousa/mect-sub001/internal/metrics"
)

// NotificationDispatcher composes and persists recipient-addressed notifications.
type NotificationDispatcher struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	policy        identity.Policy
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// NewNotificationDispatcher constructs NotificationDispatcher.
func NewNotificationDispatcher(
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	policy identity.Policy,
	m *metrics.Metrics,
	logger *slog.Logger,
) *NotificationDispatcher {
	return &NotificationDispatcher{notifications: notifications, users: users, policy: policy, metrics: m, logger: logger}
}

// Create persists one notification for recipientID.
func (d *NotificationDispatcher) Create(ctx context.Context, recipientID string, orderID *int64, title, message string, kind model.NotificationType) (*model.Notification, error) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return nil, domainErrors.NewValidationError("recipient", "must not be empty")
	}
	if strings.TrimSpace(title) == "" {
		return nil, domainErrors.NewValidationError("title", "must not be empty")
	}

	created, err := d.notifications.Create(ctx, model.Notification{
		RecipientID: recipientID,
		OrderID:     orderID,
		Title:       title,
		Message:     message,
		Type:        kind,
	})
	if err != nil {
		return nil, err
	}
	d.metrics.NotificationCreated(string(kind))
	return created, nil
}

// StatusChanged notifies the order's customer about a status change.
func (d *NotificationDispatcher) StatusChanged(ctx context.Context, order *model.Order, oldStatus, newStatus model.OrderStatus) (*model.Notification, error) {
	customer, err := d.users.GetByID(ctx, order.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("resolve customer %s: %w", order.CustomerID, err)
	}
	title, message := composeStatusMessage(order, oldStatus, newStatus)
	return d.Create(ctx, customer.ID, &order.ID, title, message, model.NotificationOrderStatus)
}

// PaymentConfirmed notifies the order's customer that payment went through.
func (d *NotificationDispatcher) PaymentConfirmed(ctx context.Context, order *model.Order) (*model.Notification, error) {
	customer, err := d.users.GetByID(ctx, order.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("resolve customer %s: %w", order.CustomerID, err)
	}
	message := fmt.Sprintf("Payment for order #%d (total %s) has been confirmed. Your order is now being processed.",
		order.ID, order.TotalAmount.StringFixed(2))
	message += trackingSuffix(order)
	return d.Create(ctx, customer.ID, &order.ID, "Payment confirmed", message, model.NotificationPaymentConfirmed)
}

// DeliveryNoticeToStaff tells every staff-class user that an order was delivered.
func (d *NotificationDispatcher) DeliveryNoticeToStaff(ctx context.Context, order *model.Order) ([]model.Notification, error) {
	message := fmt.Sprintf("Order #%d for customer %s has been confirmed as delivered.", order.ID, order.CustomerID)
	return d.fanOut(ctx, d.policy.StaffRecipientRoles(), &order.ID, "Order delivered", message, model.NotificationDeliveryNotice)
}

// LowStock alerts administrators that product is at or below its threshold.
func (d *NotificationDispatcher) LowStock(ctx context.Context, product *model.Product) ([]model.Notification, error) {
	message := fmt.Sprintf("Product %q (ID %d) is running low: %d units left (threshold %d).",
		product.Name, product.ID, product.Stock(), product.Threshold())
	return d.fanOut(ctx, d.policy.AlertRecipientRoles(), nil, "Low stock alert", message, model.NotificationLowStock)
}

// OutOfStock alerts administrators that product has no stock left.
func (d *NotificationDispatcher) OutOfStock(ctx context.Context, product *model.Product) ([]model.Notification, error) {
	message := fmt.Sprintf("Product %q (ID %d) is out of stock.", product.Name, product.ID)
	return d.fanOut(ctx, d.policy.AlertRecipientRoles(), nil, "Out of stock alert", message, model.NotificationOutOfStock)
}

// fanOut creates one notification per user holding any of roles. A failed create does not stop
// the remaining recipients; failures are joined into the returned error.
func (d *NotificationDispatcher) fanOut(ctx context.Context, roles []model.Role, orderID *int64, title, message string, kind model.NotificationType) ([]model.Notification, error) {
	recipients, err := d.users.FindByRoleIn(ctx, roles)
	if err != nil {
		return nil, fmt.Errorf("resolve %s recipients: %w", kind, err)
	}
	if len(recipients) == 0 {
		d.logger.Info("no recipients for notification", slog.String("type", string(kind)))
		return nil, nil
	}

	created := make([]model.Notification, 0, len(recipients))
	var errs []error
	for _, user := range recipients {
		n, err := d.Create(ctx, user.ID, orderID, title, message, kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", user.ID, err))
			continue
		}
		created = append(created, *n)
	}
	return created, errors.Join(errs...)
}

// List returns recipient notifications newest first.
func (d *NotificationDispatcher) List(ctx context.Context, recipientID string, unreadOnly bool) ([]model.Notification, error) {
	return d.notifications.ListByRecipient(ctx, recipientID, unreadOnly)
}

// UnreadCount returns the number of unread notifications for recipient.
func (d *NotificationDispatcher) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	return d.notifications.CountUnread(ctx, recipientID)
}

// MarkRead flags one notification as read. Only its recipient may do so.
func (d *NotificationDispatcher) MarkRead(ctx context.Context, recipientID string, id int64) (*model.Notification, error) {
	return d.notifications.MarkRead(ctx, recipientID, id)
}

// MarkAllRead flags every unread notification of recipient as read.
func (d *NotificationDispatcher) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	return d.notifications.MarkAllRead(ctx, recipientID)
}

var statusTemplates = map[model.OrderStatus]struct {
	title   string
	message string
}{
	model.OrderStatusPending:    {"Order received", "Your order #%d has been received and is awaiting payment."},
	model.OrderStatusProcessing: {"Order processing", "Your order #%d is now being processed."},
	model.OrderStatusShipped:    {"Order shipped", "Your order #%d has been shipped."},
	model.OrderStatusDelivered:  {"Order delivered", "Your order #%d has been delivered. Thank you for shopping with us."},
	model.OrderStatusCancelled:  {"Order cancelled", "Your order #%d has been cancelled."},
}

func composeStatusMessage(order *model.Order, oldStatus, newStatus model.OrderStatus) (string, string) {
	var title, message string
	if tpl, ok := statusTemplates[newStatus]; ok {
		title = tpl.title
		message = fmt.Sprintf(tpl.message, order.ID)
	} else {
		title = "Order updated"
		message = fmt.Sprintf("Your order #%d status changed from %s to %s.", order.ID, oldStatus, newStatus)
	}

	message += trackingSuffix(order)
	if newStatus == model.OrderStatusShipped && order.EstimatedDeliveryDate != nil {
		message += fmt.Sprintf(" Expected delivery: %s.", order.EstimatedDeliveryDate.Format("2006-01-02"))
	}
	return title, message
}

func trackingSuffix(order *model.Order) string {
	if order.TrackingNumber == nil || *order.TrackingNumber == "" {
		return ""
	}
	suffix := " Tracking number: " + *order.TrackingNumber
	if order.ShippingProvider != nil && *order.ShippingProvider != "" {
		suffix += " (" + *order.ShippingProvider + ")"
	}
	return suffix + "."
}
