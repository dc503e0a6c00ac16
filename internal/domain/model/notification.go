package model

import "time"

// NotificationType tags what triggered a notification.
type NotificationType string

const (
	NotificationOrderStatus      NotificationType = "order_status"
	NotificationPaymentConfirmed NotificationType = "payment_confirmed"
	NotificationDeliveryNotice   NotificationType = "delivery_notice"
	NotificationLowStock         NotificationType = "low_stock"
	NotificationOutOfStock       NotificationType = "out_of_stock"
)

// Notification is a persisted, recipient-addressed message.
type Notification struct {
	ID          int64
	RecipientID string
	OrderID     *int64
	Title       string
	Message     string
	Type        NotificationType
	Read        bool
	CreatedAt   time.Time
}
