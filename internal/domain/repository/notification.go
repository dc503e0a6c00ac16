package repository

import (
	"context"

	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
)

// NotificationRepository stores append-only notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification model.Notification) (*model.Notification, error)
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]model.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	MarkRead(ctx context.Context, recipientID string, id int64) (*model.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
}
