package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/luisbfsousa/mect-sub001/internal/domain/errors"
	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
)

const notificationColumns = `id, recipient_id, order_id, title, message, type, is_read, created_at`

func scanNotification(row scanner) (*model.Notification, error) {
	var n model.Notification
	if err := row.Scan(&n.ID, &n.RecipientID, &n.OrderID, &n.Title, &n.Message, &n.Type, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) Create(ctx context.Context, n model.Notification) (*model.Notification, error) {
	const query = `INSERT INTO notifications (recipient_id, order_id, title, message, type) VALUES ($1, $2, $3, $4, $5)
                   RETURNING id, created_at`
	err := r.storage.pool.QueryRow(ctx, query, n.RecipientID, n.OrderID, n.Title, n.Message, n.Type).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == foreignKeyViolation {
			return nil, domainErrors.NewNotFoundError("user", n.RecipientID)
		}
		return nil, wrap("create notification", err)
	}
	n.Read = false
	return &n, nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]model.Notification, error) {
	const query = `SELECT ` + notificationColumns + ` FROM notifications
                   WHERE recipient_id=$1 AND ($2 = FALSE OR is_read = FALSE)
                   ORDER BY created_at DESC, id DESC`
	rows, err := r.storage.pool.Query(ctx, query, recipientID, unreadOnly)
	if err != nil {
		return nil, wrap("list notifications", err)
	}
	defer rows.Close()

	var result []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, wrap("scan notification", err)
		}
		result = append(result, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list notifications", err)
	}
	return result, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE recipient_id=$1 AND is_read = FALSE`
	var count int
	if err := r.storage.pool.QueryRow(ctx, query, recipientID).Scan(&count); err != nil {
		return 0, wrap("count unread", err)
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, recipientID string, id int64) (*model.Notification, error) {
	const query = `UPDATE notifications SET is_read = TRUE WHERE id=$1 AND recipient_id=$2 RETURNING ` + notificationColumns
	n, err := scanNotification(r.storage.pool.QueryRow(ctx, query, id, recipientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.NewNotFoundError("notification", id)
		}
		return nil, wrap("mark read", err)
	}
	return n, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	const query = `UPDATE notifications SET is_read = TRUE WHERE recipient_id=$1 AND is_read = FALSE`
	tag, err := r.storage.pool.Exec(ctx, query, recipientID)
	if err != nil {
		return 0, wrap("mark all read", err)
	}
	return int(tag.RowsAffected()), nil
}
