package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/luisbfsousa/mect-sub001/internal/domain/errors"
	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
)

var notificationRowColumns = []string{"id", "recipient_id", "order_id", "title", "message", "type", "is_read", "created_at"}

func TestNotificationRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &notificationRepository{storage: storage}

	now := time.Now()
	orderID := int64(7)
	n := model.Notification{RecipientID: "u1", OrderID: &orderID, Title: "Order shipped", Message: "TRK1", Type: model.NotificationOrderStatus}

	mock.ExpectQuery("INSERT INTO notifications").WithArgs("u1", &orderID, "Order shipped", "TRK1", model.NotificationOrderStatus).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))
	created, err := repo.Create(context.Background(), n)
	if err != nil || created.ID != 1 || created.Read {
		t.Fatalf("unexpected notification %+v err=%v", created, err)
	}

	mock.ExpectQuery("INSERT INTO notifications").WithArgs(anyArgs(5)...).WillReturnError(&pgconn.PgError{Code: foreignKeyViolation})
	if _, err := repo.Create(context.Background(), n); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO notifications").WithArgs(anyArgs(5)...).WillReturnError(errors.New("insert"))
	if _, err := repo.Create(context.Background(), n); !errors.Is(err, domainErrors.ErrTransient) {
		t.Fatalf("expected transient, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestNotificationRepositoryListAndCount(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &notificationRepository{storage: storage}

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM notifications WHERE recipient_id=").WithArgs("u1", true).WillReturnRows(
		pgxmockv3.NewRows(notificationRowColumns).
			AddRow(int64(2), "u1", nil, "Low stock alert", "Mug", model.NotificationLowStock, false, now).
			AddRow(int64(1), "u1", nil, "Out of stock alert", "Mug", model.NotificationOutOfStock, false, now.Add(-time.Minute)))
	list, err := repo.ListByRecipient(context.Background(), "u1", true)
	if err != nil || len(list) != 2 || list[0].ID != 2 || list[0].OrderID != nil {
		t.Fatalf("unexpected list %+v err=%v", list, err)
	}

	mock.ExpectQuery("SELECT (.+) FROM notifications WHERE recipient_id=").WithArgs("u1", false).WillReturnError(errors.New("query"))
	if _, err := repo.ListByRecipient(context.Background(), "u1", false); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery("SELECT COUNT").WithArgs("u1").WillReturnRows(pgxmockv3.NewRows([]string{"count"}).AddRow(3))
	count, err := repo.CountUnread(context.Background(), "u1")
	if err != nil || count != 3 {
		t.Fatalf("unexpected count %d err=%v", count, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestNotificationRepositoryMarkRead(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &notificationRepository{storage: storage}

	now := time.Now()
	mock.ExpectQuery("UPDATE notifications SET is_read = TRUE WHERE id=").WithArgs(int64(1), "u1").WillReturnRows(
		pgxmockv3.NewRows(notificationRowColumns).AddRow(int64(1), "u1", nil, "t", "m", model.NotificationLowStock, true, now))
	n, err := repo.MarkRead(context.Background(), "u1", 1)
	if err != nil || !n.Read {
		t.Fatalf("unexpected notification %+v err=%v", n, err)
	}

	mock.ExpectQuery("UPDATE notifications SET is_read = TRUE WHERE id=").WithArgs(int64(1), "u2").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.MarkRead(context.Background(), "u2", 1); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("UPDATE notifications SET is_read = TRUE WHERE recipient_id=").WithArgs("u1").WillReturnResult(pgxmockv3.NewResult("UPDATE", 4))
	updated, err := repo.MarkAllRead(context.Background(), "u1")
	if err != nil || updated != 4 {
		t.Fatalf("unexpected result %d err=%v", updated, err)
	}

	mock.ExpectExec("UPDATE notifications SET is_read = TRUE WHERE recipient_id=").WithArgs("u1").WillReturnError(errors.New("exec"))
	if _, err := repo.MarkAllRead(context.Background(), "u1"); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
