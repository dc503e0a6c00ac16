package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/luisbfsousa/mect-sub001/internal/domain/errors"
	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
)

var (
	orderRowColumns = []string{
		"id", "customer_id", "status", "total_amount", "tax_amount", "shipping_cost", "shipping_address", "billing_address",
		"tracking_number", "shipping_provider", "estimated_delivery_date", "payment_confirmed_at", "customer_notes",
		"admin_notes", "created_at", "updated_at",
	}
	itemRowColumns = []string{"id", "order_id", "product_id", "quantity", "unit_price", "subtotal"}
	addressJSON    = []byte(`{"full_name":"Ana Silva","line1":"Rua 1","city":"Lisbon","postal_code":"1000","country":"PT"}`)
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func addOrderRow(rows *pgxmockv3.Rows, id int64, status model.OrderStatus, tracking *string) *pgxmockv3.Rows {
	now := time.Now()
	return rows.AddRow(id, "cust-1", status, dec("22.00"), dec("0.00"), dec("2.00"), addressJSON, addressJSON,
		tracking, nil, nil, nil, nil, nil, now, now)
}

func itemRows(orderID int64) *pgxmockv3.Rows {
	return pgxmockv3.NewRows(itemRowColumns).
		AddRow(int64(1), orderID, int64(1), 2, dec("10.00"), dec("20.00"))
}

func newReservationOrder() *model.Order {
	return &model.Order{
		CustomerID:      "cust-1",
		Status:          model.OrderStatusPending,
		TotalAmount:     dec("22.00"),
		TaxAmount:       decimal.Zero,
		ShippingCost:    dec("2.00"),
		ShippingAddress: model.Address{FullName: "Ana Silva", City: "Lisbon"},
		BillingAddress:  model.Address{FullName: "Ana Silva", City: "Lisbon"},
		Items:           []model.OrderItem{model.NewOrderItem(1, 2, dec("10.00"))},
	}
}

func TestOrderRepositoryCreateWithReservation(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE products SET stock_quantity = stock_quantity -").WithArgs(2, int64(1)).WillReturnRows(
		pgxmockv3.NewRows([]string{"stock_quantity"}).AddRow(1))
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs("cust-1", model.OrderStatusPending, "22.00", "0.00", "2.00", pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg()).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))
	mock.ExpectQuery("INSERT INTO order_items").WithArgs(int64(7), int64(1), 2, "10.00", "20.00").WillReturnRows(
		pgxmockv3.NewRows([]string{"id"}).AddRow(int64(70)))
	mock.ExpectCommit()

	order, err := repo.CreateWithReservation(context.Background(), newReservationOrder())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != 7 || order.Items[0].ID != 70 || order.Items[0].OrderID != 7 {
		t.Fatalf("unexpected order %+v", order)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryCreateWithReservationLocksInProductOrder(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	order := newReservationOrder()
	order.Items = []model.OrderItem{
		model.NewOrderItem(5, 1, dec("1.00")),
		model.NewOrderItem(2, 1, dec("1.00")),
		model.NewOrderItem(5, 2, dec("1.00")),
	}

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE products SET stock_quantity = stock_quantity -").WithArgs(1, int64(2)).WillReturnRows(
		pgxmockv3.NewRows([]string{"stock_quantity"}).AddRow(9))
	mock.ExpectQuery("UPDATE products SET stock_quantity = stock_quantity -").WithArgs(3, int64(5)).WillReturnRows(
		pgxmockv3.NewRows([]string{"stock_quantity"}).AddRow(0))
	mock.ExpectQuery("INSERT INTO orders").WithArgs(anyArgs(8)...).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(8), now, now))
	for i, productID := range []int64{5, 2, 5} {
		mock.ExpectQuery("INSERT INTO order_items").
			WithArgs(int64(8), productID, pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg()).
			WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(80 + i)))
	}
	mock.ExpectCommit()

	if _, err := repo.CreateWithReservation(context.Background(), order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryCreateWithReservationRollsBack(t *testing.T) {
	t.Run("insufficient stock", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		repo := &orderRepository{storage: storage}

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE products SET stock_quantity = stock_quantity -").WithArgs(2, int64(1)).WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery("SELECT stock_quantity FROM products WHERE id=").WithArgs(int64(1)).WillReturnRows(
			pgxmockv3.NewRows([]string{"stock_quantity"}).AddRow(1))
		mock.ExpectRollback()

		_, err := repo.CreateWithReservation(context.Background(), newReservationOrder())
		var stockErr *domainErrors.InsufficientStockError
		if !errors.As(err, &stockErr) || stockErr.ProductID != 1 || stockErr.Requested != 2 || stockErr.Available != 1 {
			t.Fatalf("expected insufficient stock, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations not met: %v", err)
		}
	})

	t.Run("missing product", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		repo := &orderRepository{storage: storage}

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE products SET stock_quantity = stock_quantity -").WithArgs(2, int64(1)).WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery("SELECT stock_quantity FROM products WHERE id=").WithArgs(int64(1)).WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		if _, err := repo.CreateWithReservation(context.Background(), newReservationOrder()); !errors.Is(err, domainErrors.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations not met: %v", err)
		}
	})

	t.Run("unknown customer", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		repo := &orderRepository{storage: storage}

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE products SET stock_quantity = stock_quantity -").WithArgs(2, int64(1)).WillReturnRows(
			pgxmockv3.NewRows([]string{"stock_quantity"}).AddRow(1))
		mock.ExpectQuery("INSERT INTO orders").WithArgs(anyArgs(8)...).WillReturnError(&pgconn.PgError{Code: foreignKeyViolation})
		mock.ExpectRollback()

		if _, err := repo.CreateWithReservation(context.Background(), newReservationOrder()); !errors.Is(err, domainErrors.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations not met: %v", err)
		}
	})

	t.Run("item insert failure", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		repo := &orderRepository{storage: storage}
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE products SET stock_quantity = stock_quantity -").WithArgs(2, int64(1)).WillReturnRows(
			pgxmockv3.NewRows([]string{"stock_quantity"}).AddRow(1))
		mock.ExpectQuery("INSERT INTO orders").WithArgs(anyArgs(8)...).WillReturnRows(
			pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))
		mock.ExpectQuery("INSERT INTO order_items").WithArgs(anyArgs(5)...).WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		if _, err := repo.CreateWithReservation(context.Background(), newReservationOrder()); !errors.Is(err, domainErrors.ErrTransient) {
			t.Fatalf("expected transient error, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations not met: %v", err)
		}
	})
}

func TestOrderRepositoryGetByID(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	tracking := "TRK1"
	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id=").WithArgs(int64(7)).WillReturnRows(
		addOrderRow(pgxmockv3.NewRows(orderRowColumns), 7, model.OrderStatusShipped, &tracking))
	mock.ExpectQuery("SELECT (.+) FROM order_items WHERE order_id = ANY").WithArgs([]int64{7}).WillReturnRows(itemRows(7))

	order, err := repo.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != model.OrderStatusShipped || *order.TrackingNumber != "TRK1" || order.ShippingAddress.City != "Lisbon" {
		t.Fatalf("unexpected order %+v", order)
	}
	if len(order.Items) != 1 || !order.Items[0].Subtotal.Equal(dec("20")) {
		t.Fatalf("unexpected items %+v", order.Items)
	}

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id=").WithArgs(int64(8)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), 8); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id=").WithArgs(int64(9)).WillReturnRows(
		pgxmockv3.NewRows(orderRowColumns).AddRow(int64(9), "cust-1", model.OrderStatusPending, dec("1"), dec("0"), dec("0"),
			[]byte("not json"), addressJSON, nil, nil, nil, nil, nil, nil, now, now))
	if _, err := repo.GetByID(context.Background(), 9); err == nil {
		t.Fatal("expected decode error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListByCustomer(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	rows := pgxmockv3.NewRows(orderRowColumns)
	addOrderRow(rows, 8, model.OrderStatusPending, nil)
	addOrderRow(rows, 7, model.OrderStatusDelivered, nil)
	mock.ExpectQuery("SELECT (.+) FROM orders WHERE customer_id=").WithArgs("cust-1").WillReturnRows(rows)
	mock.ExpectQuery("SELECT (.+) FROM order_items WHERE order_id = ANY").WithArgs([]int64{8, 7}).WillReturnRows(itemRows(7))

	orders, err := repo.ListByCustomer(context.Background(), "cust-1")
	if err != nil || len(orders) != 2 {
		t.Fatalf("unexpected result %v err=%v", orders, err)
	}
	if len(orders[0].Items) != 0 || len(orders[1].Items) != 1 {
		t.Fatalf("items attached to the wrong order: %+v", orders)
	}

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE customer_id=").WithArgs("nobody").WillReturnRows(pgxmockv3.NewRows(orderRowColumns))
	orders, err = repo.ListByCustomer(context.Background(), "nobody")
	if err != nil || len(orders) != 0 {
		t.Fatalf("expected empty result, got %v err=%v", orders, err)
	}

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE customer_id=").WithArgs("err").WillReturnError(errors.New("query"))
	if _, err := repo.ListByCustomer(context.Background(), "err"); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListByCustomerRowsError(t *testing.T) {
	storage := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows err")}}}
	repo := &orderRepository{storage: storage}

	if _, err := repo.ListByCustomer(context.Background(), "cust-1"); err == nil || !errors.Is(err, domainErrors.ErrTransient) {
		t.Fatalf("expected transient rows err, got %v", err)
	}
}

func TestOrderRepositoryUpdate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	updatedAt := time.Now().Add(time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id=(.+) FOR UPDATE").WithArgs(int64(7)).WillReturnRows(
		addOrderRow(pgxmockv3.NewRows(orderRowColumns), 7, model.OrderStatusProcessing, nil))
	mock.ExpectQuery("SELECT (.+) FROM order_items WHERE order_id = ANY").WithArgs([]int64{7}).WillReturnRows(itemRows(7))
	mock.ExpectQuery("UPDATE orders SET status=").
		WithArgs(model.OrderStatusShipped, pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), int64(7)).
		WillReturnRows(pgxmockv3.NewRows([]string{"updated_at"}).AddRow(updatedAt))
	mock.ExpectCommit()

	var seen model.OrderStatus
	order, err := repo.Update(context.Background(), 7, func(o *model.Order) error {
		seen = o.Status
		tracking := "TRK1"
		o.Status = model.OrderStatusShipped
		o.TrackingNumber = &tracking
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != model.OrderStatusProcessing || order.Status != model.OrderStatusShipped || !order.UpdatedAt.Equal(updatedAt) {
		t.Fatalf("unexpected update result seen=%s order=%+v", seen, order)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected items to be loaded, got %+v", order.Items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryUpdateRollsBack(t *testing.T) {
	t.Run("mutation rejected", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		repo := &orderRepository{storage: storage}

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM orders WHERE id=(.+) FOR UPDATE").WithArgs(int64(7)).WillReturnRows(
			addOrderRow(pgxmockv3.NewRows(orderRowColumns), 7, model.OrderStatusDelivered, nil))
		mock.ExpectQuery("SELECT (.+) FROM order_items WHERE order_id = ANY").WithArgs([]int64{7}).WillReturnRows(itemRows(7))
		mock.ExpectRollback()

		rejected := &domainErrors.InvalidStateError{Op: "cancel", From: "delivered", To: "cancelled"}
		_, err := repo.Update(context.Background(), 7, func(*model.Order) error { return rejected })
		if !errors.Is(err, domainErrors.ErrInvalidState) {
			t.Fatalf("expected invalid state, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations not met: %v", err)
		}
	})

	t.Run("missing order", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		repo := &orderRepository{storage: storage}

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM orders WHERE id=(.+) FOR UPDATE").WithArgs(int64(9)).WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.Update(context.Background(), 9, func(*model.Order) error {
			t.Fatal("mutation must not run for a missing order")
			return nil
		})
		if !errors.Is(err, domainErrors.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations not met: %v", err)
		}
	})
}
