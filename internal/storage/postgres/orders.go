package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/luisbfsousa/mect-sub001/internal/domain/errors"
	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
	"github.com/luisbfsousa/mect-sub001/internal/domain/repository"
)

const orderColumns = `id, customer_id, status, total_amount, tax_amount, shipping_cost, shipping_address, billing_address,
                      tracking_number, shipping_provider, estimated_delivery_date, payment_confirmed_at, customer_notes,
                      admin_notes, created_at, updated_at`

const itemColumns = `id, order_id, product_id, quantity, unit_price, subtotal`

func scanOrder(row scanner) (*model.Order, error) {
	var (
		o                 model.Order
		shipping, billing []byte
	)
	err := row.Scan(&o.ID, &o.CustomerID, &o.Status, &o.TotalAmount, &o.TaxAmount, &o.ShippingCost, &shipping, &billing,
		&o.TrackingNumber, &o.ShippingProvider, &o.EstimatedDeliveryDate, &o.PaymentConfirmedAt, &o.CustomerNotes,
		&o.AdminNotes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(shipping, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	if err := json.Unmarshal(billing, &o.BillingAddress); err != nil {
		return nil, fmt.Errorf("decode billing address: %w", err)
	}
	return &o, nil
}

func (r *orderRepository) CreateWithReservation(ctx context.Context, order *model.Order) (*model.Order, error) {
	shipping, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("encode shipping address: %w", err)
	}
	billing, err := json.Marshal(order.BillingAddress)
	if err != nil {
		return nil, fmt.Errorf("encode billing address: %w", err)
	}

	created := *order
	created.Items = append([]model.OrderItem(nil), order.Items...)

	err = r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if err := reserveStock(ctx, tx, created.Items); err != nil {
			return err
		}

		const insertOrder = `INSERT INTO orders (customer_id, status, total_amount, tax_amount, shipping_cost,
                                 shipping_address, billing_address, customer_notes)
                             VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                             RETURNING id, created_at, updated_at`
		err := tx.QueryRow(ctx, insertOrder, created.CustomerID, created.Status,
			created.TotalAmount.StringFixed(2), created.TaxAmount.StringFixed(2), created.ShippingCost.StringFixed(2),
			shipping, billing, created.CustomerNotes,
		).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
		if err != nil {
			if pgErrorCode(err) == foreignKeyViolation {
				return domainErrors.NewNotFoundError("user", created.CustomerID)
			}
			return err
		}

		const insertItem = `INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
                            VALUES ($1, $2, $3, $4, $5) RETURNING id`
		for i := range created.Items {
			item := &created.Items[i]
			item.OrderID = created.ID
			err := tx.QueryRow(ctx, insertItem, created.ID, item.ProductID, item.Quantity,
				item.UnitPrice.StringFixed(2), item.Subtotal.StringFixed(2)).Scan(&item.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrap("create order", err)
	}
	return &created, nil
}

// reserveStock decrements stock per product in ascending id order so concurrent reservations
// lock rows in the same sequence. A decrement that would go negative matches no row.
func reserveStock(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	requested := make(map[int64]int, len(items))
	for _, item := range items {
		requested[item.ProductID] += item.Quantity
	}
	ids := make([]int64, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	const decrement = `UPDATE products SET stock_quantity = stock_quantity - $1, updated_at=NOW()
                       WHERE id=$2 AND stock_quantity >= $1
                       RETURNING stock_quantity`
	for _, id := range ids {
		var remaining int
		err := tx.QueryRow(ctx, decrement, requested[id], id).Scan(&remaining)
		if err == nil {
			continue
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return stockShortage(ctx, tx, id, requested[id])
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.NewNotFoundError("order", id)
		}
		return nil, wrap("get order", err)
	}

	items, err := loadItems(ctx, r.storage.pool, []int64{id})
	if err != nil {
		return nil, wrap("get order items", err)
	}
	order.Items = items[id]
	return order, nil
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE customer_id=$1 ORDER BY created_at DESC, id DESC`
	rows, err := r.storage.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, wrap("list orders", err)
	}
	defer rows.Close()

	var (
		result []model.Order
		ids    []int64
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, wrap("scan order", err)
		}
		result = append(result, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list orders", err)
	}
	if len(ids) == 0 {
		return result, nil
	}

	items, err := loadItems(ctx, r.storage.pool, ids)
	if err != nil {
		return nil, wrap("list order items", err)
	}
	for i := range result {
		result[i].Items = items[result[i].ID]
	}
	return result, nil
}

func (r *orderRepository) Update(ctx context.Context, id int64, mutate repository.OrderMutation) (*model.Order, error) {
	const lockQuery = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 FOR UPDATE`
	const updateQuery = `UPDATE orders SET status=$1, tracking_number=$2, shipping_provider=$3,
                             estimated_delivery_date=$4, payment_confirmed_at=$5, admin_notes=$6, updated_at=NOW()
                         WHERE id=$7
                         RETURNING updated_at`

	var result *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		current, err := scanOrder(tx.QueryRow(ctx, lockQuery, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.NewNotFoundError("order", id)
			}
			return err
		}
		items, err := loadItems(ctx, tx, []int64{id})
		if err != nil {
			return err
		}
		current.Items = items[id]

		if err := mutate(current); err != nil {
			return err
		}

		err = tx.QueryRow(ctx, updateQuery, current.Status, current.TrackingNumber, current.ShippingProvider,
			current.EstimatedDeliveryDate, current.PaymentConfirmedAt, current.AdminNotes, id,
		).Scan(&current.UpdatedAt)
		if err != nil {
			return err
		}
		result = current
		return nil
	})
	if err != nil {
		return nil, wrap("update order", err)
	}
	return result, nil
}

func loadItems(ctx context.Context, q querier, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	const query = `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = ANY($1) ORDER BY id`
	rows, err := q.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]model.OrderItem, len(orderIDs))
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return nil, err
		}
		result[item.OrderID] = append(result[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
