package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/luisbfsousa/mect-sub001/internal/domain/errors"
	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
	"github.com/luisbfsousa/mect-sub001/internal/domain/repository"
	"github.com/luisbfsousa/mect-sub001/internal/identity"
	"github.com/luisbfsousa/mect-sub001/internal/metrics"
)

// CustomerRegistry makes sure the ordering identity exists locally.
type CustomerRegistry interface {
	EnsureCustomer(ctx context.Context, id identity.Identity) (*model.User, error)
}

// OrderCreationService validates purchases, snapshots prices and reserves stock atomically.
type OrderCreationService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	customers CustomerRegistry
	monitor   StockEvaluator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewOrderCreationService constructs OrderCreationService.
func NewOrderCreationService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	customers CustomerRegistry,
	monitor StockEvaluator,
	m *metrics.Metrics,
	logger *slog.Logger,
) *OrderCreationService {
	return &OrderCreationService{
		orders:    orders,
		products:  products,
		customers: customers,
		monitor:   monitor,
		metrics:   m,
		logger:    logger,
	}
}

// CreateOrder places a pending order for customer. Either the order, all of its items and every
// stock decrement are committed together, or nothing is.
func (s *OrderCreationService) CreateOrder(ctx context.Context, customer identity.Identity, in CreateOrderInput) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "order.create", trace.WithAttributes(
		attribute.String("customer.id", customer.Subject),
		attribute.Int("order.lines", len(in.Items)),
	))
	defer span.End()

	order, err := s.createOrder(ctx, customer, in)
	if err != nil {
		s.metrics.OrderRejected(rejectionReason(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "order rejected")
		return nil, err
	}
	span.SetAttributes(attribute.Int64("order.id", order.ID))
	s.metrics.OrderCreated()
	s.logger.Info("order created",
		slog.Int64("order_id", order.ID),
		slog.String("customer_id", order.CustomerID),
		slog.String("total", order.TotalAmount.StringFixed(2)),
	)

	s.evaluateStock(ctx, order)
	return order, nil
}

func (s *OrderCreationService) createOrder(ctx context.Context, customer identity.Identity, in CreateOrderInput) (*model.Order, error) {
	if customer.Subject == "" {
		return nil, domainErrors.NewValidationError("customer", "identity subject is required")
	}
	if err := validateOrderInput(in); err != nil {
		return nil, err
	}

	requested := make(map[int64]int, len(in.Items))
	for _, line := range in.Items {
		requested[line.ProductID] += line.Quantity
	}

	products := make(map[int64]*model.Product, len(requested))
	for _, line := range in.Items {
		if _, ok := products[line.ProductID]; ok {
			continue
		}
		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product.StockQuantity < requested[line.ProductID] {
			return nil, &domainErrors.InsufficientStockError{
				ProductID: product.ID,
				Requested: requested[line.ProductID],
				Available: product.Stock(),
			}
		}
		products[line.ProductID] = product
	}

	items := make([]model.OrderItem, 0, len(in.Items))
	for _, line := range in.Items {
		items = append(items, model.NewOrderItem(line.ProductID, line.Quantity, products[line.ProductID].Price))
	}

	billing := in.Shipping.ShippingAddress
	if in.Shipping.BillingAddress != nil {
		billing = *in.Shipping.BillingAddress
	}

	order := &model.Order{
		CustomerID:      customer.Subject,
		Status:          model.OrderStatusPending,
		TaxAmount:       in.Shipping.TaxAmount,
		ShippingCost:    in.Shipping.ShippingCost,
		ShippingAddress: in.Shipping.ShippingAddress,
		BillingAddress:  billing,
		CustomerNotes:   in.Notes,
		Items:           items,
	}
	order.TotalAmount = order.ItemsTotal().Add(order.TaxAmount).Add(order.ShippingCost)

	if !order.TotalAmount.Equal(in.ClientTotal) {
		s.logger.Warn("client total differs from computed total",
			slog.String("customer_id", customer.Subject),
			slog.String("client_total", in.ClientTotal.StringFixed(2)),
			slog.String("computed_total", order.TotalAmount.StringFixed(2)),
		)
	}

	// the order row references the customer, so the local record must exist first
	if _, err := s.customers.EnsureCustomer(ctx, customer); err != nil {
		return nil, err
	}

	return s.orders.CreateWithReservation(ctx, order)
}

// evaluateStock re-reads every affected product after commit. Failures only get logged.
func (s *OrderCreationService) evaluateStock(ctx context.Context, order *model.Order) {
	seen := make(map[int64]struct{}, len(order.Items))
	ids := make([]int64, 0, len(order.Items))
	for _, item := range order.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		product, err := s.products.FindByID(ctx, id)
		if err != nil {
			s.metrics.FanoutFailure("inventory")
			s.logger.Error("reload product after order",
				slog.Int64("order_id", order.ID),
				slog.Int64("product_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}
		s.monitor.Evaluate(ctx, product)
	}
}

// GetOrder returns one order with its items.
func (s *OrderCreationService) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListOrders returns customer orders newest first.
func (s *OrderCreationService) ListOrders(ctx context.Context, customerID string) ([]model.Order, error) {
	return s.orders.ListByCustomer(ctx, customerID)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domainErrors.ErrValidation):
		return "validation"
	case errors.Is(err, domainErrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, domainErrors.ErrInsufficientStock):
		return "insufficient_stock"
	}
	return "internal"
}
