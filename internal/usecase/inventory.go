package usecase

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
	"github.com/luisbfsousa/mect-sub001/internal/metrics"
)

// StockLevel classifies a product's stock against its threshold.
type StockLevel int

const (
	StockHealthy StockLevel = iota
	StockLow
	StockOut
)

func (l StockLevel) String() string {
	switch l {
	case StockLow:
		return "low_stock"
	case StockOut:
		return "out_of_stock"
	}
	return "healthy"
}

// ClassifyStock maps stock to a level. Stock at or below zero is out, stock at or below the
// threshold is low.
func ClassifyStock(product *model.Product) StockLevel {
	switch {
	case product.StockQuantity <= 0:
		return StockOut
	case product.StockQuantity <= product.Threshold():
		return StockLow
	}
	return StockHealthy
}

// StockAlerter fans stock alerts out to the alert recipients.
type StockAlerter interface {
	LowStock(ctx context.Context, product *model.Product) ([]model.Notification, error)
	OutOfStock(ctx context.Context, product *model.Product) ([]model.Notification, error)
}

// InventoryMonitor turns post-mutation stock levels into alerts.
type InventoryMonitor struct {
	alerter StockAlerter
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewInventoryMonitor constructs InventoryMonitor.
func NewInventoryMonitor(alerter StockAlerter, m *metrics.Metrics, logger *slog.Logger) *InventoryMonitor {
	return &InventoryMonitor{alerter: alerter, metrics: m, logger: logger}
}

// Evaluate raises at most one alert kind for product. Every qualifying evaluation alerts again.
// Failures are logged and never reach the caller.
func (m *InventoryMonitor) Evaluate(ctx context.Context, product *model.Product) {
	ctx, span := tracer.Start(ctx, "inventory.evaluate", trace.WithAttributes(
		attribute.Int64("product.id", product.ID),
		attribute.Int("product.stock", product.StockQuantity),
	))
	defer span.End()

	level := ClassifyStock(product)
	span.SetAttributes(attribute.String("stock.level", level.String()))

	var err error
	switch level {
	case StockOut:
		_, err = m.alerter.OutOfStock(ctx, product)
	case StockLow:
		_, err = m.alerter.LowStock(ctx, product)
	default:
		return
	}
	m.metrics.StockAlert(level.String())

	if err != nil {
		m.metrics.FanoutFailure("inventory")
		span.RecordError(err)
		m.logger.Error("stock alert failed",
			slog.Int64("product_id", product.ID),
			slog.String("level", level.String()),
			slog.String("error", err.Error()),
		)
	}
}
