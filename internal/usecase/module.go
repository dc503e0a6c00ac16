package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/luisbfsousa/mect-sub001/internal/config"
	"github.com/luisbfsousa/mect-sub001/internal/domain/repository"
	"github.com/luisbfsousa/mect-sub001/internal/metrics"
)

// Module provides core business use cases to the fx container.
var Module = fx.Options(
	fx.Provide(
		NewNotificationDispatcher,
		NewInventoryMonitor,
		NewIdentityService,
		NewCatalogService,
		NewOrderCreationService,
		newOrderStatusMachine,
	),
	fx.Provide(
		func(d *NotificationDispatcher) StockAlerter { return d },
		func(d *NotificationDispatcher) StatusNotifier { return d },
		func(m *InventoryMonitor) StockEvaluator { return m },
		func(s *IdentityService) CustomerRegistry { return s },
	),
)

type statusMachineParams struct {
	fx.In

	Orders   repository.OrderRepository
	Notifier StatusNotifier
	Config   *config.Config
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

func newOrderStatusMachine(p statusMachineParams) *OrderStatusMachine {
	return NewOrderStatusMachine(p.Orders, p.Notifier, p.Config.EstimatedDeliveryDays, p.Metrics, p.Logger)
}
