// Package storage selects the persistence driver and exposes its repositories to fx.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/luisbfsousa/mect-sub001/internal/config"
	"github.com/luisbfsousa/mect-sub001/internal/domain/repository"
	"github.com/luisbfsousa/mect-sub001/internal/storage/memory"
	"github.com/luisbfsousa/mect-sub001/internal/storage/postgres"
)

// Module wires the configured storage driver and repository adapters.
var Module = fx.Options(
	fx.Provide(newFactory),
	fx.Provide(
		func(f repository.Factory) repository.UserRepository { return f.Users() },
		func(f repository.Factory) repository.OrderRepository { return f.Orders() },
		func(f repository.Factory) repository.ProductRepository { return f.Products() },
		func(f repository.Factory) repository.NotificationRepository { return f.Notifications() },
	),
	fx.Invoke(registerLifecycle),
)

type factoryParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

var openPostgres = func(ctx context.Context, dsn string, logger *slog.Logger) (repository.Factory, error) {
	return postgres.New(ctx, dsn, logger)
}

func newFactory(p factoryParams) (repository.Factory, error) {
	switch p.Config.StorageDriver {
	case config.StorageDriverMemory:
		p.Logger.Warn("using in-memory storage, state is lost on restart")
		return memory.New(), nil
	case config.StorageDriverPostgres, "":
		return openPostgres(p.Ctx, p.Config.DatabaseURI, p.Logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", p.Config.StorageDriver)
	}
}

func registerLifecycle(lc fx.Lifecycle, factory repository.Factory, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := factory.HealthCheck(ctx); err != nil {
				return fmt.Errorf("storage health check: %w", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			factory.Close()
			logger.Info("storage closed")
			return nil
		},
	})
}
