package telemetry

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/luisbfsousa/mect-sub001/internal/config"
)

// Module installs tracing for the lifetime of the application.
var Module = fx.Invoke(registerLifecycle)

func registerLifecycle(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) {
	var shutdown ShutdownFunc
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			fn, err := Setup(ctx, cfg)
			if err != nil {
				return err
			}
			shutdown = fn
			if cfg.OTLPEndpoint != "" {
				logger.Info("tracing enabled", slog.String("endpoint", cfg.OTLPEndpoint))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if shutdown == nil {
				return nil
			}
			return shutdown(ctx)
		},
	})
}
