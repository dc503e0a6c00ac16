package di

import (
	"log/slog"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/luisbfsousa/mect-sub001/internal/app"
	"github.com/luisbfsousa/mect-sub001/internal/config"
	"github.com/luisbfsousa/mect-sub001/internal/identity"
	"github.com/luisbfsousa/mect-sub001/internal/logger"
	"github.com/luisbfsousa/mect-sub001/internal/metrics"
	"github.com/luisbfsousa/mect-sub001/internal/pkg/auth"
	"github.com/luisbfsousa/mect-sub001/internal/server/http/router"
	"github.com/luisbfsousa/mect-sub001/internal/storage"
	"github.com/luisbfsousa/mect-sub001/internal/telemetry"
	"github.com/luisbfsousa/mect-sub001/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		fx.WithLogger(func(l *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: l}
		}),
		config.Module,
		logger.Module,
		metrics.Module,
		telemetry.Module,
		storage.Module,
		identity.Module,
		auth.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
