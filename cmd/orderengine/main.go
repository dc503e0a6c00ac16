// Command orderengine serves the order lifecycle, inventory and notification engine over HTTP.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/luisbfsousa/mect-sub001/internal/di"
)

const stopTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := fx.New(
		fx.Provide(func() context.Context { return ctx }),
		fx.StopTimeout(stopTimeout),
		di.Module(),
	)

	run(ctx, engine)
}
