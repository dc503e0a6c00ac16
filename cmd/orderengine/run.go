package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/fx"
)

func run(ctx context.Context, engine *fx.App) {
	if err := engine.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "orderengine: invalid dependency graph: %v\n", err)
		os.Exit(2)
	}
	if err := engine.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "orderengine: start: %v\n", err)
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
	case <-engine.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := engine.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "orderengine: stop: %v\n", err)
		os.Exit(1)
	}
}
