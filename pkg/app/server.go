package app

import (
	"context"

	"github.com/shashiranjanraj/bgfixture/config"
	"github.com/shashiranjanraj/bgfixture/internal/server"
)

// Serve starts the services, then serves HTTP (and gRPC when GRPC_PORT is
// set) until ctx ends, then shuts everything down in reverse order.
func (a *Application) Serve(ctx context.Context) error {
	return a.serve(ctx, server.Options{
		Addr:            ":" + config.AppPort(),
		GRPCPort:        config.GRPCPort(),
		ShutdownTimeout: config.ShutdownTimeout(),
	})
}

func (a *Application) serve(ctx context.Context, opts server.Options) error {
	handler, err := a.Handler()
	if err != nil {
		return err
	}
	opts.Handler = handler

	for _, s := range a.services {
		s.Start(ctx)
	}
	defer func() {
		for i := len(a.services) - 1; i >= 0; i-- {
			a.services[i].Stop()
		}
	}()

	return server.Run(ctx, opts)
}
