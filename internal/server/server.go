// Package server owns the listen/serve/shutdown lifecycle of the HTTP and
// gRPC listeners.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/shashiranjanraj/bgfixture/pkg/grpc"
	"github.com/shashiranjanraj/bgfixture/pkg/logger"
)

// Options configures Run. Listener, when set, is used instead of Addr.
type Options struct {
	Addr            string
	Listener        net.Listener
	Handler         http.Handler
	GRPCPort        string
	ShutdownTimeout time.Duration
}

// Run serves until ctx ends or the HTTP server fails, then shuts down
// gracefully within ShutdownTimeout.
func Run(ctx context.Context, opts Options) error {
	lis := opts.Listener
	if lis == nil {
		var err error
		if lis, err = net.Listen("tcp", opts.Addr); err != nil {
			return fmt.Errorf("server: listen on %s: %w", opts.Addr, err)
		}
	}

	var grpcSrv *grpc.Server
	if opts.GRPCPort != "" {
		var err error
		if grpcSrv, err = grpc.Start(opts.GRPCPort); err != nil {
			lis.Close()
			return err
		}
	}
	defer grpcSrv.Stop()

	srv := &http.Server{
		Handler:           opts.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("bgfixture running", "addr", lis.Addr().String())
		errCh <- srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("bgfixture shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
