// Package grpc runs the readiness side of the fixture: the standard
// grpc.health.v1.Health service plus reflection, so harnesses can probe the
// server with grpc_health_probe or grpcurl before loading UI pages.
//
//	srv, err := grpc.Start(config.GRPCPort())
//	// ...run until signal...
//	srv.Stop()
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/shashiranjanraj/bgfixture/pkg/metrics"
)

// ServiceName is the health service name reported alongside "".
const ServiceName = "bgfixture.Background"

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bgfixture",
		Subsystem: "grpc",
		Name:      "handled_total",
		Help:      "Total number of gRPC calls completed by method and code.",
	}, []string{"grpc_method", "grpc_code"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bgfixture",
		Subsystem: "grpc",
		Name:      "handling_seconds",
		Help:      "Histogram of gRPC response latency in seconds.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"grpc_method"})
)

func init() {
	metrics.MustRegister(requestsTotal, requestDuration)
}

// ─── Interceptors ─────────────────────────────────────────────────────────────

// recoveryInterceptor turns handler panics into INTERNAL errors.
func recoveryInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("grpc: panic recovered",
				"method", info.FullMethod,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

// observeInterceptor logs each unary call and records its metrics.
func observeInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	dur := time.Since(start)
	code := status.Code(err)

	slog.Debug("grpc: request",
		"method", info.FullMethod,
		"duration_ms", dur.Milliseconds(),
		"code", code.String(),
	)
	requestsTotal.WithLabelValues(info.FullMethod, code.String()).Inc()
	requestDuration.WithLabelValues(info.FullMethod).Observe(dur.Seconds())
	return resp, err
}

// ─── Server ───────────────────────────────────────────────────────────────────

// Server wraps a running gRPC server and its health state.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	lis    net.Listener
	done   chan struct{}
}

// NewServer builds a server with the health and reflection services
// registered. Nothing listens until Serve.
func NewServer() *Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recoveryInterceptor, observeInterceptor),
		grpc.MaxRecvMsgSize(1<<20),
		grpc.MaxSendMsgSize(1<<20),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(srv, hs)

	// grpcurl works without proto files.
	reflection.Register(srv)

	return &Server{srv: srv, health: hs, done: make(chan struct{})}
}

// Start listens on port and serves in the background.
func Start(port string) (*Server, error) {
	addr := ":" + port
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc: listen on %s: %w", addr, err)
	}

	s := NewServer()
	s.Serve(lis)
	slog.Info("gRPC server starting", "addr", lis.Addr().String())
	return s, nil
}

// Serve serves on lis in a new goroutine.
func (s *Server) Serve(lis net.Listener) {
	s.lis = lis
	go func() {
		defer close(s.done)
		if err := s.srv.Serve(lis); err != nil {
			slog.Error("grpc: serve error", "error", err)
		}
	}()
}

// Addr is the listening address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}

// Stop reports NOT_SERVING, then waits for in-flight RPCs and the serve
// goroutine.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	slog.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.srv.GracefulStop()
	if s.lis != nil {
		<-s.done
	}
}
