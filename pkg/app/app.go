// Package app assembles the fixture server: global middleware, /metrics,
// /healthz, the route callbacks and the long-running services, then hands
// the result to internal/server.
//
//	a := app.New().
//	    Routes(func(r *router.Router) error { return routes.RegisterAPI(r, bg, hub) }).
//	    Services(bg, app.RunFunc(hub.Run))
//	err := a.Serve(ctx)
package app

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/bgfixture/pkg/router"
)

// RouteFunc mounts routes on r.
type RouteFunc func(r *router.Router) error

// Service is started before the HTTP server accepts requests and stopped
// after it has drained.
type Service interface {
	Start(ctx context.Context)
	Stop()
}

// runFunc adapts a blocking run loop to Service.
type runFunc struct {
	run    func(context.Context)
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// RunFunc turns a function that blocks until ctx ends (ws.Hub.Run, for
// example) into a Service.
func RunFunc(run func(context.Context)) Service {
	return &runFunc{run: run}
}

func (s *runFunc) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

func (s *runFunc) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Application is the central configuration object. Build one with New,
// attach routes and services, then call Serve.
type Application struct {
	routeFns []RouteFunc
	services []Service
	corsFrom []string
}

func New() *Application {
	return &Application{}
}

// Routes registers a route callback. Callbacks run in order when the
// handler is built.
func (a *Application) Routes(fn RouteFunc) *Application {
	a.routeFns = append(a.routeFns, fn)
	return a
}

// Services registers services started by Serve, in order, and stopped in
// reverse.
func (a *Application) Services(s ...Service) *Application {
	a.services = append(a.services, s...)
	return a
}

// CORSOrigins overrides the configured CORS origins.
func (a *Application) CORSOrigins(origins ...string) *Application {
	a.corsFrom = origins
	return a
}
