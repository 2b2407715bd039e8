package app

import (
	"net/http"

	"github.com/shashiranjanraj/bgfixture/config"
	"github.com/shashiranjanraj/bgfixture/pkg/ctx"
	"github.com/shashiranjanraj/bgfixture/pkg/metrics"
	"github.com/shashiranjanraj/bgfixture/pkg/middleware"
	"github.com/shashiranjanraj/bgfixture/pkg/reqid"
	"github.com/shashiranjanraj/bgfixture/pkg/router"
)

// Handler builds the router with the global middleware and every route
// callback.
func (a *Application) Handler() (http.Handler, error) {
	r, err := a.router()
	if err != nil {
		return nil, err
	}
	return r.Handler(), nil
}

func (a *Application) router() (*router.Router, error) {
	origins := a.corsFrom
	if origins == nil {
		origins = config.CORSOrigins()
	}

	r := router.New()

	// Outermost first: metrics see total latency, Recovery runs inside
	// reqid so panics are logged with the request ID.
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(origins))

	r.HandleFunc("/metrics", metrics.Handler())
	r.Get("/healthz", "healthz", ctx.Wrap(func(c *ctx.Context) {
		c.Success(map[string]string{"status": "ok"})
	}))

	for _, fn := range a.routeFns {
		if err := fn(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RouteList returns every named route, sorted.
func (a *Application) RouteList() ([]router.RouteInfo, error) {
	r, err := a.router()
	if err != nil {
		return nil, err
	}
	return r.Routes(), nil
}

