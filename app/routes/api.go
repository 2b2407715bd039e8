package routes

import (
	"github.com/shashiranjanraj/bgfixture/app/controllers"
	"github.com/shashiranjanraj/bgfixture/pkg/background"
	"github.com/shashiranjanraj/bgfixture/pkg/ctx"
	"github.com/shashiranjanraj/bgfixture/pkg/graphql"
	"github.com/shashiranjanraj/bgfixture/pkg/router"
	"github.com/shashiranjanraj/bgfixture/pkg/ws"
)

// RegisterAPI mounts every /api route against bg. hub must be running for
// /api/ws to accept clients.
func RegisterAPI(r *router.Router, bg *background.Background, hub *ws.Hub) error {
	info := controllers.NewBackgroundController(bg)
	subs := controllers.NewSubscriptionController(bg)
	flts := controllers.NewFilterController(bg)
	streams := controllers.NewStreamController(bg, hub)

	schema, err := graphql.NewSchema()
	if err != nil {
		return err
	}

	api := r.Group("/api")
	api.Get("/info", "info", ctx.Wrap(info.Info))
	api.Get("/params", "params", ctx.Wrap(info.Params))
	api.Get("/modules", "modules", ctx.Wrap(info.Modules))
	api.Get("/prefs", "prefs", ctx.Wrap(info.Prefs))
	api.Get("/doclink/{link}", "doclink", ctx.Wrap(info.DocLink))
	api.Get("/matches", "matches", ctx.Wrap(info.Matches))

	api.Get("/subscriptions", "subscriptions.index", ctx.Wrap(subs.Index))
	api.Post("/subscriptions", "subscriptions.store", ctx.Wrap(subs.Store))
	api.Delete("/subscriptions", "subscriptions.destroy", ctx.Wrap(subs.Destroy))

	api.Get("/filters", "filters.index", ctx.Wrap(flts.Index))
	api.Post("/filters", "filters.store", ctx.Wrap(flts.Store))
	api.Delete("/filters", "filters.destroy", ctx.Wrap(flts.Destroy))
	api.Post("/filters/parse", "filters.parse", ctx.Wrap(flts.Parse))

	api.Get("/events", "events", ctx.Wrap(streams.Events))
	api.Get("/ws", "ws", ctx.Wrap(streams.Socket))

	api.Post("/graphql", "graphql", graphql.Handler(bg, schema))
	return nil
}
