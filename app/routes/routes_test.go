package routes_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bgfixture/app/routes"
	"github.com/shashiranjanraj/bgfixture/pkg/app"
	"github.com/shashiranjanraj/bgfixture/pkg/background"
	"github.com/shashiranjanraj/bgfixture/pkg/fixture"
	"github.com/shashiranjanraj/bgfixture/pkg/notifier"
	"github.com/shashiranjanraj/bgfixture/pkg/router"
	"github.com/shashiranjanraj/bgfixture/pkg/testkit"
	"github.com/shashiranjanraj/bgfixture/pkg/ws"
)

func TestAPIScenarios(t *testing.T) {
	bg := background.New(fixture.Params{}, fixture.DefaultSeed(), notifier.New())
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	a := app.New().Routes(func(r *router.Router) error { return routes.RegisterAPI(r, bg, hub) })
	h, err := a.Handler()
	require.NoError(t, err)

	testkit.RunDir(t, h, "testdata", testkit.WithNotifier(bg.Notifier()))

	_, known := bg.Storage().Known("https://lists.test/scenario.txt")
	assert.True(t, known, "subscription added despite the failing listener")
}

func TestRouteNames(t *testing.T) {
	bg := background.New(fixture.Params{}, fixture.DefaultSeed(), notifier.New())
	routesList, err := app.New().
		Routes(func(r *router.Router) error { return routes.RegisterAPI(r, bg, ws.NewHub()) }).
		RouteList()
	require.NoError(t, err)

	names := map[string]string{}
	for _, ri := range routesList {
		names[ri.Name] = ri.Method + " " + ri.Path
	}
	assert.Equal(t, "GET /api/doclink/{link}", names["doclink"])
	assert.Equal(t, "POST /api/filters/parse", names["filters.parse"])
	assert.Equal(t, "DELETE /api/subscriptions", names["subscriptions.destroy"])
	assert.Equal(t, "POST /api/graphql", names["graphql"])
	assert.Equal(t, "GET /api/ws", names["ws"])
}
