package main

import (
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bgfixture/app/routes"
	"github.com/shashiranjanraj/bgfixture/config"
	"github.com/shashiranjanraj/bgfixture/pkg/app"
	"github.com/shashiranjanraj/bgfixture/pkg/background"
	"github.com/shashiranjanraj/bgfixture/pkg/fixture"
	"github.com/shashiranjanraj/bgfixture/pkg/logger"
	"github.com/shashiranjanraj/bgfixture/pkg/metrics"
	"github.com/shashiranjanraj/bgfixture/pkg/notifier"
	"github.com/shashiranjanraj/bgfixture/pkg/router"
	"github.com/shashiranjanraj/bgfixture/pkg/ws"
)

// applyFlags copies persistent flags over config so flags win over files
// and environment.
func applyFlags(cmd *cobra.Command) error {
	if err := config.Load(); err != nil {
		return err
	}
	for flag, key := range map[string]string{"seed": "FIXTURE_SEED_FILE", "params": "FIXTURE_PARAMS"} {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			config.Set(key, v)
		}
	}
	return nil
}

func loadSeed() (fixture.Seed, error) {
	if path := config.SeedFile(); path != "" {
		return fixture.LoadSeed(path)
	}
	return fixture.DefaultSeed(), nil
}

func warnOnFailure(e notifier.Event, delivered int, err error) {
	if err != nil {
		logger.Warn("listener failed", "event", e.Name, "listeners", delivered, "error", err)
	}
}

func newNotifier() *notifier.Notifier {
	return notifier.New(
		notifier.WithTriggerHook(metrics.NotifierHook()),
		notifier.WithTriggerHook(warnOnFailure),
	)
}

// buildApp wires the shared background into an Application.
func buildApp() (*app.Application, error) {
	seed, err := loadSeed()
	if err != nil {
		return nil, err
	}

	params, err := fixture.ParamsFromQuery(config.DefaultParams())
	if err != nil {
		logger.Warn("default params partly ignored", "error", err)
	}

	bg := background.New(
		params,
		seed,
		newNotifier(),
		background.WithMessages(newNotifier()),
		background.WithAddSubscriptionDelay(config.AddSubscriptionDelay()),
	)
	hub := ws.NewHub()

	return app.New().
		Routes(func(r *router.Router) error { return routes.RegisterAPI(r, bg, hub) }).
		Services(bg, app.RunFunc(hub.Run)), nil
}
