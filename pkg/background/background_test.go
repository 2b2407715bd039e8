package background_test

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bgfixture/pkg/background"
	"github.com/shashiranjanraj/bgfixture/pkg/container"
	"github.com/shashiranjanraj/bgfixture/pkg/filters"
	"github.com/shashiranjanraj/bgfixture/pkg/fixture"
	"github.com/shashiranjanraj/bgfixture/pkg/notifier"
)

func TestRequire_AllModules(t *testing.T) {
	bg := background.New(fixture.Params{}, fixture.DefaultSeed(), notifier.New())

	for _, name := range []string{
		background.ModuleUtils,
		background.ModulePrefs,
		background.ModuleSubscriptionClasses,
		background.ModuleFilterStorage,
		background.ModuleFilterClasses,
		background.ModuleFilterValidation,
		background.ModuleSynchronizer,
		background.ModuleMatcher,
		background.ModuleCSSRules,
		background.ModuleFilterNotifier,
		background.ModuleInfo,
	} {
		v, err := bg.Require(name)
		require.NoError(t, err, name)
		assert.NotNil(t, v, name)
	}

	_, err := bg.Require("nope")
	assert.ErrorIs(t, err, container.ErrUnknownModule)
	assert.Len(t, bg.Modules().Names(), 11)
}

func TestRequire_SharesStorageAndNotifier(t *testing.T) {
	n := notifier.New()
	bg := background.New(fixture.Params{}, fixture.DefaultSeed(), n)

	storage, err := container.Resolve[*filters.Storage](bg.Modules(), background.ModuleFilterStorage)
	require.NoError(t, err)
	assert.Same(t, bg.Storage(), storage)

	fn, err := container.Resolve[*notifier.Notifier](bg.Modules(), background.ModuleFilterNotifier)
	require.NoError(t, err)
	assert.Same(t, n, fn)
}

func TestSeedShapesStorage(t *testing.T) {
	bg := background.New(fixture.Params{}, fixture.DefaultSeed(), notifier.New())

	subs := bg.Storage().Subscriptions()
	require.Len(t, subs, 4)
	assert.Equal(t, "Subscription "+subs[0].URL, subs[0].Title)
	assert.Equal(t, fixture.DefaultCustomSubscription, bg.Storage().Custom().URL)
	assert.Len(t, bg.Storage().Filters(), 20)
}

func TestParamsDriveModules(t *testing.T) {
	params := fixture.Params{FilterError: true, BlockedURLs: "http://ads.test/x.js", SeenDataCorruption: true}
	bg := background.New(params, fixture.DefaultSeed(), notifier.New())

	v, err := container.Resolve[filters.Validator](bg.Modules(), background.ModuleFilterValidation)
	require.NoError(t, err)
	assert.Equal(t, filters.InvalidFilter, v.ParseFilter("x").Error)

	m, err := container.Resolve[*filters.Matcher](bg.Modules(), background.ModuleMatcher)
	require.NoError(t, err)
	assert.NotNil(t, m.MatchesAny("http://ads.test/x.js", "SCRIPT", "", false))

	assert.True(t, bg.SeenDataCorruption())
	assert.False(t, bg.FilterlistsReinitialized())
}

func TestSeedInfoOverridesDefault(t *testing.T) {
	seed := fixture.DefaultSeed()
	info := fixture.DefaultInfo()
	info.Application = "chrome"
	seed.Info = &info

	bg := background.New(fixture.Params{}, seed, notifier.New())
	assert.Equal(t, "chrome", bg.Info().Application)
}

func TestView_AppliesQueryOverSharedState(t *testing.T) {
	bg := background.New(fixture.Params{BlockedURLs: "http://a.test"}, fixture.DefaultSeed(), notifier.New())

	v := bg.View(url.Values{"filterError": {"true"}, "addonVersion": {"3.0"}})
	assert.True(t, v.Validator.FailAll)
	assert.Equal(t, "3.0", v.Info.AddonVersion)
	assert.NotNil(t, v.Matcher.MatchesAny("http://a.test", "", "", false))
	assert.Same(t, bg.Storage(), v.Storage)

	plain := bg.View(nil)
	assert.False(t, plain.Validator.FailAll)
}

func TestStart_PostsAddSubscriptionMessage(t *testing.T) {
	messages := notifier.New()
	got := make(chan background.Message, 1)
	messages.AddListener(notifier.Func(func(e notifier.Event) error {
		got <- e.Payload().(background.Message)
		return nil
	}))

	bg := background.New(
		fixture.Params{AddSubscription: true},
		fixture.DefaultSeed(),
		notifier.New(),
		background.WithMessages(messages),
		background.WithAddSubscriptionDelay(10*time.Millisecond),
	)
	bg.Start(context.Background())
	defer bg.Stop()

	select {
	case m := <-got:
		assert.Equal(t, background.AddSubscriptionMessage(), m)
		p := m.Payload.(background.AddSubscriptionPayload)
		assert.Equal(t, "add-subscription", p.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("add-subscription message never arrived")
	}
}

func TestStart_WithoutParamDoesNothing(t *testing.T) {
	bg := background.New(fixture.Params{}, fixture.DefaultSeed(), notifier.New(),
		background.WithAddSubscriptionDelay(time.Millisecond))
	var mu sync.Mutex
	calls := 0
	bg.Messages().AddListener(notifier.Func(func(notifier.Event) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	}))

	bg.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	bg.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls)
}

func TestStop_CancelsPendingMessage(t *testing.T) {
	bg := background.New(fixture.Params{AddSubscription: true}, fixture.DefaultSeed(), notifier.New(),
		background.WithAddSubscriptionDelay(time.Hour))
	bg.Start(context.Background())

	done := make(chan struct{})
	go func() {
		bg.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestScheduleAddSubscription_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	delivered := background.ScheduleAddSubscription(ctx, time.Hour, func(background.Message) {
		t.Error("must not deliver after cancel")
	})
	assert.False(t, delivered)
}

func TestSubscribe_ForwardsEventsAndMessages(t *testing.T) {
	bg := background.New(fixture.Params{}, fixture.DefaultSeed(), notifier.New(),
		background.WithAddSubscriptionDelay(5*time.Millisecond))

	ch := make(chan notifier.Event, 8)
	v := bg.View(url.Values{"addSubscription": {"1"}})
	stop := bg.Subscribe(context.Background(), v, notifier.Chan(ch, nil))

	_, err := bg.Storage().AddFilter(filters.FromText("||sub.test^"))
	require.NoError(t, err)

	got := map[string]any{}
	for len(got) < 2 {
		select {
		case e := <-ch:
			got[e.Name] = e.Payload()
		case <-time.After(2 * time.Second):
			t.Fatalf("only got %v", got)
		}
	}
	assert.Contains(t, got, filters.EventFilterAdded)
	assert.Equal(t, background.AddSubscriptionMessage(), got[background.EventMessage])

	stop()
	stop()
	assert.Zero(t, bg.Notifier().Len())
	assert.Zero(t, bg.Messages().Len())

	require.NoError(t, bg.PostMessage(background.AddSubscriptionMessage()))
	assert.Empty(t, ch)
}
