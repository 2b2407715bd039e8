// Package background assembles the fake extension background: one storage,
// one notifier and the helper modules UI pages look up by name.
//
//	n := notifier.New()
//	bg := background.New(params, seed, n)
//	bg.Start(ctx)
//	defer bg.Stop()
//
//	storage, _ := container.Resolve[*filters.Storage](bg.Modules(), background.ModuleFilterStorage)
package background

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/shashiranjanraj/bgfixture/pkg/container"
	"github.com/shashiranjanraj/bgfixture/pkg/filters"
	"github.com/shashiranjanraj/bgfixture/pkg/fixture"
	"github.com/shashiranjanraj/bgfixture/pkg/notifier"
)

// Module names accepted by Require.
const (
	ModuleUtils               = "utils"
	ModulePrefs               = "prefs"
	ModuleSubscriptionClasses = "subscriptionClasses"
	ModuleFilterStorage       = "filterStorage"
	ModuleFilterClasses       = "filterClasses"
	ModuleFilterValidation    = "filterValidation"
	ModuleSynchronizer        = "synchronizer"
	ModuleMatcher             = "matcher"
	ModuleCSSRules            = "cssRules"
	ModuleFilterNotifier      = "filterNotifier"
	ModuleInfo                = "info"
)

// EventMessage is the notifier event carrying page messages.
const EventMessage = "message"

// DefaultAddSubscriptionDelay is how long a page waits before it is asked
// to add the custom subscription.
const DefaultAddSubscriptionDelay = time.Second

// Message is a page message, shaped like a window.postMessage payload.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// AddSubscriptionPayload is the body of the add-subscription request.
type AddSubscriptionPayload struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// AddSubscriptionMessage is posted when the addSubscription param is set.
func AddSubscriptionMessage() Message {
	return Message{
		Type: "message",
		Payload: AddSubscriptionPayload{
			Title: "Custom subscription",
			URL:   "http://example.com/custom.txt",
			Type:  "add-subscription",
		},
	}
}

// SubscriptionClasses builds subscriptions the way storage does.
type SubscriptionClasses struct {
	known []*filters.Filter
}

func (s SubscriptionClasses) FromURL(u string) *filters.Subscription {
	return filters.SubscriptionFromURL(u, s.known)
}

// FilterClasses builds filters from text.
type FilterClasses struct{}

func (FilterClasses) FromText(text string) *filters.Filter { return filters.FromText(text) }

// Option configures a Background.
type Option func(*Background)

// WithAddSubscriptionDelay overrides DefaultAddSubscriptionDelay.
func WithAddSubscriptionDelay(d time.Duration) Option {
	return func(b *Background) { b.delay = d }
}

// WithMessages uses n for page messages instead of a private notifier.
func WithMessages(n *notifier.Notifier) Option {
	return func(b *Background) { b.messages = n }
}

// Background owns the mutable fixture state. All per-request variation comes
// from View.
type Background struct {
	params   fixture.Params
	info     fixture.Info
	seed     fixture.Seed
	known    []*filters.Filter
	notifier *notifier.Notifier
	messages *notifier.Notifier
	storage  *filters.Storage
	modules  *container.Container
	delay    time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a background from params and seed, publishing storage changes
// on n.
func New(params fixture.Params, seed fixture.Seed, n *notifier.Notifier, opts ...Option) *Background {
	b := &Background{
		params:   params,
		info:     fixture.DefaultInfo(),
		seed:     seed,
		known:    filters.FromTexts(seed.Filters),
		notifier: n,
		delay:    DefaultAddSubscriptionDelay,
	}
	if seed.Info != nil {
		b.info = *seed.Info
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.messages == nil {
		b.messages = notifier.New()
	}

	custom := seed.CustomSubscription
	if custom == "" {
		custom = fixture.DefaultCustomSubscription
	}
	b.storage = filters.NewStorage(n, b.known, seed.Subscriptions, custom)
	b.modules = b.registerModules()
	return b
}

func (b *Background) registerModules() *container.Container {
	c := container.New()
	c.Instance(ModuleUtils, filters.Utils{})
	c.Bind(ModulePrefs, func() any { return filters.DefaultPrefs() })
	c.Instance(ModuleSubscriptionClasses, SubscriptionClasses{known: b.known})
	c.Instance(ModuleFilterStorage, b.storage)
	c.Instance(ModuleFilterClasses, FilterClasses{})
	c.Instance(ModuleFilterValidation, filters.Validator{FailAll: b.params.FilterError})
	c.Instance(ModuleSynchronizer, filters.Synchronizer{})
	c.Singleton(ModuleMatcher, func() any { return filters.NewMatcher(b.params.BlockedURLs) })
	c.Instance(ModuleCSSRules, filters.CSSRules{})
	c.Instance(ModuleFilterNotifier, b.notifier)
	c.Instance(ModuleInfo, b.info)
	return c
}

// Require resolves a module by name.
func (b *Background) Require(name string) (any, error) {
	return b.modules.Resolve(name)
}

func (b *Background) Modules() *container.Container { return b.modules }

func (b *Background) Params() fixture.Params { return b.params }

func (b *Background) Info() fixture.Info { return b.info }

func (b *Background) Seed() fixture.Seed { return b.seed }

func (b *Background) Notifier() *notifier.Notifier { return b.notifier }

// Messages is the notifier page messages are posted on.
func (b *Background) Messages() *notifier.Notifier { return b.messages }

func (b *Background) Storage() *filters.Storage { return b.storage }

// SeenDataCorruption reports the seenDataCorruption flag the UI checks at
// startup.
func (b *Background) SeenDataCorruption() bool { return b.params.SeenDataCorruption }

func (b *Background) FilterlistsReinitialized() bool { return b.params.FilterlistsReinitialized }

// PostMessage delivers m to every message listener.
func (b *Background) PostMessage(m Message) error {
	return b.messages.TriggerListeners(EventMessage, m)
}

// Start schedules the add-subscription message when the param asks for it.
// Stop cancels anything still pending.
func (b *Background) Start(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil || !b.params.AddSubscription {
		return
	}

	ctx, b.cancel = context.WithCancel(ctx)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ScheduleAddSubscription(ctx, b.delay, func(m Message) { _ = b.PostMessage(m) })
	}()
}

// Stop cancels a pending message and waits for the scheduler to exit.
func (b *Background) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	b.cancel = nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	b.wg.Wait()
}

// Delay is the configured add-subscription delay.
func (b *Background) Delay() time.Duration { return b.delay }

// ScheduleAddSubscription blocks until delay elapses and then hands
// AddSubscriptionMessage to deliver, or returns early when ctx ends. It
// reports whether the message was delivered.
func ScheduleAddSubscription(ctx context.Context, delay time.Duration, deliver func(Message)) bool {
	t := time.NewTimer(delay)
	defer t.Stop()

	select {
	case <-t.C:
		deliver(AddSubscriptionMessage())
		return true
	case <-ctx.Done():
		return false
	}
}

// Subscribe registers l for storage events and page messages until ctx ends
// or stop is called. When v asks for addSubscription the add-subscription
// message is scheduled for this subscriber alone.
func (b *Background) Subscribe(ctx context.Context, v *View, l notifier.Listener) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	events := b.notifier.AddListener(l)
	messages := b.messages.AddListener(l)

	var wg sync.WaitGroup
	if v != nil && v.Params.AddSubscription {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ScheduleAddSubscription(ctx, b.delay, func(m Message) {
				_ = l.HandleEvent(notifier.Event{Name: EventMessage, Args: []any{m}})
			})
		}()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
			b.notifier.RemoveListener(events)
			b.messages.RemoveListener(messages)
		})
	}
}

// View is the background as seen by one page load: the shared storage and
// notifier, with params and info taken from that page's query.
type View struct {
	Params    fixture.Params
	Info      fixture.Info
	Validator filters.Validator
	Matcher   *filters.Matcher
	Storage   *filters.Storage
	Notifier  *notifier.Notifier
}

// View applies q over the background's own params and info.
func (b *Background) View(q url.Values) *View {
	p := b.params.Apply(q)
	return &View{
		Params:    p,
		Info:      b.info.Apply(q),
		Validator: filters.Validator{FailAll: p.FilterError},
		Matcher:   filters.NewMatcher(p.BlockedURLs),
		Storage:   b.storage,
		Notifier:  b.notifier,
	}
}
