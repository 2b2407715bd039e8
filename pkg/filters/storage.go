package filters

import (
	"errors"
	"sync"

	"github.com/shashiranjanraj/bgfixture/pkg/collection"
	"github.com/shashiranjanraj/bgfixture/pkg/notifier"
)

// Event names fired by Storage.
const (
	EventSubscriptionAdded   = "subscription.added"
	EventSubscriptionRemoved = "subscription.removed"
	EventFilterAdded         = "filter.added"
	EventFilterRemoved       = "filter.removed"
)

// ErrNotFound is returned by callers that need an absent subscription or
// filter to be an error rather than a no-op.
var ErrNotFound = errors.New("filters: not found")

// Storage keeps the known subscriptions and the custom subscription that
// user filters are added to. Every effective change fires exactly one event
// on the notifier; no-op calls fire nothing.
//
// The lock is released before an event fires so listeners may call back
// into Storage.
type Storage struct {
	mu       sync.RWMutex
	known    []*Filter
	subs     []*Subscription
	custom   *Subscription
	notifier *notifier.Notifier
}

// NewStorage seeds a storage with urls. customURL names the subscription
// that AddFilter and RemoveFilter operate on; it is appended as a special
// subscription if urls does not contain it.
func NewStorage(n *notifier.Notifier, known []*Filter, urls []string, customURL string) *Storage {
	s := &Storage{known: known, notifier: n}

	for _, u := range urls {
		if s.indexOf(u) >= 0 {
			continue
		}
		s.subs = append(s.subs, SubscriptionFromURL(u, known))
	}

	if i := s.indexOf(customURL); i >= 0 {
		s.custom = s.subs[i]
	} else {
		s.custom = SubscriptionFromURL(customURL, known)
		s.subs = append(s.subs, s.custom)
	}

	return s
}

func (s *Storage) indexOf(url string) int {
	return collection.IndexOf(s.subs, func(sub *Subscription) bool { return sub.URL == url })
}

// Subscriptions returns copies of the known subscriptions in insertion
// order.
func (s *Storage) Subscriptions() []*Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collection.Map(s.subs, (*Subscription).copy)
}

// Known looks a subscription up by URL.
func (s *Storage) Known(url string) (*Subscription, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(url); i >= 0 {
		return s.subs[i].copy(), true
	}
	return nil, false
}

// Custom returns a copy of the subscription user filters live in.
func (s *Storage) Custom() *Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.custom.copy()
}

// Filters returns the filters of the custom subscription.
func (s *Storage) Filters() []*Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collection.Clone(s.custom.Filters)
}

// AddSubscription stores a fresh subscription for sub.URL if the URL is
// unknown and fires subscription.added with sub. The returned bool reports
// whether anything changed; the error comes from the listeners.
func (s *Storage) AddSubscription(sub *Subscription) (bool, error) {
	s.mu.Lock()
	if s.indexOf(sub.URL) >= 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.subs = append(s.subs, SubscriptionFromURL(sub.URL, s.known))
	s.mu.Unlock()

	return true, s.notifier.TriggerListeners(EventSubscriptionAdded, sub)
}

// RemoveSubscription drops sub.URL if known and fires subscription.removed.
func (s *Storage) RemoveSubscription(sub *Subscription) (bool, error) {
	s.mu.Lock()
	i := s.indexOf(sub.URL)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.subs = collection.RemoveAt(s.subs, i)
	s.mu.Unlock()

	return true, s.notifier.TriggerListeners(EventSubscriptionRemoved, sub)
}

// AddFilter appends f to the custom subscription unless a filter with the
// same text is already there, then fires filter.added.
func (s *Storage) AddFilter(f *Filter) (bool, error) {
	s.mu.Lock()
	if s.filterIndex(f.Text) >= 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.custom.Filters = append(s.custom.Filters, f)
	s.mu.Unlock()

	return true, s.notifier.TriggerListeners(EventFilterAdded, f)
}

// RemoveFilter removes the first custom filter with f's text and fires
// filter.removed.
func (s *Storage) RemoveFilter(f *Filter) (bool, error) {
	s.mu.Lock()
	i := s.filterIndex(f.Text)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.custom.Filters = collection.RemoveAt(s.custom.Filters, i)
	s.mu.Unlock()

	return true, s.notifier.TriggerListeners(EventFilterRemoved, f)
}

func (s *Storage) filterIndex(text string) int {
	return collection.IndexOf(s.custom.Filters, func(f *Filter) bool { return f.Text == text })
}
