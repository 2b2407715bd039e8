// Package notifier provides a synchronous observer registry.
//
// Producers call TriggerListeners with an event name and arguments; every
// listener registered at that moment is invoked in registration order on the
// caller's goroutine before TriggerListeners returns.
//
//	n := notifier.New()
//	h := n.AddListener(notifier.Func(func(e notifier.Event) error {
//	    log.Println(e.Name, e.Args)
//	    return nil
//	}))
//	defer n.RemoveListener(h)
//
//	n.TriggerListeners("subscription.added", sub)
//
// A Notifier is an ordinary value: construct one and hand it to whatever
// needs to publish or subscribe. There is no package-level registry.
package notifier

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
)

// Event is one dispatched notification. It marshals as
// {"event":name,"args":[...]}, the frame event streams send.
type Event struct {
	Name string `json:"event"`
	Args []any  `json:"args"`
}

// Payload returns the first argument, or nil when there are none.
func (e Event) Payload() any {
	if len(e.Args) == 0 {
		return nil
	}
	return e.Args[0]
}

// Listener receives events. Two listeners are the same listener when their
// interface values compare equal, so register pointers (or use Func) to get
// identity semantics.
type Listener interface {
	HandleEvent(e Event) error
}

type funcListener struct {
	fn func(Event) error
}

func (f *funcListener) HandleEvent(e Event) error { return f.fn(e) }

// Func wraps fn in a new listener. Each call yields a distinct listener, so
// keep the returned value if you want to re-register it as a duplicate.
func Func(fn func(Event) error) Listener {
	return &funcListener{fn: fn}
}

// Chan returns a listener that copies events into ch without ever blocking
// the dispatcher. Events that do not fit are passed to onDrop, if set, and
// discarded. ch is never closed.
func Chan(ch chan<- Event, onDrop func(Event)) Listener {
	return Func(func(e Event) error {
		select {
		case ch <- e:
		default:
			if onDrop != nil {
				onDrop(e)
			}
		}
		return nil
	})
}

// Handle identifies a registration. The zero Handle is never issued.
type Handle uint64

// ListenerPanicError is reported for a listener that panicked.
type ListenerPanicError struct {
	Value any
	Stack []byte
}

func (e *ListenerPanicError) Error() string {
	return fmt.Sprintf("listener panicked: %v", e.Value)
}

// TriggerHook observes every dispatch after it completes.
type TriggerHook func(e Event, delivered int, err error)

// Option configures a Notifier.
type Option func(*Notifier)

// WithTriggerHook registers h to run after each TriggerListeners call.
func WithTriggerHook(h TriggerHook) Option {
	return func(n *Notifier) { n.hooks = append(n.hooks, h) }
}

type entry struct {
	handle   Handle
	listener Listener
}

// Notifier is safe for use from multiple goroutines. The lock is held only
// while the registry is mutated or copied, never while listeners run, so a
// listener may add or remove listeners (itself included) during dispatch.
type Notifier struct {
	mu      sync.Mutex
	next    Handle
	entries []entry
	hooks   []TriggerHook
}

// New returns an empty Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// AddListener appends l unless it is already registered, in which case the
// existing handle is returned and nothing changes. A nil listener is ignored
// and yields the zero Handle.
func (n *Notifier) AddListener(l Listener) Handle {
	if l == nil {
		return 0
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	for _, e := range n.entries {
		if sameListener(e.listener, l) {
			return e.handle
		}
	}

	n.next++
	n.entries = append(n.entries, entry{handle: n.next, listener: l})
	return n.next
}

// RemoveListener drops the registration for h. Unknown or already removed
// handles are ignored.
func (n *Notifier) RemoveListener(h Handle) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, e := range n.entries {
		if e.handle == h {
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
			return
		}
	}
}

// Listening reports whether h is currently registered.
func (n *Notifier) Listening(h Handle) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, e := range n.entries {
		if e.handle == h {
			return true
		}
	}
	return false
}

// Len returns the number of registered listeners.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.entries)
}

// TriggerListeners dispatches an event to the listeners registered when the
// call starts. Every one of them runs even if an earlier one fails; returned
// errors and recovered panics are joined into the result.
func (n *Notifier) TriggerListeners(name string, args ...any) error {
	n.mu.Lock()
	snapshot := make([]entry, len(n.entries))
	copy(snapshot, n.entries)
	hooks := n.hooks
	n.mu.Unlock()

	ev := Event{Name: name, Args: args}

	var errs []error
	for _, e := range snapshot {
		if err := invoke(e.listener, ev); err != nil {
			errs = append(errs, fmt.Errorf("notifier: %s: listener %d: %w", name, e.handle, err))
		}
	}

	err := errors.Join(errs...)
	for _, h := range hooks {
		h(ev, len(snapshot), err)
	}
	return err
}

func invoke(l Listener, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ListenerPanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return l.HandleEvent(ev)
}

// sameListener compares by interface equality. Dynamic types that cannot be
// compared (func-typed listeners, structs holding slices) are never equal.
func sameListener(a, b Listener) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
