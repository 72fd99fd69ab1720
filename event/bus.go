package event

import (
	"sync"
	"sync/atomic"

	"github.com/hedeqiang/pulse/log"
)

// Listener receives emitted events. A listener registered for a given Type
// only ever receives that Type's payload.
type Listener func(Event)

// Bus is a synchronous publish/subscribe primitive. Listeners are invoked in
// registration order; the same function may be registered any number of times
// and runs once per registration. Emission uses snapshot semantics: listeners
// added or removed while an emission is in progress do not affect that
// emission. A panicking listener is recovered and logged; it never stops the
// remaining listeners or reaches the emitter.
//
// All methods are safe for concurrent use.
type Bus struct {
	mu     sync.Mutex
	lists  map[Type][]*Subscription
	logger log.Logger
}

// NewBus creates an empty bus. A nil logger falls back to the no-op logger.
func NewBus(logger log.Logger) *Bus {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Bus{
		lists:  make(map[Type][]*Subscription),
		logger: logger,
	}
}

// Subscription is the handle for one listener registration. It is the unit
// of identity: registering the same function twice yields two independent
// handles.
type Subscription struct {
	bus   *Bus
	typ   Type
	fn    Listener
	once  bool
	fired atomic.Bool
}

// Type returns the event type this subscription listens for.
func (s *Subscription) Type() Type {
	return s.typ
}

// Off removes this registration. Other registrations of the same function
// stay active. Off on an already-removed subscription is a no-op.
func (s *Subscription) Off() {
	s.bus.remove(s)
}

// On registers fn for events of type t and returns its handle.
func (b *Bus) On(t Type, fn Listener) *Subscription {
	return b.add(t, fn, false)
}

// Once registers fn for a single delivery: the registration removes itself
// before fn runs the first time.
func (b *Bus) Once(t Type, fn Listener) *Subscription {
	return b.add(t, fn, true)
}

func (b *Bus) add(t Type, fn Listener, once bool) *Subscription {
	sub := &Subscription{bus: b, typ: t, fn: fn, once: once}
	b.mu.Lock()
	b.lists[t] = append(b.lists[t], sub)
	b.mu.Unlock()
	return sub
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.lists[sub.typ]
	for i, s := range list {
		if s == sub {
			b.lists[sub.typ] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Emit delivers e to every listener currently registered for its type,
// synchronously and in registration order.
func (b *Bus) Emit(e Event) {
	t := e.EventType()

	b.mu.Lock()
	snapshot := append([]*Subscription(nil), b.lists[t]...)
	b.mu.Unlock()

	for _, sub := range snapshot {
		if sub.once {
			if !sub.fired.CompareAndSwap(false, true) {
				continue
			}
			sub.Off()
		}
		b.invoke(sub, e)
	}
}

// invoke runs one listener with panic isolation.
func (b *Bus) invoke(sub *Subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event listener panicked", "event", string(e.EventType()), "panic", r)
		}
	}()
	sub.fn(e)
}

// Count returns the number of registrations for t.
func (b *Bus) Count(t Type) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lists[t])
}

// RemoveAll drops every registration for the given types, or for all types
// when none are given.
func (b *Bus) RemoveAll(types ...Type) {
	if len(types) == 0 {
		types = Types()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range types {
		delete(b.lists, t)
	}
}
