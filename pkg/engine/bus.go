package engine

import (
	"log/slog"
	"sync"
)

// Listener receives engine events. Listeners run synchronously on the
// dispatching goroutine and must not block.
type Listener func(Event)

// Bus is a typed publish/subscribe registry. Emission is fire-and-forget
// per listener; a panicking listener is isolated so it can neither stop the
// remaining listeners nor abort the dispatch that produced the event.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[EventType]map[int]Listener
	all    map[int]Listener
	log    *slog.Logger
}

// NewBus creates an empty bus.
func NewBus(log *slog.Logger) *Bus {
	return &Bus{
		subs: make(map[EventType]map[int]Listener),
		all:  make(map[int]Listener),
		log:  log,
	}
}

// Subscribe registers fn for the given event types, or for every event when
// no types are given. The returned function unsubscribes; calling it more
// than once is harmless.
func (b *Bus) Subscribe(fn Listener, types ...EventType) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	if len(types) == 0 {
		b.all[id] = fn
	}
	for _, t := range types {
		if b.subs[t] == nil {
			b.subs[t] = make(map[int]Listener)
		}
		b.subs[t][id] = fn
	}

	registered := types
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.all, id)
		for _, t := range registered {
			delete(b.subs[t], id)
		}
	}
}

// Publish delivers the event to every matching listener synchronously.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	listeners := make([]Listener, 0, len(b.all)+len(b.subs[ev.Type]))
	for _, fn := range b.all {
		listeners = append(listeners, fn)
	}
	for _, fn := range b.subs[ev.Type] {
		listeners = append(listeners, fn)
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		b.deliver(fn, ev)
	}
}

func (b *Bus) deliver(fn Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil && b.log != nil {
			b.log.Error("Event listener panicked", "event_type", ev.Type, "panic", r)
		}
	}()
	fn(ev)
}

// Clear drops every registered listener.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[EventType]map[int]Listener)
	b.all = make(map[int]Listener)
}
