package events

import (
	"slices"
	"sync"
)

// Handler receives change notifications on the publishing goroutine.
type Handler func(Change)

// Publisher is what stores depend on.
type Publisher interface {
	Publish(Change)
}

// Bus is an in-process observer list.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]subscription
}

type subscription struct {
	filter  map[Type]bool
	handler Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[int]subscription)}
}

// Subscribe registers h for the given types (all types when none are given).
// The returned function removes the subscription.
func (b *Bus) Subscribe(h Handler, types ...Type) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	var filter map[Type]bool
	if len(types) > 0 {
		filter = make(map[Type]bool, len(types))
		for _, t := range types {
			filter[t] = true
		}
	}

	id := b.nextID
	b.nextID++
	b.handlers[id] = subscription{filter: filter, handler: h}

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

// Publish delivers c to every matching subscriber in subscription order.
func (b *Bus) Publish(c Change) {
	b.mu.RLock()
	ids := make([]int, 0, len(b.handlers))
	for id := range b.handlers {
		ids = append(ids, id)
	}
	subs := make([]subscription, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		subs = append(subs, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, s := range subs {
		if s.filter != nil && !s.filter[c.Type] {
			continue
		}
		s.handler(c)
	}
}

// Discard drops every change. Useful where nobody observes.
type Discard struct{}

func (Discard) Publish(Change) {}
