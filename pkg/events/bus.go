package events

import "sync"

// Bus broadcasts cache events to all active subscriptions.
type Bus[V any] struct {
	mu     sync.Mutex
	subs   map[*Subscription[V]]struct{}
	closed bool
}

// NewBus creates an empty event bus.
func NewBus[V any]() *Bus[V] {
	return &Bus[V]{subs: make(map[*Subscription[V]]struct{})}
}

// Subscribe registers a new subscription. Subscribing to a closed bus
// returns an already-terminated subscription whose channel is closed.
func (b *Bus[V]) Subscribe() *Subscription[V] {
	sub := newSubscription[V]()
	sub.bus = b

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.terminate()
		return sub
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Publish delivers the event to every active subscription in commit order.
// It never blocks on slow subscribers.
func (b *Bus[V]) Publish(ev Event[V]) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	subs := make([]*Subscription[V], 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		sub.push(ev)
	}
}

// Close terminates the bus. Active subscriptions drain their pending events
// and then see their channels closed. Draining needs a receiver: a
// subscriber that abandoned its channel must still call Dispose to release
// its delivery goroutine.
func (b *Bus[V]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := make([]*Subscription[V], 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.subs = make(map[*Subscription[V]]struct{})
	b.mu.Unlock()

	for _, sub := range subs {
		sub.terminate()
	}
}

func (b *Bus[V]) unsubscribe(sub *Subscription[V]) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
}
