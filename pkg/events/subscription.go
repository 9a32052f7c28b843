package events

import "sync"

// Subscription is one consumer's view of the event stream. Events arrive on
// C() in publication order. Dispose stops delivery; for derived
// subscriptions it also tears down the upstream chain.
type Subscription[V any] struct {
	bus      *Bus[V]
	upstream *Subscription[V]

	mu       sync.Mutex
	cond     *sync.Cond
	pending  []Event[V]
	closing  bool // drain pending, then close out
	disposed bool // drop pending, close out now

	out      chan Event[V]
	done     chan struct{}
	disposeO sync.Once
}

func newSubscription[V any]() *Subscription[V] {
	s := &Subscription[V]{out: make(chan Event[V]), done: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)
	go s.deliver()
	return s
}

// C returns the receive channel. It is closed when the subscription is
// disposed or, once pending events have been drained, when the bus shuts
// down. A consumer that stops receiving must call Dispose; otherwise the
// delivery goroutine stays blocked handing over the next event.
func (s *Subscription[V]) C() <-chan Event[V] {
	return s.out
}

// Dispose stops delivery immediately, discarding undelivered events.
func (s *Subscription[V]) Dispose() {
	s.disposeO.Do(func() {
		s.mu.Lock()
		s.disposed = true
		s.closing = true
		s.pending = nil
		s.cond.Broadcast()
		s.mu.Unlock()
		close(s.done)

		if s.bus != nil {
			s.bus.unsubscribe(s)
		}
		if s.upstream != nil {
			s.upstream.Dispose()
		}
	})
}

// terminate is the graceful path used by Bus.Close: pending events are
// still delivered before the channel closes.
func (s *Subscription[V]) terminate() {
	s.mu.Lock()
	s.closing = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

func (s *Subscription[V]) push(ev Event[V]) {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return
	}
	s.pending = append(s.pending, ev)
	s.cond.Signal()
	s.mu.Unlock()
}

func (s *Subscription[V]) deliver() {
	defer close(s.out)
	for {
		s.mu.Lock()
		for len(s.pending) == 0 && !s.closing {
			s.cond.Wait()
		}
		if s.disposed || (len(s.pending) == 0 && s.closing) {
			s.mu.Unlock()
			return
		}
		ev := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		select {
		case s.out <- ev:
		case <-s.done:
			return
		}
	}
}

// Where returns a derived subscription delivering only events matching the
// predicate.
func (s *Subscription[V]) Where(pred func(Event[V]) bool) *Subscription[V] {
	child := newSubscription[V]()
	child.upstream = s
	go func() {
		for ev := range s.out {
			if pred(ev) {
				child.push(ev)
			}
		}
		child.terminate()
	}()
	return child
}

// WhereType filters to the given event types.
func (s *Subscription[V]) WhereType(types ...Type) *Subscription[V] {
	set := make(map[Type]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return s.Where(func(ev Event[V]) bool {
		_, ok := set[ev.Type]
		return ok
	})
}

// WhereKey filters to events for one key.
func (s *Subscription[V]) WhereKey(key string) *Subscription[V] {
	return s.Where(func(ev Event[V]) bool { return ev.Key == key })
}

// WhereKeyPrefix filters to events whose key starts with prefix.
func (s *Subscription[V]) WhereKeyPrefix(prefix string) *Subscription[V] {
	return s.Where(func(ev Event[V]) bool {
		return len(ev.Key) >= len(prefix) && ev.Key[:len(prefix)] == prefix
	})
}

// Additions filters to Created and Updated events.
func (s *Subscription[V]) Additions() *Subscription[V] {
	return s.WhereType(Created, Updated)
}

// Removals filters to explicit Removed events.
func (s *Subscription[V]) Removals() *Subscription[V] {
	return s.WhereType(Removed)
}

// Expirations filters to Expired events.
func (s *Subscription[V]) Expirations() *Subscription[V] {
	return s.WhereType(Expired)
}

// Evictions filters to Evicted events.
func (s *Subscription[V]) Evictions() *Subscription[V] {
	return s.WhereType(Evicted)
}
