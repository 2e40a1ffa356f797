package bus

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/bladeguard/pkg/generic"
)

// simpleEvent is the Event implementation returned by NewEvent.
type simpleEvent struct {
	typeStr string
	source  string
	ts      time.Time
	data    any
	prio    int
	meta    map[string]any
}

func (e simpleEvent) Type() string             { return e.typeStr }
func (e simpleEvent) Source() string           { return e.source }
func (e simpleEvent) Timestamp() time.Time     { return e.ts }
func (e simpleEvent) Data() any                { return e.data }
func (e simpleEvent) Priority() int            { return e.prio }
func (e simpleEvent) Metadata() map[string]any { return e.meta }

// NewEvent creates a simple Event stamped with the current time.
func NewEvent(typ, src string, data any, priority int, metadata map[string]any) Event {
	return simpleEvent{typeStr: typ, source: src, ts: time.Now(), data: data, prio: priority, meta: metadata}
}

type subscription struct {
	mu        sync.Mutex
	id        string
	eventType string
	handler   EventHandler
	active    bool
	cancel    func()
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) EventType() string { return s.eventType }

func (s *subscription) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *subscription) Cancel() error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = false
	s.mu.Unlock()
	s.cancel()
	return nil
}

type inMemoryBus struct {
	mu sync.RWMutex
	// handlers: eventType -> subID -> subscription
	handlers  map[string]map[string]*subscription
	metrics   EventBusMetrics
	observers map[EventBusObserver]struct{}
}

// New creates a new EventBus instance.
func New() EventBus {
	return &inMemoryBus{
		handlers:  make(map[string]map[string]*subscription),
		observers: make(map[EventBusObserver]struct{}),
	}
}

func (b *inMemoryBus) Publish(event Event) error {
	return b.deliver(event)
}

func (b *inMemoryBus) PublishWithFilters(event Event, filters ...EventFilter) error {
	for _, f := range filters {
		if !f(event) {
			b.mu.Lock()
			if len(b.observers) > 0 {
				b.metrics.DroppedByFilters++
			}
			b.mu.Unlock()
			return nil
		}
	}
	return b.Publish(event)
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, errors.New("bus: nil handler")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[string]*subscription)
	}
	id := uuid.NewString()
	s := &subscription{id: id, eventType: eventType, handler: handler, active: true}
	s.cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if mm, ok := b.handlers[eventType]; ok {
			delete(mm, id)
			if len(mm) == 0 {
				delete(b.handlers, eventType)
			}
		}
	}
	b.handlers[eventType][id] = s
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) AddObserver(obs EventBusObserver) {
	b.mu.Lock()
	b.observers[obs] = struct{}{}
	b.mu.Unlock()
}

func (b *inMemoryBus) RemoveObserver(obs EventBusObserver) {
	b.mu.Lock()
	delete(b.observers, obs)
	b.mu.Unlock()
}

func (b *inMemoryBus) GetMetrics() EventBusMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

var subscriptionBuffers = generic.NewSlicePool[*subscription](8)

func (b *inMemoryBus) deliver(event Event) error {
	start := time.Now()
	etype := event.Type()

	buf := subscriptionBuffers.Get()
	subs := *buf
	defer func() {
		*buf = subs
		subscriptionBuffers.Put(buf)
	}()

	b.mu.RLock()
	for _, s := range b.handlers[etype] {
		subs = append(subs, s)
	}
	if etype != AnyEvent {
		for _, s := range b.handlers[AnyEvent] {
			subs = append(subs, s)
		}
	}
	var observers []EventBusObserver
	if len(b.observers) > 0 {
		observers = make([]EventBusObserver, 0, len(b.observers))
		for obs := range b.observers {
			observers = append(observers, obs)
		}
	}
	b.mu.RUnlock()

	for _, obs := range observers {
		obs.OnPublish(etype, event)
	}

	var all error
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}

	if len(observers) > 0 {
		dur := time.Since(start).Microseconds()
		for _, obs := range observers {
			obs.OnDelivered(etype, len(subs), all, dur)
		}
		b.mu.Lock()
		b.metrics.Published++
		b.metrics.DeliveredHandlers += uint64(len(subs))
		if all != nil {
			b.metrics.Errors++
		}
		var active uint64
		for _, m := range b.handlers {
			active += uint64(len(m))
		}
		b.metrics.SubscribersActive = active
		b.mu.Unlock()
	}
	return all
}
