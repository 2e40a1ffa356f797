package bus

import "time"

// AnyEvent subscribes a handler to every event type.
const AnyEvent = "*"

// EventBus defines a thread-safe, in-process pub/sub event bus.
//
// Key characteristics:
// - Type-based fan-out: handlers subscribe by Event.Type() string, or to AnyEvent.
// - Synchronous delivery: Publish calls handler callbacks in the caller goroutine.
// - Error aggregation: multiple handler errors are joined and returned from Publish.
// - Optional observability: metrics are produced only when observers are registered.
//
// Handlers run inside the publisher's tick and must not block.
type EventBus interface {
	// Publish delivers the event synchronously to all active subscribers of
	// event.Type() and to AnyEvent subscribers.
	Publish(event Event) error
	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. It is safe to call with nil.
	Unsubscribe(Subscription) error

	// PublishWithFilters applies filters before delivery; if any filter returns false,
	// the event is dropped and not delivered to handlers.
	PublishWithFilters(event Event, filters ...EventFilter) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	// GetMetrics returns a snapshot of accumulated metrics. Metrics are only
	// collected when at least one observer is registered.
	GetMetrics() EventBusMetrics
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
	Priority() int
	Metadata() map[string]any
}

type (
	// EventHandler is invoked per delivered event.
	EventHandler func(event Event) error
	// EventFilter decides whether an event should be delivered.
	EventFilter func(event Event) bool
)

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler from the bus. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is notified about deliveries and errors.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, durationMicros int64)
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	DroppedByFilters  uint64
	SubscribersActive uint64
}
