// Package events implements the observer pattern used to decouple the
// import pipeline and trade service from the transports that surface
// their results.
package events

import (
	"log/slog"
	"sync"
)

// Event types dispatched by the application.
const (
	TypeImportCompleted     = "import:completed"
	TypeTradeListingCreated = "trade:listing_created"
	TypeTradeListingRemoved = "trade:listing_removed"
	TypeTradeRequestCreated = "trade:request_created"
	TypeTradeRequestUpdated = "trade:request_updated"
	TypeTradeMessageSent    = "trade:message_sent"
	TypeCollectionUpdated   = "collection:updated"
)

// Event represents a domain event that can be dispatched to observers.
type Event struct {
	// Type is the event type (e.g., "import:completed").
	Type string `json:"type"`

	// Data contains the typed event payload.
	Data any `json:"data"`
}

// Observer is notified of dispatched events.
type Observer interface {
	// OnEvent is called when an event is dispatched.
	OnEvent(event Event) error

	// Name returns a human-readable name for logging.
	Name() string

	// ShouldHandle filters which event types this observer receives.
	ShouldHandle(eventType string) bool
}

// Dispatcher distributes events to registered observers.
// Thread-safe for concurrent use.
type Dispatcher struct {
	observers []Observer
	logger    *slog.Logger
	mu        sync.RWMutex
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// Register adds an observer. It will receive all future events that
// pass its ShouldHandle filter.
func (d *Dispatcher) Register(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, observer)
}

// Unregister removes a previously registered observer.
func (d *Dispatcher) Unregister(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, o := range d.observers {
		if o == observer {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			return
		}
	}
}

// Dispatch delivers the event to every interested observer. Observer
// failures are logged and never propagate to the producer.
func (d *Dispatcher) Dispatch(event Event) {
	d.mu.RLock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	d.mu.RUnlock()

	for _, observer := range observers {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		if err := observer.OnEvent(event); err != nil {
			d.logger.Warn("observer failed to handle event",
				"observer", observer.Name(),
				"event_type", event.Type,
				"error", err)
		}
	}
}
