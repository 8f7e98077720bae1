package websocket

import (
	"github.com/mtgbinder/mtgbinder/internal/events"
)

// EventForwarder relays dispatched application events to the hub so
// connected clients see imports and trade activity as they happen. It
// implements events.Observer.
type EventForwarder struct {
	hub *Hub
}

// NewEventForwarder creates a forwarder that broadcasts to the given
// hub.
func NewEventForwarder(hub *Hub) *EventForwarder {
	return &EventForwarder{hub: hub}
}

// OnEvent broadcasts the event to all connected clients.
func (f *EventForwarder) OnEvent(event events.Event) error {
	f.hub.Broadcast(Message{Type: event.Type, Data: event.Data})
	return nil
}

// Name returns the observer name.
func (f *EventForwarder) Name() string {
	return "websocket"
}

// ShouldHandle forwards every event type.
func (f *EventForwarder) ShouldHandle(string) bool {
	return true
}
