// Package events carries domain events between modules without coupling
// the publisher to its observers. The pipeline publishes outcomes; email
// and logging subscribe. This is part of the platform layer and contains
// no business logic.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event payload.
type Event interface {
	// EventName identifies the event type; subscribers key on it.
	EventName() string
	// OccurredAt is when the event happened.
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp common to all event payloads. Embed
// it and implement EventName on the payload type.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes events of one subscribed type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus routes published events to the handlers subscribed to their name.
type Bus interface {
	// Publish delivers the event to subscribers asynchronously; the
	// publisher never blocks on handler work.
	Publish(ctx context.Context, event Event)

	// PublishSync delivers the event and waits for every handler.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler for the given Event.EventName value.
	Subscribe(eventName string, handler Handler)
}
