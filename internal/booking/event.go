package booking

import "context"

type EventType string

const (
	EventCreated   EventType = "booking.created"
	EventConfirmed EventType = "booking.confirmed"
	EventCancelled EventType = "booking.cancelled"
)

// Event describes a lifecycle change for the counter-party to be told about.
type Event struct {
	Type    EventType
	Booking Booking
	ActorID string
	// ByCustomer is set on cancellations made by the booking's own player.
	ByCustomer bool
	Reason     string
}

// Publisher delivers booking events. Publish must not block on delivery and
// its outcome never affects the transition that produced the event.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}
