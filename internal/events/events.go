// Package events defines the domain event types the membership engine reacts
// to, the event envelope, and the inbound queue the engine consumes. How
// events reach the queue (webhook, message broker, polling) is the caller's
// concern; the engine only ever reads from the Bus.
package events

import (
	"github.com/google/uuid"
)

// Domain event types criterion types can subscribe to.
const (
	// SessionLoginCompleted is emitted when a user completes a login.
	SessionLoginCompleted = "org.openedx.learning.auth.session.login.completed.v1"
	// CourseEnrollmentCreated is emitted when a user enrolls in a course.
	CourseEnrollmentCreated = "org.openedx.learning.course.enrollment.created.v1"
	// CourseEnrollmentChanged is emitted when an existing enrollment changes.
	CourseEnrollmentChanged = "org.openedx.learning.course.enrollment.changed.v1"
	// UserStaffStatusChanged is emitted when a user's staff status changes.
	UserStaffStatusChanged = "org.openedx.learning.user.staff_status.changed.v1"
)

// Event is the envelope for one incoming domain event. Data carries the
// event's payload as loosely structured key/value pairs; the subject user is
// identified by the "id" key.
type Event struct {
	// ID uniquely identifies this event delivery.
	ID uuid.UUID `json:"id"`
	// Type is the domain event type.
	Type string `json:"type"`
	// Data is the event payload.
	Data map[string]any `json:"data"`
}

// UserID extracts the subject user identifier from the event payload.
// It returns false when the payload carries no usable user id.
func (e Event) UserID() (uint64, bool) {
	raw, ok := e.Data["id"]
	if !ok {
		return 0, false
	}

	switch v := raw.(type) {
	case uint64:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}

		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}

		return uint64(v), true
	case float64:
		// JSON numbers decode as float64.
		if v < 0 || v != float64(uint64(v)) {
			return 0, false
		}

		return uint64(v), true
	default:
		return 0, false
	}
}

// NewEvent builds an event envelope with a fresh delivery ID.
func NewEvent(eventType string, data map[string]any) Event {
	return Event{
		ID:   uuid.New(),
		Type: eventType,
		Data: data,
	}
}

// Bus is the buffered inbound event queue the engine consumes. Producers
// (webhook handlers, broker consumers) publish into it; the worker pool reads
// from it. Closing the bus stops the workers.
type Bus struct {
	ch chan Event
}

// NewBus creates a bus with the given buffer size.
func NewBus(size int) *Bus {
	return &Bus{ch: make(chan Event, size)}
}

// Publish enqueues an event. It reports false when the queue is full instead
// of blocking the producer.
func (b *Bus) Publish(e Event) bool {
	select {
	case b.ch <- e:
		return true
	default:
		return false
	}
}

// Events returns the receive side of the queue.
func (b *Bus) Events() <-chan Event {
	return b.ch
}

// Close closes the queue. Publish must not be called after Close.
func (b *Bus) Close() {
	close(b.ch)
}
