package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCreated   EventType = "event_created"
	UserRegistered EventType = "user_registered"
	EventDeleted   EventType = "event_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EventID   string      `json:"event_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// EventCreatedPayload payload.
type EventCreatedPayload struct {
	Name        string `json:"name"`
	OrganizerID string `json:"organizer_id"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	UserEmail   string    `json:"user_email"`
	OrganizerID string    `json:"organizer_id"`
	EventName   string    `json:"event_name"`
	EventVenue  string    `json:"event_venue"`
	EventDate   time.Time `json:"event_date"`
}
