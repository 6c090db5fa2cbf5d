package domain

import "time"

// Event is the aggregate for published events.
//
// Capacity is the ticket count the event was created with and never changes
// through registration. AvailableTickets counts down from it and must never
// go negative; the pair is only mutated through the event repository's
// conditional registration update.
type Event struct {
	ID               string
	Name             string
	Description      string
	Venue            string
	Date             time.Time
	TicketPrice      float64
	Capacity         int
	AvailableTickets int
	ImageURL         string
	OrganizerID      string
	ParticipantCount int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Feedback is a user comment attached to an event.
type Feedback struct {
	ID        string
	EventID   string
	UserID    string
	Comment   string
	CreatedAt time.Time
}
