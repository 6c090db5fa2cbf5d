package dto

import (
	"time"

	"github.com/spec-kit/event-service/internal/domain"
)

// EventRequest payload for event creation and updates.
type EventRequest struct {
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Venue            string    `json:"venue"`
	Date             time.Time `json:"date"`
	TicketPrice      float64   `json:"ticketPrice"`
	AvailableTickets int       `json:"availableTickets"`
	Image            string    `json:"image"`
}

// EventResponse is the public view of an event.
type EventResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Venue            string    `json:"venue"`
	Date             time.Time `json:"date"`
	TicketPrice      float64   `json:"ticketPrice"`
	AvailableTickets int       `json:"availableTickets"`
	Image            string    `json:"image,omitempty"`
	OrganizerID      string    `json:"organizerId"`
	ParticipantCount int       `json:"participantsCount"`
	CreatedAt        time.Time `json:"created_at"`
}

// RegistrationResponse is returned after a successful registration.
type RegistrationResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	AvailableTickets int    `json:"availableTickets"`
	ParticipantCount int    `json:"participantsCount"`
}

// FeedbackRequest payload.
type FeedbackRequest struct {
	Feedback string `json:"feedback"`
}

// FeedbackResponse view of a feedback entry.
type FeedbackResponse struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEventResponse maps a domain event.
func NewEventResponse(event *domain.Event) EventResponse {
	return EventResponse{
		ID:               event.ID,
		Name:             event.Name,
		Description:      event.Description,
		Venue:            event.Venue,
		Date:             event.Date,
		TicketPrice:      event.TicketPrice,
		AvailableTickets: event.AvailableTickets,
		Image:            event.ImageURL,
		OrganizerID:      event.OrganizerID,
		ParticipantCount: event.ParticipantCount,
		CreatedAt:        event.CreatedAt,
	}
}

// NewEventResponses maps a slice of domain events.
func NewEventResponses(events []domain.Event) []EventResponse {
	result := make([]EventResponse, 0, len(events))
	for i := range events {
		result = append(result, NewEventResponse(&events[i]))
	}
	return result
}

// NewFeedbackResponses maps feedback entries.
func NewFeedbackResponses(entries []domain.Feedback) []FeedbackResponse {
	result := make([]FeedbackResponse, 0, len(entries))
	for _, fb := range entries {
		result = append(result, FeedbackResponse{
			ID:        fb.ID,
			EventID:   fb.EventID,
			UserID:    fb.UserID,
			Comment:   fb.Comment,
			CreatedAt: fb.CreatedAt,
		})
	}
	return result
}
