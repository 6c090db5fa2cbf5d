package dto

import (
	"time"

	"github.com/spec-kit/event-service/internal/domain"
)

// NotificationResponse view of a notification.
type NotificationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponse maps a domain notification.
func NewNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		EventID:   n.EventID,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// NewNotificationResponses maps a slice of notifications.
func NewNotificationResponses(list []domain.Notification) []NotificationResponse {
	result := make([]NotificationResponse, 0, len(list))
	for i := range list {
		result = append(result, NewNotificationResponse(&list[i]))
	}
	return result
}
