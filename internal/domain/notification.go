package domain

import "time"

// Notification targets a single user and references the event that caused
// it. Only the read flag is ever mutated after creation.
type Notification struct {
	ID        string
	UserID    string
	EventID   string
	Message   string
	Read      bool
	CreatedAt time.Time
}
