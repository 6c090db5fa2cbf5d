package domain

import "time"

// Role enumerates account roles. Checks are exact-match: admin does not
// implicitly satisfy organizer gates.
type Role string

const (
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// User is the domain model for registered accounts.
type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Role           Role
	Banned         bool
	ProfilePicture string
	BackgroundInfo string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
