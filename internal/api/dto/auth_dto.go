package dto

import (
	"time"

	"github.com/spec-kit/event-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	BackgroundInfo string `json:"background_info"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Role      domain.Role `json:"role"`
	UserID    string      `json:"user_id"`
	Username  string      `json:"username"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Role           domain.Role `json:"role"`
	Banned         bool        `json:"banned"`
	ProfilePicture string      `json:"profile_picture,omitempty"`
	BackgroundInfo string      `json:"background_info,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// UpdateProfileRequest payload for partial profile edits.
type UpdateProfileRequest struct {
	Name           *string `json:"name"`
	ProfilePicture *string `json:"profile_picture"`
	BackgroundInfo *string `json:"background_info"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		Banned:         user.Banned,
		ProfilePicture: user.ProfilePicture,
		BackgroundInfo: user.BackgroundInfo,
		CreatedAt:      user.CreatedAt,
	}
}

// NewUserResponses maps a slice of domain users.
func NewUserResponses(users []domain.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for i := range users {
		result = append(result, NewUserResponse(&users[i]))
	}
	return result
}
