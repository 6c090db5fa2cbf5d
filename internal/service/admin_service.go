package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/repository"
	apperrors "github.com/spec-kit/event-service/pkg/util"
)

// AdminService covers moderation: bans, role changes, deletions, reports.
type AdminService struct {
	users  repository.UserRepository
	events repository.EventRepository
}

// NewAdminService constructs the service.
func NewAdminService(users repository.UserRepository, events repository.EventRepository) *AdminService {
	return &AdminService{users: users, events: events}
}

// ListUsers returns every account.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// ListOrganizers returns accounts holding the organizer role.
func (s *AdminService) ListOrganizers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListByRole(ctx, domain.RoleOrganizer)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// SetBanned bans or unbans a user.
func (s *AdminService) SetBanned(ctx context.Context, userID string, banned bool) (*domain.User, error) {
	user, err := s.users.SetBanned(ctx, userID, banned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// PromoteRole escalates a user to organizer or admin.
func (s *AdminService) PromoteRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}
	user, err := s.users.UpdateRole(ctx, userID, role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// DeleteUser removes an account.
func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.MapError(err)
	}
	return nil
}

// UserActivityEntry is one row in the user activity report.
type UserActivityEntry struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
	Banned       bool      `json:"banned"`
}

// UserActivityReport summarizes every account for moderation review.
func (s *AdminService) UserActivityReport(ctx context.Context) ([]UserActivityEntry, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	report := make([]UserActivityEntry, 0, len(users))
	for _, user := range users {
		report = append(report, UserActivityEntry{
			Name:         user.Name,
			Email:        user.Email,
			RegisteredAt: user.CreatedAt,
			Banned:       user.Banned,
		})
	}
	return report, nil
}
