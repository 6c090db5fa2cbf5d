package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/events"
	"github.com/spec-kit/event-service/internal/mailer"
	"github.com/spec-kit/event-service/internal/repository"
	apperrors "github.com/spec-kit/event-service/pkg/util"
)

// NotificationService produces notifications as side effects of domain
// events. Emission failures are logged and swallowed; they never propagate
// to the operation that triggered them.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	dispatcher    events.Dispatcher
	mail          mailer.Mailer
	logger        *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	dispatcher events.Dispatcher,
	mail mailer.Mailer,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		dispatcher:    dispatcher,
		mail:          mail,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to domain events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCreated, n.handleEventCreated)
	n.dispatcher.Subscribe(events.UserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventDeleted, n.handleEventDeleted)
}

// ListForUser returns the user's notifications newest first.
func (n *NotificationService) ListForUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	list, err := n.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// MarkRead flips the read flag and returns the updated notification.
func (n *NotificationService) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	notification, err := n.notifications.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("notification", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return notification, nil
}

// Broadcast creates one notification per existing user, skipping users who
// already hold an unread notification for the event. Safe to retry.
func (n *NotificationService) Broadcast(ctx context.Context, eventID, message string) {
	users, err := n.users.List(ctx)
	if err != nil {
		n.logger.Warn("broadcast aborted: listing users failed", zap.String("event_id", eventID), zap.Error(err))
		return
	}
	for _, user := range users {
		created, err := n.notifications.CreateIfAbsent(ctx, &domain.Notification{
			UserID:  user.ID,
			EventID: eventID,
			Message: message,
		})
		if err != nil {
			n.logger.Warn("broadcast notification failed",
				zap.String("event_id", eventID),
				zap.String("user_id", user.ID),
				zap.Error(err))
			continue
		}
		if !created {
			n.logger.Debug("broadcast notification skipped, already pending",
				zap.String("event_id", eventID),
				zap.String("user_id", user.ID))
		}
	}
}

// Direct creates a single notification for one user.
func (n *NotificationService) Direct(ctx context.Context, userID, eventID, message string) {
	err := n.notifications.Create(ctx, &domain.Notification{
		UserID:  userID,
		EventID: eventID,
		Message: message,
	})
	if err != nil {
		n.logger.Warn("direct notification failed",
			zap.String("event_id", eventID),
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

func (n *NotificationService) handleEventCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.EventCreatedPayload)
	if !ok {
		return nil
	}
	n.Broadcast(ctx, event.EventID, fmt.Sprintf("A new event has been added: %s", payload.Name))
	return nil
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		return nil
	}

	n.Direct(ctx, payload.OrganizerID, event.EventID,
		fmt.Sprintf("A new user has registered for an event: %s", payload.EventName))

	n.sendConfirmationEmail(ctx, payload)
	return nil
}

// handleEventDeleted drops notifications that advertise an event that no
// longer exists.
func (n *NotificationService) handleEventDeleted(ctx context.Context, event events.Event) error {
	removed, err := n.notifications.DeleteByEvent(ctx, event.EventID)
	if err != nil {
		n.logger.Warn("notification cleanup failed", zap.String("event_id", event.EventID), zap.Error(err))
		return nil
	}
	if removed > 0 {
		n.logger.Info("removed notifications for deleted event",
			zap.String("event_id", event.EventID),
			zap.Int64("count", removed))
	}
	return nil
}

func (n *NotificationService) sendConfirmationEmail(ctx context.Context, payload events.UserRegisteredPayload) {
	if n.mail == nil || payload.UserEmail == "" {
		return
	}
	subject := fmt.Sprintf("Registration Confirmation for %s", payload.EventName)
	html := fmt.Sprintf(
		`<h3>Thank you for registering for the event!</h3>
<p><strong>Event:</strong> %s</p>
<p><strong>Date:</strong> %s</p>
<p><strong>Venue:</strong> %s</p>
<p>We look forward to seeing you at the event!</p>`,
		payload.EventName,
		payload.EventDate.Format("Jan 2, 2006"),
		payload.EventVenue,
	)
	if err := n.mail.Send(ctx, payload.UserEmail, subject, html); err != nil {
		n.logger.Warn("confirmation email failed",
			zap.String("to", payload.UserEmail),
			zap.Error(err))
	}
}
