package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/events"
	"github.com/spec-kit/event-service/internal/observability"
	"github.com/spec-kit/event-service/internal/repository"
	apperrors "github.com/spec-kit/event-service/pkg/util"
)

// registerAttempts bounds how often a lost conditional-update race is
// retried before VERSION_CONFLICT surfaces to the caller.
const registerAttempts = 3

// EventCache caches event detail lookups.
type EventCache interface {
	Get(ctx context.Context, eventID string) *domain.Event
	Set(ctx context.Context, event *domain.Event)
	Invalidate(ctx context.Context, eventID string)
}

// EventService coordinates event workflows, including the capacity-controlled
// registration path.
type EventService struct {
	events     repository.EventRepository
	users      repository.UserRepository
	cache      EventCache
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

// EventDependencies bundles collaborators for the event service.
type EventDependencies struct {
	EventRepo  repository.EventRepository
	UserRepo   repository.UserRepository
	Cache      EventCache
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
}

// EventInput describes event creation/update payloads.
type EventInput struct {
	Name             string
	Description      string
	Venue            string
	Date             time.Time
	TicketPrice      float64
	AvailableTickets int
	ImageURL         string
}

// NewEventService constructs the service.
func NewEventService(deps EventDependencies) *EventService {
	return &EventService{
		events:     deps.EventRepo,
		users:      deps.UserRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
	}
}

// CreateEvent creates an event owned by the organizer and triggers the
// broadcast notification fan-out.
func (s *EventService) CreateEvent(ctx context.Context, organizerID string, input EventInput) (*domain.Event, error) {
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	event := &domain.Event{
		Name:             strings.TrimSpace(input.Name),
		Description:      strings.TrimSpace(input.Description),
		Venue:            strings.TrimSpace(input.Venue),
		Date:             input.Date,
		TicketPrice:      input.TicketPrice,
		Capacity:         input.AvailableTickets,
		AvailableTickets: input.AvailableTickets,
		ImageURL:         input.ImageURL,
		OrganizerID:      organizerID,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventCreated,
		EventID: event.ID,
		ActorID: organizerID,
		Payload: events.EventCreatedPayload{
			Name:        event.Name,
			OrganizerID: event.OrganizerID,
		},
	})
	return event, nil
}

// GetEvent returns an event, serving repeated lookups from cache.
func (s *EventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	if s.cache != nil {
		if cached := s.cache.Get(ctx, id); cached != nil {
			return cached, nil
		}
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if s.cache != nil {
		s.cache.Set(ctx, event)
	}
	return event, nil
}

// EventFilter narrows public event listings. Venue matches case-insensitive
// substrings; From keeps only events on or after that instant.
type EventFilter struct {
	Venue string
	From  time.Time
}

// ListEvents returns events newest first, optionally filtered.
func (s *EventService) ListEvents(ctx context.Context, filter EventFilter) ([]domain.Event, error) {
	list, err := s.events.List(ctx, repository.EventFilter{
		Venue: strings.TrimSpace(filter.Venue),
		From:  filter.From,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// UpdateEvent replaces mutable event fields.
func (s *EventService) UpdateEvent(ctx context.Context, id string, input EventInput) (*domain.Event, error) {
	if err := validateEventInput(input); err != nil {
		return nil, err
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", nil)
		}
		return nil, apperrors.MapError(err)
	}

	event.Name = strings.TrimSpace(input.Name)
	event.Description = strings.TrimSpace(input.Description)
	event.Venue = strings.TrimSpace(input.Venue)
	event.Date = input.Date
	event.TicketPrice = input.TicketPrice
	event.AvailableTickets = input.AvailableTickets
	event.ImageURL = input.ImageURL

	if err := s.events.Update(ctx, event); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", nil)
		}
		return nil, apperrors.MapError(err)
	}
	s.invalidateCache(ctx, id)
	return event, nil
}

// DeleteEvent removes an event.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.events.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("event", nil)
		}
		return apperrors.MapError(err)
	}
	s.invalidateCache(ctx, id)
	s.publishEvent(ctx, events.Event{Type: events.EventDeleted, EventID: id})
	return nil
}

// Register registers the user for the event with an atomic ticket decrement.
//
// Preconditions are checked in a fixed order (first failure wins): event
// exists, tickets remain, not already registered, participant count below
// capacity. The mutation itself is a conditional update keyed on the ticket
// count read here; when a concurrent registration moves the counter first,
// the attempt is retried from a fresh read up to registerAttempts times.
func (s *EventService) Register(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	for attempt := 0; attempt < registerAttempts; attempt++ {
		event, err := s.events.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("event", nil)
			}
			return nil, apperrors.MapError(err)
		}
		if event.AvailableTickets <= 0 {
			return nil, apperrors.NewSoldOut()
		}
		already, err := s.events.IsParticipant(ctx, eventID, userID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if already {
			return nil, apperrors.NewAlreadyRegistered()
		}
		if event.ParticipantCount >= event.Capacity {
			return nil, apperrors.NewSoldOut()
		}

		updated, err := s.events.ConditionalRegister(ctx, eventID, event.AvailableTickets, userID)
		if errors.Is(err, repository.ErrVersionConflict) {
			s.metrics.RecordRegistrationConflict()
			continue
		}
		if errors.Is(err, repository.ErrDuplicateParticipant) {
			return nil, apperrors.NewAlreadyRegistered()
		}
		if err != nil {
			return nil, apperrors.MapError(err)
		}

		s.invalidateCache(ctx, eventID)
		s.publishRegistration(ctx, updated, userID)
		return updated, nil
	}
	return nil, apperrors.NewVersionConflict()
}

// ListRegisteredEvents returns events the user participates in.
func (s *EventService) ListRegisteredEvents(ctx context.Context, userID string) ([]domain.Event, error) {
	list, err := s.events.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// ListOrganizerEvents returns events owned by the organizer.
func (s *EventService) ListOrganizerEvents(ctx context.Context, organizerID string) ([]domain.Event, error) {
	list, err := s.events.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// GetOrganizerEvent returns an event with its participant list.
func (s *EventService) GetOrganizerEvent(ctx context.Context, eventID string) (*domain.Event, []domain.User, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("event", nil)
		}
		return nil, nil, apperrors.MapError(err)
	}
	participants, err := s.events.ListParticipants(ctx, eventID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return event, participants, nil
}

// AddFeedback appends a user comment to the event.
func (s *EventService) AddFeedback(ctx context.Context, eventID, userID, comment string) (*domain.Feedback, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, apperrors.NewValidationError("feedback comment required", nil)
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", nil)
		}
		return nil, apperrors.MapError(err)
	}

	feedback := &domain.Feedback{
		EventID: eventID,
		UserID:  userID,
		Comment: comment,
	}
	if err := s.events.AddFeedback(ctx, feedback); err != nil {
		return nil, apperrors.MapError(err)
	}
	return feedback, nil
}

// ListFeedback returns event feedback for the owning organizer.
func (s *EventService) ListFeedback(ctx context.Context, eventID, callerID string) ([]domain.Feedback, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if event.OrganizerID != callerID {
		return nil, apperrors.NewForbidden("not the event organizer")
	}
	list, err := s.events.ListFeedback(ctx, eventID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

func (s *EventService) invalidateCache(ctx context.Context, eventID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, eventID)
	}
}

func (s *EventService) publishRegistration(ctx context.Context, event *domain.Event, userID string) {
	if s.dispatcher == nil {
		return
	}
	payload := events.UserRegisteredPayload{
		UserID:      userID,
		OrganizerID: event.OrganizerID,
		EventName:   event.Name,
		EventVenue:  event.Venue,
		EventDate:   event.Date,
	}
	if user, err := s.users.GetByID(ctx, userID); err == nil {
		payload.UserName = user.Name
		payload.UserEmail = user.Email
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.UserRegistered,
		EventID: event.ID,
		ActorID: userID,
		Payload: payload,
	})
}

// publishEvent dispatches asynchronously; side effects are best-effort and
// never block or fail the triggering request.
func (s *EventService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	go func(ctx context.Context) {
		_ = s.dispatcher.Publish(ctx, event)
	}(context.WithoutCancel(ctx))
}

func validateEventInput(input EventInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "required"
	}
	if strings.TrimSpace(input.Description) == "" {
		details["description"] = "required"
	}
	if strings.TrimSpace(input.Venue) == "" {
		details["venue"] = "required"
	}
	if input.Date.IsZero() {
		details["date"] = "required"
	}
	if input.TicketPrice < 0 {
		details["ticket_price"] = "must not be negative"
	}
	if input.AvailableTickets <= 0 {
		details["available_tickets"] = "must be a positive integer"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid event payload", details)
	}
	return nil
}
