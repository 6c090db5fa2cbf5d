package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-service/internal/api/dto"
	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/service"
	apperrors "github.com/spec-kit/event-service/pkg/util"
)

// EventsHandler exposes event CRUD, registration, and feedback endpoints.
type EventsHandler struct {
	events *service.EventService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(eventService *service.EventService) *EventsHandler {
	return &EventsHandler{events: eventService}
}

// List handles GET /events. Supports optional venue and date query filters.
func (h *EventsHandler) List(c *fiber.Ctx) error {
	filter := service.EventFilter{Venue: c.Query("venue")}
	if raw := c.Query("date"); raw != "" {
		from, err := parseDateFilter(raw)
		if err != nil {
			return apperrors.NewValidationError("invalid date filter", map[string]any{"date": raw})
		}
		filter.From = from
	}

	list, err := h.events.ListEvents(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponses(list)})
}

func parseDateFilter(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// Get handles GET /events/:id.
func (h *EventsHandler) Get(c *fiber.Ctx) error {
	event, err := h.events.GetEvent(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponse(event)})
}

// Create handles POST /addEvent.
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	caller, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	event, err := h.events.CreateEvent(c.Context(), caller.ID, eventInputFromRequest(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewEventResponse(event)})
}

// Update handles PUT /events/:id.
func (h *EventsHandler) Update(c *fiber.Ctx) error {
	var req dto.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	event, err := h.events.UpdateEvent(c.Context(), c.Params("id"), eventInputFromRequest(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponse(event)})
}

// Delete handles DELETE /events/:id.
func (h *EventsHandler) Delete(c *fiber.Ctx) error {
	if err := h.events.DeleteEvent(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Register handles POST /events/register/:id.
func (h *EventsHandler) Register(c *fiber.Ctx) error {
	caller, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	event, err := h.events.Register(c.Context(), c.Params("id"), caller.ID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Registered successfully",
		"event": dto.RegistrationResponse{
			ID:               event.ID,
			Name:             event.Name,
			AvailableTickets: event.AvailableTickets,
			ParticipantCount: event.ParticipantCount,
		},
	})
}

// Registered handles GET /events/registered.
func (h *EventsHandler) Registered(c *fiber.Ctx) error {
	caller, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	list, err := h.events.ListRegisteredEvents(c.Context(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponses(list)})
}

// OrganizerEvents handles GET /organizer/events.
func (h *EventsHandler) OrganizerEvents(c *fiber.Ctx) error {
	caller, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	list, err := h.events.ListOrganizerEvents(c.Context(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponses(list)})
}

// OrganizerEvent handles GET /organizer/events/:id.
func (h *EventsHandler) OrganizerEvent(c *fiber.Ctx) error {
	event, participants, err := h.events.GetOrganizerEvent(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"event":        dto.NewEventResponse(event),
			"participants": dto.NewUserResponses(participants),
		},
	})
}

// AddFeedback handles POST /events/:id/feedback.
func (h *EventsHandler) AddFeedback(c *fiber.Ctx) error {
	caller, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	feedback, err := h.events.AddFeedback(c.Context(), c.Params("id"), caller.ID, req.Feedback)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Feedback added successfully",
		"data": dto.FeedbackResponse{
			ID:        feedback.ID,
			EventID:   feedback.EventID,
			UserID:    feedback.UserID,
			Comment:   feedback.Comment,
			CreatedAt: feedback.CreatedAt,
		},
	})
}

// ListFeedback handles GET /events/:id/feedback.
func (h *EventsHandler) ListFeedback(c *fiber.Ctx) error {
	caller, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	list, err := h.events.ListFeedback(c.Context(), c.Params("id"), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewFeedbackResponses(list)})
}

func eventInputFromRequest(req dto.EventRequest) service.EventInput {
	return service.EventInput{
		Name:             req.Name,
		Description:      req.Description,
		Venue:            req.Venue,
		Date:             req.Date,
		TicketPrice:      req.TicketPrice,
		AvailableTickets: req.AvailableTickets,
		ImageURL:         req.Image,
	}
}
