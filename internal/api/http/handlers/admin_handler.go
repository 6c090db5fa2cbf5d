package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-service/internal/api/dto"
	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/service"
)

// AdminHandler exposes moderation endpoints.
type AdminHandler struct {
	admin  *service.AdminService
	events *service.EventService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService, eventService *service.EventService) *AdminHandler {
	return &AdminHandler{admin: adminService, events: eventService}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.admin.ListUsers(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(users)})
}

// ListOrganizers handles GET /admin/organizers.
func (h *AdminHandler) ListOrganizers(c *fiber.Ctx) error {
	users, err := h.admin.ListOrganizers(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(users)})
}

// BanUser handles PUT /admin/users/:id/ban.
func (h *AdminHandler) BanUser(c *fiber.Ctx) error {
	user, err := h.admin.SetBanned(c.Context(), c.Params("id"), true)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User has been banned", "data": dto.NewUserResponse(user)})
}

// UnbanUser handles PUT /admin/users/:id/unban.
func (h *AdminHandler) UnbanUser(c *fiber.Ctx) error {
	user, err := h.admin.SetBanned(c.Context(), c.Params("id"), false)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User has been unbanned", "data": dto.NewUserResponse(user)})
}

// PromoteOrganizer handles PUT /admin/users/:id/organizer.
func (h *AdminHandler) PromoteOrganizer(c *fiber.Ctx) error {
	user, err := h.admin.PromoteRole(c.Context(), c.Params("id"), domain.RoleOrganizer)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User is now an organizer", "data": dto.NewUserResponse(user)})
}

// PromoteAdmin handles PUT /admin/users/:id/admin.
func (h *AdminHandler) PromoteAdmin(c *fiber.Ctx) error {
	user, err := h.admin.PromoteRole(c.Context(), c.Params("id"), domain.RoleAdmin)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User is now an admin", "data": dto.NewUserResponse(user)})
}

// DeleteUser handles DELETE /admin/users/:id.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.admin.DeleteUser(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListEvents handles GET /admin/events.
func (h *AdminHandler) ListEvents(c *fiber.Ctx) error {
	list, err := h.events.ListEvents(c.Context(), service.EventFilter{})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponses(list)})
}

// DeleteEvent handles DELETE /admin/events/:id.
func (h *AdminHandler) DeleteEvent(c *fiber.Ctx) error {
	if err := h.events.DeleteEvent(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// UserActivityReport handles GET /admin/reports/user-activity.
func (h *AdminHandler) UserActivityReport(c *fiber.Ctx) error {
	report, err := h.admin.UserActivityReport(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}
