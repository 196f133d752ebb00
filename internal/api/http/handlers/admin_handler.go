package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/classpulse/support-service/internal/api/dto"
	"github.com/classpulse/support-service/internal/domain"
	"github.com/classpulse/support-service/internal/repository"
	"github.com/classpulse/support-service/internal/service"
)

// AdminHandler exposes account governance endpoints.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	users, err := h.admin.ListUsers(c.Context(), actor, parseUserListQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": mapUsers(users)})
}

// PendingTeachers GET /admin/teachers/pending.
func (h *AdminHandler) PendingTeachers(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	users, err := h.admin.PendingTeachers(c.Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": mapUsers(users)})
}

// SuspendUser POST /admin/users/:id/suspend.
func (h *AdminHandler) SuspendUser(c *fiber.Ctx) error {
	return h.mutateUser(c, h.admin.SuspendUser)
}

// ActivateUser POST /admin/users/:id/activate.
func (h *AdminHandler) ActivateUser(c *fiber.Ctx) error {
	return h.mutateUser(c, h.admin.ActivateUser)
}

// ApproveTeacher POST /admin/teachers/:id/approve.
func (h *AdminHandler) ApproveTeacher(c *fiber.Ctx) error {
	return h.mutateUser(c, h.admin.ApproveTeacher)
}

// RejectTeacher POST /admin/teachers/:id/reject.
func (h *AdminHandler) RejectTeacher(c *fiber.Ctx) error {
	return h.mutateUser(c, h.admin.RejectTeacher)
}

func (h *AdminHandler) mutateUser(c *fiber.Ctx, op func(ctx context.Context, actor domain.Actor, userID string) (*domain.User, error)) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	user, err := op(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

func mapUsers(users []domain.User) []dto.UserResponse {
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.FromUser(&users[i]))
	}
	return items
}

func parseUserListQuery(c *fiber.Ctx) repository.UserFilter {
	filter := repository.UserFilter{}
	if role := c.Query("role"); role != "" {
		parsed := domain.Role(role)
		filter.Role = &parsed
	}
	if active := c.Query("is_active"); active != "" {
		if parsed, err := strconv.ParseBool(active); err == nil {
			filter.IsActive = &parsed
		}
	}
	if verified := c.Query("is_verified"); verified != "" {
		if parsed, err := strconv.ParseBool(verified); err == nil {
			filter.IsVerified = &parsed
		}
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	filter.Limit = parseIntQuery(c.Query("limit"), 20)
	filter.Offset = parseIntQuery(c.Query("offset"), 0)
	return filter
}
