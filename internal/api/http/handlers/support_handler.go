package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/classpulse/support-service/internal/api/dto"
	"github.com/classpulse/support-service/internal/auth"
	"github.com/classpulse/support-service/internal/domain"
	"github.com/classpulse/support-service/internal/service"
	apperrors "github.com/classpulse/support-service/pkg/util/errorutil"
)

// SupportHandler exposes ticket lifecycle endpoints.
type SupportHandler struct {
	support *service.SupportService
}

// NewSupportHandler constructs the handler.
func NewSupportHandler(support *service.SupportService) *SupportHandler {
	return &SupportHandler{support: support}
}

// Create POST /support.
func (h *SupportHandler) Create(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.support.CreateTicket(c.Context(), actor, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.TicketType,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// List GET /support.
func (h *SupportHandler) List(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	filter := parseTicketListQuery(c)
	tickets, total, err := h.support.ListTickets(c.Context(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.FromTicket(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": dto.TicketListResponse{
		Items: items,
		Pagination: dto.Pagination{
			Total:  total,
			Limit:  filter.Limit,
			Offset: filter.Offset,
		},
	}})
}

// Get GET /support/:id.
func (h *SupportHandler) Get(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	ticket, responses, err := h.support.GetTicket(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	detail := dto.TicketDetailResponse{
		TicketResponse: dto.FromTicket(ticket),
		Responses:      make([]dto.ResponseItem, 0, len(responses)),
	}
	for i := range responses {
		detail.Responses = append(detail.Responses, dto.FromResponse(&responses[i]))
	}
	return c.JSON(fiber.Map{"data": detail})
}

// Respond POST /support/:id/response.
func (h *SupportHandler) Respond(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	response, _, err := h.support.AddResponse(c.Context(), actor, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromResponse(response)})
}

// UpdateStatus PATCH /support/:id/status.
func (h *SupportHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.support.UpdateStatus(c.Context(), actor, c.Params("id"), service.StatusUpdateInput{
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Close POST /support/:id/close.
func (h *SupportHandler) Close(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	ticket, err := h.support.CloseTicket(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Reopen POST /support/:id/reopen.
func (h *SupportHandler) Reopen(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	ticket, err := h.support.ReopenTicket(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Assign POST /support/:id/assign.
func (h *SupportHandler) Assign(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.AssignedTo) == "" {
		return apperrors.NewValidationError("assigned_to is required", nil)
	}
	ticket, err := h.support.AssignTicket(c.Context(), actor, c.Params("id"), req.AssignedTo)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Reassign POST /support/:id/reassign.
func (h *SupportHandler) Reassign(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.AssignedTo) == "" {
		return apperrors.NewValidationError("assigned_to is required", nil)
	}
	ticket, err := h.support.ReassignTicket(c.Context(), actor, c.Params("id"), req.AssignedTo)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Escalate POST /support/:id/escalate.
func (h *SupportHandler) Escalate(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.EscalateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.support.EscalateTicket(c.Context(), actor, c.Params("id"), req.AssignedTo)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Assignees GET /support/assignees.
func (h *SupportHandler) Assignees(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	ticketType := domain.TicketType(c.Query("ticket_type"))
	assignees, err := h.support.ListAssignees(c.Context(), actor, ticketType)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(assignees))
	for i := range assignees {
		items = append(items, dto.FromUser(&assignees[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// History GET /support/:id/history.
func (h *SupportHandler) History(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	entries, err := h.support.ListHistory(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.HistoryItem, 0, len(entries))
	for i := range entries {
		items = append(items, dto.FromHistory(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func requireActor(c *fiber.Ctx) (domain.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return domain.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return principal.Actor(), nil
}

func parseTicketListQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if status := c.Query("status"); status != "" {
		parsed := domain.TicketStatus(status)
		filter.Status = &parsed
	}
	if ticketType := c.Query("ticket_type"); ticketType != "" {
		parsed := domain.TicketType(ticketType)
		filter.Type = &parsed
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	filter.Limit = parseIntQuery(c.Query("limit"), 20)
	filter.Offset = parseIntQuery(c.Query("offset"), 0)
	return filter
}

func parseIntQuery(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}
