package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/classpulse/support-service/internal/cache"
	"github.com/classpulse/support-service/internal/domain"
	"github.com/classpulse/support-service/internal/events"
	"github.com/classpulse/support-service/internal/repository"
	apperrors "github.com/classpulse/support-service/pkg/util/errorutil"
)

// SupportService owns the ticket lifecycle: creation with auto-assignment,
// responses with status inference, explicit status changes, assignment,
// reassignment, escalation, close and reopen. Every operation loads current
// state, checks the actor's permission, computes the new state and writes it
// back through the versioned ticket store.
type SupportService struct {
	tickets    repository.TicketRepository
	responses  repository.ResponseRepository
	staff      repository.StaffDirectory
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	cache      *cache.TicketCache
}

// SupportDependencies bundles collaborators for the support service.
type SupportDependencies struct {
	TicketRepo   repository.TicketRepository
	ResponseRepo repository.ResponseRepository
	Staff        repository.StaffDirectory
	HistoryRepo  repository.TicketHistoryRepository
	Dispatcher   events.Dispatcher
	Cache        *cache.TicketCache
}

// NewSupportService constructs the service.
func NewSupportService(deps SupportDependencies) *SupportService {
	return &SupportService{
		tickets:    deps.TicketRepo,
		responses:  deps.ResponseRepo,
		staff:      deps.Staff,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		cache:      deps.Cache,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Type        domain.TicketType
}

// StatusUpdateInput describes an explicit status change.
type StatusUpdateInput struct {
	Status     domain.TicketStatus
	AssignedTo *string
}

// TicketListFilter describes listing parameters before role scoping.
type TicketListFilter struct {
	Status     *domain.TicketStatus
	Type       *domain.TicketType
	SearchTerm *string
	Limit      int
	Offset     int
}

// CreateTicket opens a ticket for a student. Auto-assignment picks the
// preferred staff member for the ticket type; when someone is found the
// ticket starts in progress, otherwise it stays open.
func (s *SupportService) CreateTicket(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if err := requireActive(actor); err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleStudent {
		return nil, apperrors.NewForbidden("Only students can open support tickets")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" {
		return nil, apperrors.NewValidationError("Title is required", nil)
	}
	if description == "" {
		return nil, apperrors.NewValidationError("Description is required", nil)
	}
	if !domain.ValidTicketType(input.Type) {
		return nil, apperrors.NewValidationError("Invalid ticket type", map[string]any{"ticket_type": input.Type})
	}

	assignee, err := s.staff.FindEligibleAssignee(ctx, input.Type)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		OwnerID:     actor.ID,
		Type:        input.Type,
		Status:      domain.TicketStatusOpen,
		Title:       title,
		Description: description,
	}
	if assignee != nil {
		ticket.AssignedTo = &assignee.ID
		ticket.Status = domain.TicketStatusInProgress
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			OwnerID:    ticket.OwnerID,
			Type:       ticket.Type,
			Status:     ticket.Status,
			AssignedTo: ticket.AssignedTo,
			Title:      ticket.Title,
		},
	})
	return ticket, nil
}

// GetTicket returns the ticket with its response thread, enforcing
// role-scoped access: students see their own tickets, teachers their
// assigned academic tickets, admins everything.
func (s *SupportService) GetTicket(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, []domain.Response, error) {
	if snap := s.cache.Get(ctx, ticketID); snap != nil {
		if err := s.canView(actor, &snap.Ticket); err != nil {
			return nil, nil, err
		}
		return &snap.Ticket, snap.Responses, nil
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.canView(actor, ticket); err != nil {
		return nil, nil, err
	}
	responses, err := s.responses.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	s.cache.Set(ctx, cache.TicketSnapshot{Ticket: *ticket, Responses: responses})
	return ticket, responses, nil
}

// ListTickets returns tickets visible to the actor with pagination.
func (s *SupportService) ListTickets(ctx context.Context, actor domain.Actor, filter TicketListFilter) ([]domain.Ticket, int, error) {
	repoFilter := repository.TicketFilter{
		Status:     filter.Status,
		Type:       filter.Type,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	switch actor.Role {
	case domain.RoleStudent:
		ownerID := actor.ID
		repoFilter.OwnerID = &ownerID
	case domain.RoleTeacher:
		assigneeID := actor.ID
		academic := domain.TicketTypeAcademic
		repoFilter.AssignedTo = &assigneeID
		repoFilter.Type = &academic
	}
	tickets, total, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return tickets, total, nil
}

// AddResponse appends a response and infers the next status from who
// responded. The inferred status is written with the same version check as
// any explicit transition.
func (s *SupportService) AddResponse(ctx context.Context, actor domain.Actor, ticketID, content string) (*domain.Response, *domain.Ticket, error) {
	if err := requireActive(actor); err != nil {
		return nil, nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, apperrors.NewValidationError("Content is required", nil)
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	isOwner := ticket.OwnerID == actor.ID
	isAssignee := ticket.AssignedToUser(actor.ID)
	if err := canRespond(actor, isOwner, isAssignee, ticket.Status); err != nil {
		return nil, nil, err
	}

	response := &domain.Response{
		TicketID: ticket.ID,
		AuthorID: actor.ID,
		Content:  content,
	}
	if err := s.responses.Create(ctx, response); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	oldStatus := ticket.Status
	ticket.Status = inferStatus(ticket.Status, isOwner, isAssignee)
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, nil, s.mapTicketErr(err, ticket.ID)
	}
	if ticket.Status != oldStatus {
		s.recordStatusChange(ctx, actor, ticket.ID, oldStatus, ticket.Status)
	}
	s.cache.Invalidate(ctx, ticket.ID)
	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketResponded,
		TicketID: ticket.ID,
		Payload: events.TicketRespondedPayload{
			ResponseID:     response.ID,
			AuthorID:       response.AuthorID,
			InferredStatus: ticket.Status,
		},
	})
	return response, ticket, nil
}

// UpdateStatus performs an explicit status change, optionally updating the
// assignee in the same transition.
func (s *SupportService) UpdateStatus(ctx context.Context, actor domain.Actor, ticketID string, input StatusUpdateInput) (*domain.Ticket, error) {
	if err := requireActive(actor); err != nil {
		return nil, err
	}
	if !domain.ValidTicketStatus(input.Status) {
		return nil, apperrors.NewValidationError("Invalid status", map[string]any{"status": input.Status})
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	isOwner := ticket.OwnerID == actor.ID
	isAssignee := ticket.AssignedToUser(actor.ID)
	if err := canChangeStatus(actor, isOwner, isAssignee, ticket.Type, ticket.Status, input.Status); err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	oldAssignee := ticket.AssignedTo
	if input.AssignedTo != nil {
		assignee, err := s.resolveAssignee(ctx, *input.AssignedTo)
		if err != nil {
			return nil, err
		}
		if err := validateAssignee(assignee, ticket.Type); err != nil {
			return nil, err
		}
		ticket.AssignedTo = &assignee.ID
	}
	ticket.Status = input.Status

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, s.mapTicketErr(err, ticket.ID)
	}
	if ticket.Status != oldStatus {
		s.recordStatusChange(ctx, actor, ticket.ID, oldStatus, ticket.Status)
	}
	if !equalAssignee(oldAssignee, ticket.AssignedTo) {
		s.recordAssigneeChange(ctx, actor, ticket.ID, oldAssignee, ticket.AssignedTo)
	}
	s.cache.Invalidate(ctx, ticket.ID)
	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

// CloseTicket closes a ticket on behalf of its owner.
func (s *SupportService) CloseTicket(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	if err := requireActive(actor); err != nil {
		return nil, err
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.OwnerID != actor.ID {
		return nil, apperrors.NewForbidden("You can only close your own tickets")
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewValidationError("Ticket is already closed", nil)
	}

	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusClosed
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, s.mapTicketErr(err, ticket.ID)
	}
	s.recordStatusChange(ctx, actor, ticket.ID, oldStatus, ticket.Status)
	s.cache.Invalidate(ctx, ticket.ID)
	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

// ReopenTicket brings a closed ticket back to open. Assignment is left as
// it was; escalation or auto-routing can pick it up again.
func (s *SupportService) ReopenTicket(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	if err := requireActive(actor); err != nil {
		return nil, err
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := canReopen(actor, ticket.OwnerID == actor.ID); err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketStatusClosed {
		return nil, apperrors.NewValidationError("Only closed tickets can be reopened", nil)
	}

	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusOpen
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, s.mapTicketErr(err, ticket.ID)
	}
	s.recordStatusChange(ctx, actor, ticket.ID, oldStatus, ticket.Status)
	s.cache.Invalidate(ctx, ticket.ID)
	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

// AssignTicket gives an unassigned ticket to a staff member and moves it
// into progress. Admin only.
func (s *SupportService) AssignTicket(ctx context.Context, actor domain.Actor, ticketID, staffID string) (*domain.Ticket, error) {
	if err := requireActive(actor); err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("Only admins can assign tickets")
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewForbidden("Closed tickets can only be reopened")
	}
	if ticket.IsAssigned() {
		return nil, apperrors.NewValidationError("Ticket is already assigned", map[string]any{"assigned_to": *ticket.AssignedTo})
	}
	assignee, err := s.resolveAssignee(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if err := validateAssignee(assignee, ticket.Type); err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	ticket.AssignedTo = &assignee.ID
	ticket.Status = domain.TicketStatusInProgress
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, s.mapTicketErr(err, ticket.ID)
	}
	s.recordAssigneeChange(ctx, actor, ticket.ID, nil, ticket.AssignedTo)
	if ticket.Status != oldStatus {
		s.recordStatusChange(ctx, actor, ticket.ID, oldStatus, ticket.Status)
	}
	s.cache.Invalidate(ctx, ticket.ID)
	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Payload: events.TicketAssignedPayload{
			OldAssignee: nil,
			NewAssignee: ticket.AssignedTo,
		},
	})
	return ticket, nil
}

// ReassignTicket hands an already-assigned ticket to a different staff
// member without touching the status. Admin only.
func (s *SupportService) ReassignTicket(ctx context.Context, actor domain.Actor, ticketID, staffID string) (*domain.Ticket, error) {
	if err := requireActive(actor); err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("Only admins can reassign tickets")
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewForbidden("Closed tickets can only be reopened")
	}
	if !ticket.IsAssigned() {
		return nil, apperrors.NewValidationError("Ticket is not assigned yet", nil)
	}
	assignee, err := s.resolveAssignee(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if err := validateAssignee(assignee, ticket.Type); err != nil {
		return nil, err
	}

	oldAssignee := ticket.AssignedTo
	ticket.AssignedTo = &assignee.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, s.mapTicketErr(err, ticket.ID)
	}
	s.recordAssigneeChange(ctx, actor, ticket.ID, oldAssignee, ticket.AssignedTo)
	s.cache.Invalidate(ctx, ticket.ID)
	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Payload: events.TicketAssignedPayload{
			OldAssignee: oldAssignee,
			NewAssignee: ticket.AssignedTo,
		},
	})
	return ticket, nil
}

// EscalateTicket forces a ticket back into active handling, optionally
// handing it to a new assignee. Admin only.
func (s *SupportService) EscalateTicket(ctx context.Context, actor domain.Actor, ticketID string, staffID *string) (*domain.Ticket, error) {
	if err := requireActive(actor); err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("Only admins can escalate tickets")
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewForbidden("Closed tickets can only be reopened")
	}

	oldStatus := ticket.Status
	oldAssignee := ticket.AssignedTo
	if staffID != nil {
		assignee, err := s.resolveAssignee(ctx, *staffID)
		if err != nil {
			return nil, err
		}
		if err := validateAssignee(assignee, ticket.Type); err != nil {
			return nil, err
		}
		ticket.AssignedTo = &assignee.ID
	}
	ticket.Status = domain.TicketStatusInProgress

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, s.mapTicketErr(err, ticket.ID)
	}
	if ticket.Status != oldStatus {
		s.recordStatusChange(ctx, actor, ticket.ID, oldStatus, ticket.Status)
	}
	if !equalAssignee(oldAssignee, ticket.AssignedTo) {
		s.recordAssigneeChange(ctx, actor, ticket.ID, oldAssignee, ticket.AssignedTo)
	}
	s.cache.Invalidate(ctx, ticket.ID)
	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

// ListAssignees returns staff eligible to handle tickets of the given type.
// Staff only.
func (s *SupportService) ListAssignees(ctx context.Context, actor domain.Actor, ticketType domain.TicketType) ([]domain.User, error) {
	if !actor.Role.IsStaff() {
		return nil, apperrors.NewForbidden("Only staff can view assignees")
	}
	if !domain.ValidTicketType(ticketType) {
		return nil, apperrors.NewValidationError("Invalid ticket type", map[string]any{"ticket_type": ticketType})
	}
	assignees, err := s.staff.ListAssignable(ctx, ticketType)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return assignees, nil
}

// ListHistory returns the audit trail for a ticket, subject to the same
// visibility rules as the ticket itself.
func (s *SupportService) ListHistory(ctx context.Context, actor domain.Actor, ticketID string) ([]domain.TicketHistory, error) {
	if s.history == nil {
		return []domain.TicketHistory{}, nil
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.canView(actor, ticket); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *SupportService) canView(actor domain.Actor, ticket *domain.Ticket) error {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleStudent:
		if ticket.OwnerID == actor.ID {
			return nil
		}
		return apperrors.NewForbidden("You can only view your own tickets")
	case domain.RoleTeacher:
		if ticket.Type == domain.TicketTypeAcademic && ticket.AssignedToUser(actor.ID) {
			return nil
		}
		return apperrors.NewForbidden("You can only view assigned academic tickets")
	}
	return apperrors.NewForbidden("Unknown role")
}

func (s *SupportService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, s.mapTicketErr(err, ticketID)
	}
	return ticket, nil
}

func (s *SupportService) resolveAssignee(ctx context.Context, staffID string) (*domain.User, error) {
	assignee, err := s.staff.GetStaff(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("Assignee not found or inactive", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return assignee, nil
}

func (s *SupportService) mapTicketErr(err error, ticketID string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if errors.Is(err, repository.ErrVersionConflict) {
		return apperrors.NewConflict("Ticket was modified concurrently", map[string]any{"ticket_id": ticketID})
	}
	return apperrors.MapError(err)
}

func (s *SupportService) recordStatusChange(ctx context.Context, actor domain.Actor, ticketID string, oldStatus, newStatus domain.TicketStatus) {
	if s.history == nil {
		return
	}
	actorID := actor.ID
	_ = s.history.Create(ctx, &domain.TicketHistory{
		TicketID:   ticketID,
		ActorID:    &actorID,
		ChangeType: domain.ChangeTypeStatus,
		OldValue:   map[string]any{"status": oldStatus},
		NewValue:   map[string]any{"status": newStatus},
	})
}

func (s *SupportService) recordAssigneeChange(ctx context.Context, actor domain.Actor, ticketID string, oldAssignee, newAssignee *string) {
	if s.history == nil {
		return
	}
	actorID := actor.ID
	_ = s.history.Create(ctx, &domain.TicketHistory{
		TicketID:   ticketID,
		ActorID:    &actorID,
		ChangeType: domain.ChangeTypeAssignee,
		OldValue:   map[string]any{"assigned_to": oldAssignee},
		NewValue:   map[string]any{"assigned_to": newAssignee},
	})
}

func (s *SupportService) publishEvent(ctx context.Context, actor domain.Actor, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.ActorID = actor.ID
	event.ActorRole = actor.Role
	_ = s.dispatcher.Publish(ctx, event)
}

func requireActive(actor domain.Actor) error {
	if !actor.IsActive {
		return apperrors.NewForbidden("Account is suspended")
	}
	return nil
}

func equalAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
