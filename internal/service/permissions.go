package service

import (
	"github.com/classpulse/support-service/internal/domain"
	apperrors "github.com/classpulse/support-service/pkg/util/errorutil"
)

// The permission matrix lives here, and only here. Every transition the
// support service performs consults these functions; handlers never
// duplicate role checks.

// canChangeStatus evaluates whether the actor may explicitly move the
// ticket from its current status to the target. Returns nil when allowed,
// or a Forbidden error naming the violated rule.
func canChangeStatus(actor domain.Actor, isOwner, isAssignee bool, ticketType domain.TicketType, from, to domain.TicketStatus) error {
	if from == domain.TicketStatusClosed {
		return apperrors.NewForbidden("Closed tickets can only be reopened")
	}

	switch actor.Role {
	case domain.RoleStudent:
		if to != domain.TicketStatusClosed {
			return apperrors.NewForbidden("Students can only close tickets")
		}
		if !isOwner {
			return apperrors.NewForbidden("You can only close your own tickets")
		}
		return nil
	case domain.RoleTeacher:
		if to == domain.TicketStatusClosed {
			return apperrors.NewForbidden("Teachers cannot close tickets")
		}
		if ticketType != domain.TicketTypeAcademic || !isAssignee {
			return apperrors.NewForbidden("You can only update assigned academic tickets")
		}
		return nil
	case domain.RoleAdmin:
		return nil
	}
	return apperrors.NewForbidden("Unknown role")
}

// canRespond evaluates whether the actor may append a response. Owner,
// current assignee, and admins may respond; nobody may respond to a
// closed ticket.
func canRespond(actor domain.Actor, isOwner, isAssignee bool, status domain.TicketStatus) error {
	if status == domain.TicketStatusClosed {
		return apperrors.NewForbidden("Cannot respond to a closed ticket")
	}
	if !isOwner && !isAssignee && actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("Only the ticket owner, the assignee, or an admin can respond")
	}
	return nil
}

// canReopen evaluates the reopen rule: ticket owner or admin.
func canReopen(actor domain.Actor, isOwner bool) error {
	if !isOwner && actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("Only the ticket owner or an admin can reopen tickets")
	}
	return nil
}

// inferStatus derives the next status from who just responded. Status
// tracks whose turn it is to act: a staff reply puts the ticket back in
// progress, an owner reply while staff are working flags it as waiting.
// Every other combination leaves the status alone, so repeated replies
// from the same side never thrash it.
func inferStatus(current domain.TicketStatus, isOwner, isAssignee bool) domain.TicketStatus {
	switch {
	case current == domain.TicketStatusOpen && isAssignee:
		return domain.TicketStatusInProgress
	case current == domain.TicketStatusInProgress && isOwner:
		return domain.TicketStatusWaitingForUser
	case current == domain.TicketStatusWaitingForUser && isAssignee:
		return domain.TicketStatusInProgress
	}
	return current
}

// validateAssignee enforces the type-to-role mapping on any assignment.
// The candidate must exist, be active, and hold the role the ticket type
// requires.
func validateAssignee(assignee *domain.User, ticketType domain.TicketType) error {
	if assignee == nil || !assignee.IsActive {
		return apperrors.NewValidationError("Assignee not found or inactive", nil)
	}
	if assignee.Role == ticketType.AssignableRole() {
		return nil
	}
	if ticketType == domain.TicketTypeAcademic {
		return apperrors.NewValidationError("Academic tickets can only be assigned to teachers", nil)
	}
	return apperrors.NewValidationError("Platform and technical tickets can only be assigned to admins", nil)
}
