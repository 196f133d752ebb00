package domain

import "time"

// TicketStatus enumerates lifecycle states for support tickets.
type TicketStatus string

const (
	TicketStatusOpen           TicketStatus = "open"
	TicketStatusInProgress     TicketStatus = "in_progress"
	TicketStatusWaitingForUser TicketStatus = "waiting_for_user"
	TicketStatusResolved       TicketStatus = "resolved"
	TicketStatusClosed         TicketStatus = "closed"
)

// ValidTicketStatus reports whether the value is a known status.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingForUser,
		TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketType routes a ticket to the staff role responsible for it.
type TicketType string

const (
	TicketTypeAcademic  TicketType = "academic"
	TicketTypePlatform  TicketType = "platform"
	TicketTypeTechnical TicketType = "technical"
)

// ValidTicketType reports whether the value is a known ticket type.
func ValidTicketType(t TicketType) bool {
	switch t {
	case TicketTypeAcademic, TicketTypePlatform, TicketTypeTechnical:
		return true
	}
	return false
}

// AssignableRole returns the staff role allowed to handle tickets of this type.
func (t TicketType) AssignableRole() Role {
	if t == TicketTypeAcademic {
		return RoleTeacher
	}
	return RoleAdmin
}

// Ticket is the aggregate for student support requests. Title and
// description are fixed at creation; status and assignment mutate only
// through the lifecycle service.
type Ticket struct {
	ID          string
	OwnerID     string
	Type        TicketType
	Status      TicketStatus
	AssignedTo  *string
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAssigned reports whether the ticket has a current assignee.
func (t *Ticket) IsAssigned() bool {
	return t.AssignedTo != nil && *t.AssignedTo != ""
}

// AssignedToUser reports whether the given user is the current assignee.
func (t *Ticket) AssignedToUser(userID string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}
