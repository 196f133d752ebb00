package events

import (
	"time"

	"github.com/classpulse/support-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "support.ticket.created"
	EventTicketStatusChanged EventType = "support.ticket.status_changed"
	EventTicketAssigned      EventType = "support.ticket.assigned"
	EventTicketResponded     EventType = "support.ticket.responded"
)

// Event represents a domain event emitted by the ticket service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	ActorRole domain.Role `json:"actor_role"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	OwnerID    string              `json:"owner_id"`
	Type       domain.TicketType   `json:"ticket_type"`
	Status     domain.TicketStatus `json:"status"`
	AssignedTo *string             `json:"assigned_to,omitempty"`
	Title      string              `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldAssignee *string `json:"old_assignee,omitempty"`
	NewAssignee *string `json:"new_assignee,omitempty"`
}

// TicketRespondedPayload payload.
type TicketRespondedPayload struct {
	ResponseID     string              `json:"response_id"`
	AuthorID       string              `json:"author_id"`
	InferredStatus domain.TicketStatus `json:"inferred_status"`
}
