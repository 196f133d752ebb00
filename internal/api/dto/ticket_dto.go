package dto

import (
	"time"

	"github.com/classpulse/support-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	TicketType  domain.TicketType `json:"ticket_type"`
}

// CreateResponseRequest payload.
type CreateResponseRequest struct {
	Content string `json:"content"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status     domain.TicketStatus `json:"status"`
	AssignedTo *string             `json:"assigned_to,omitempty"`
}

// AssignRequest payload for assign and reassign.
type AssignRequest struct {
	AssignedTo string `json:"assigned_to"`
}

// EscalateRequest payload.
type EscalateRequest struct {
	AssignedTo *string `json:"assigned_to,omitempty"`
}

// TicketResponse is the wire shape of a ticket.
type TicketResponse struct {
	ID          string              `json:"id"`
	OwnerID     string              `json:"owner_id"`
	TicketType  domain.TicketType   `json:"ticket_type"`
	Status      domain.TicketStatus `json:"status"`
	AssignedTo  *string             `json:"assigned_to,omitempty"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ResponseItem is the wire shape of a thread response.
type ResponseItem struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketDetailResponse bundles a ticket with its response thread.
type TicketDetailResponse struct {
	TicketResponse
	Responses []ResponseItem `json:"responses"`
}

// TicketListResponse wraps a page of tickets.
type TicketListResponse struct {
	Items      []TicketResponse `json:"items"`
	Pagination Pagination       `json:"pagination"`
}

// Pagination describes a page window.
type Pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// HistoryItem is the wire shape of an audit entry.
type HistoryItem struct {
	ID         string                  `json:"id"`
	ChangeType domain.TicketChangeType `json:"change_type"`
	ActorID    *string                 `json:"actor_id,omitempty"`
	OldValue   map[string]any          `json:"old_value"`
	NewValue   map[string]any          `json:"new_value"`
	CreatedAt  time.Time               `json:"created_at"`
}

// FromTicket maps the domain ticket.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		OwnerID:     ticket.OwnerID,
		TicketType:  ticket.Type,
		Status:      ticket.Status,
		AssignedTo:  ticket.AssignedTo,
		Title:       ticket.Title,
		Description: ticket.Description,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

// FromResponse maps a thread response.
func FromResponse(response *domain.Response) ResponseItem {
	return ResponseItem{
		ID:        response.ID,
		TicketID:  response.TicketID,
		AuthorID:  response.AuthorID,
		Content:   response.Content,
		CreatedAt: response.CreatedAt,
	}
}

// FromHistory maps an audit entry.
func FromHistory(entry *domain.TicketHistory) HistoryItem {
	return HistoryItem{
		ID:         entry.ID,
		ChangeType: entry.ChangeType,
		ActorID:    entry.ActorID,
		OldValue:   entry.OldValue,
		NewValue:   entry.NewValue,
		CreatedAt:  entry.CreatedAt,
	}
}
