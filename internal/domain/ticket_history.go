package domain

import "time"

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeStatus   TicketChangeType = "status_change"
	ChangeTypeAssignee TicketChangeType = "assignee_change"
)

// TicketHistory is an immutable audit trail entry recorded alongside every
// status or assignee transition.
type TicketHistory struct {
	ID         string
	TicketID   string
	ActorID    *string
	ChangeType TicketChangeType
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}
