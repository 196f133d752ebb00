package domain

import "time"

// Response is an append-only message in a ticket thread. Responses are
// never edited or deleted once written.
type Response struct {
	ID        string
	TicketID  string
	AuthorID  string
	Content   string
	CreatedAt time.Time
}
