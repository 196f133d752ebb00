package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classpulse/support-service/internal/domain"
)

// ResponseRepository manages the append-only ticket response thread.
type ResponseRepository interface {
	Create(ctx context.Context, response *domain.Response) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Response, error)
}

type responseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository builds the repository.
func NewResponseRepository(pool *pgxpool.Pool) ResponseRepository {
	return &responseRepository{pool: pool}
}

func (r *responseRepository) Create(ctx context.Context, response *domain.Response) error {
	const query = `
        INSERT INTO support_responses (ticket_id, user_id, content)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		response.TicketID,
		response.AuthorID,
		response.Content,
	).Scan(&response.ID, &response.CreatedAt)
}

func (r *responseRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Response, error) {
	const query = `
        SELECT id, ticket_id, user_id, content, created_at
        FROM support_responses WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Response
	for rows.Next() {
		var response domain.Response
		if err := rows.Scan(
			&response.ID,
			&response.TicketID,
			&response.AuthorID,
			&response.Content,
			&response.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, response)
	}
	return result, rows.Err()
}
