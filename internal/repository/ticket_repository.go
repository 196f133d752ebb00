package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classpulse/support-service/internal/domain"
)

// ErrVersionConflict is returned when an update loses a concurrent
// read-validate-write race. Callers should surface it as a Conflict and let
// the client retry against fresh state.
var ErrVersionConflict = errors.New("ticket modified concurrently")

// TicketFilter captures listing parameters. Role scoping is applied by the
// service before the filter reaches the repository.
type TicketFilter struct {
	OwnerID    *string
	AssignedTo *string
	Status     *domain.TicketStatus
	Type       *domain.TicketType
	SearchTerm *string
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Update writes status and assignment, guarded by the updated_at value
	// the ticket was loaded with. Returns ErrVersionConflict when the row
	// changed underneath the caller, pgx.ErrNoRows when the ticket is gone.
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO support_tickets (user_id, title, description, ticket_type, status, assigned_to)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.OwnerID,
		ticket.Title,
		ticket.Description,
		ticket.Type,
		ticket.Status,
		ticket.AssignedTo,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE support_tickets SET status=$1, assigned_to=$2, updated_at=NOW()
        WHERE id=$3 AND updated_at=$4
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.Status,
		ticket.AssignedTo,
		ticket.ID,
		ticket.UpdatedAt,
	).Scan(&ticket.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	// Zero rows means either the ticket vanished or the version check lost.
	var exists bool
	if checkErr := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM support_tickets WHERE id=$1)`, ticket.ID,
	).Scan(&exists); checkErr != nil {
		return checkErr
	}
	if !exists {
		return pgx.ErrNoRows
	}
	return ErrVersionConflict
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, user_id, title, description, ticket_type, status, assigned_to, created_at, updated_at
        FROM support_tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.OwnerID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Type,
		&ticket.Status,
		&ticket.AssignedTo,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("ticket_type=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	where := strings.Join(clauses, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM support_tickets WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
        SELECT id, user_id, title, description, ticket_type, status, assigned_to, created_at, updated_at
        FROM support_tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.OwnerID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Type,
			&ticket.Status,
			&ticket.AssignedTo,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, ticket)
	}
	return result, total, rows.Err()
}
