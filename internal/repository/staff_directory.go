package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classpulse/support-service/internal/domain"
)

// StaffDirectory answers "who can handle this ticket". Academic tickets go
// to teachers, platform/technical tickets to admins.
type StaffDirectory interface {
	// FindEligibleAssignee returns the preferred active staff member for the
	// ticket type, or nil when nobody is available. Teachers are ordered
	// verified-first, then by seniority.
	FindEligibleAssignee(ctx context.Context, ticketType domain.TicketType) (*domain.User, error)
	GetStaff(ctx context.Context, id string) (*domain.User, error)
	ListAssignable(ctx context.Context, ticketType domain.TicketType) ([]domain.User, error)
}

type staffDirectory struct {
	pool *pgxpool.Pool
}

// NewStaffDirectory builds a Postgres-backed directory.
func NewStaffDirectory(pool *pgxpool.Pool) StaffDirectory {
	return &staffDirectory{pool: pool}
}

func (d *staffDirectory) FindEligibleAssignee(ctx context.Context, ticketType domain.TicketType) (*domain.User, error) {
	var query string
	if ticketType == domain.TicketTypeAcademic {
		query = `
            SELECT ` + userColumns + ` FROM users
            WHERE role = 'teacher' AND is_active = true
            ORDER BY is_verified DESC, created_at ASC
            LIMIT 1`
	} else {
		query = `
            SELECT ` + userColumns + ` FROM users
            WHERE role = 'admin' AND is_active = true
            LIMIT 1`
	}

	user, err := d.scanOne(ctx, query)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (d *staffDirectory) GetStaff(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return d.scanOne(ctx, query, id)
}

func (d *staffDirectory) ListAssignable(ctx context.Context, ticketType domain.TicketType) ([]domain.User, error) {
	var query string
	if ticketType == domain.TicketTypeAcademic {
		query = `
            SELECT ` + userColumns + ` FROM users
            WHERE role = 'teacher' AND is_active = true
            ORDER BY is_verified DESC, name ASC`
	} else {
		query = `
            SELECT ` + userColumns + ` FROM users
            WHERE role = 'admin' AND is_active = true
            ORDER BY name ASC`
	}

	rows, err := d.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.IsVerified,
			&user.IsActive,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (d *staffDirectory) scanOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	if err := d.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsVerified,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
