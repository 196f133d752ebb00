package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/classpulse/support-service/internal/domain"
	"github.com/classpulse/support-service/internal/repository"
	apperrors "github.com/classpulse/support-service/pkg/util/errorutil"
)

// AdminService governs platform accounts: suspension, activation and
// teacher verification. These flags feed directly into auto-assignment
// eligibility and the assignment validity rule.
type AdminService struct {
	users repository.UserRepository
}

// NewAdminService constructs the service.
func NewAdminService(users repository.UserRepository) *AdminService {
	return &AdminService{users: users}
}

func requireAdmin(actor domain.Actor) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// ListUsers returns accounts matching the filter.
func (s *AdminService) ListUsers(ctx context.Context, actor domain.Actor, filter repository.UserFilter) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// PendingTeachers lists active teachers awaiting verification.
func (s *AdminService) PendingTeachers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	teacher := domain.RoleTeacher
	active := true
	unverified := false
	users, err := s.users.List(ctx, repository.UserFilter{
		Role:       &teacher,
		IsActive:   &active,
		IsVerified: &unverified,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// SuspendUser deactivates an account. Suspended staff drop out of
// auto-assignment and fail assignment validation.
func (s *AdminService) SuspendUser(ctx context.Context, actor domain.Actor, userID string) (*domain.User, error) {
	return s.setFlags(ctx, actor, userID, func(user *domain.User) {
		user.IsActive = false
	})
}

// ActivateUser reinstates a suspended account.
func (s *AdminService) ActivateUser(ctx context.Context, actor domain.Actor, userID string) (*domain.User, error) {
	return s.setFlags(ctx, actor, userID, func(user *domain.User) {
		user.IsActive = true
	})
}

// ApproveTeacher marks a teacher as verified, moving them to the front of
// academic auto-assignment.
func (s *AdminService) ApproveTeacher(ctx context.Context, actor domain.Actor, userID string) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleTeacher {
		return nil, apperrors.NewValidationError("only teachers can be verified", map[string]any{"role": user.Role})
	}
	user.IsVerified = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// RejectTeacher declines a verification request and suspends the account.
func (s *AdminService) RejectTeacher(ctx context.Context, actor domain.Actor, userID string) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleTeacher {
		return nil, apperrors.NewValidationError("only teachers can be rejected", map[string]any{"role": user.Role})
	}
	user.IsVerified = false
	user.IsActive = false
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *AdminService) setFlags(ctx context.Context, actor domain.Actor, userID string, mutate func(*domain.User)) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	mutate(user)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *AdminService) getUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
