package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/classpulse/support-service/internal/auth"
	"github.com/classpulse/support-service/internal/config"
	"github.com/classpulse/support-service/internal/domain"
	"github.com/classpulse/support-service/internal/repository"
	apperrors "github.com/classpulse/support-service/pkg/util/errorutil"
)

// AuthService handles registration and login for platform accounts.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.Config, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// RegisterInput describes a registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// LoginResult bundles the issued token with the account.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Register creates a student or teacher account. Teachers start unverified
// and wait for admin approval before auto-assignment prefers them.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("name, email and password are required", nil)
	}
	if input.Role != domain.RoleStudent && input.Role != domain.RoleTeacher {
		return nil, apperrors.NewValidationError("role must be student or teacher", map[string]any{"role": input.Role})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		IsVerified:   input.Role == domain.RoleStudent,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.IsActive {
		return nil, apperrors.NewForbidden("Account is suspended")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
