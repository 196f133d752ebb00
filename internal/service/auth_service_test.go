package service

import (
	"context"
	"testing"

	"github.com/classpulse/support-service/internal/config"
	"github.com/classpulse/support-service/internal/domain"
	apperrors "github.com/classpulse/support-service/pkg/util/errorutil"
)

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 15,
			BcryptCost:            4,
		},
	}
	return NewAuthService(cfg, users), users
}

func TestRegister_StudentIsVerifiedTeacherIsNot(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	student, err := svc.Register(ctx, RegisterInput{Name: "Student", Email: "Student@Classpulse.io", Password: "pw123456", Role: domain.RoleStudent})
	if err != nil {
		t.Fatalf("Register student error: %v", err)
	}
	if !student.IsVerified {
		t.Fatal("students should start verified")
	}
	if student.Email != "student@classpulse.io" {
		t.Fatalf("email should be normalized, got %s", student.Email)
	}

	teacher, err := svc.Register(ctx, RegisterInput{Name: "Teacher", Email: "teacher@classpulse.io", Password: "pw123456", Role: domain.RoleTeacher})
	if err != nil {
		t.Fatalf("Register teacher error: %v", err)
	}
	if teacher.IsVerified {
		t.Fatal("teachers should start unverified")
	}
}

func TestRegister_RejectsAdminRole(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), RegisterInput{Name: "a", Email: "a@classpulse.io", Password: "pw", Role: domain.RoleAdmin})
	if !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	input := RegisterInput{Name: "Student", Email: "dup@classpulse.io", Password: "pw123456", Role: domain.RoleStudent}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	if _, err := svc.Register(ctx, input); !apperrors.IsCode(err, "CONFLICT") {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestLogin_IssuesTokenForValidCredentials(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Student", Email: "login@classpulse.io", Password: "pw123456", Role: domain.RoleStudent})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	result, err := svc.Login(ctx, "login@classpulse.io", "pw123456")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a token")
	}

	claims, err := svc.TokenManager().ParseToken(result.Token)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != domain.RoleStudent {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLogin_Failures(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Student", Email: "fail@classpulse.io", Password: "pw123456", Role: domain.RoleStudent})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if _, err := svc.Login(ctx, "fail@classpulse.io", "wrong"); !apperrors.IsCode(err, "UNAUTHORIZED") {
		t.Fatalf("wrong password should be UNAUTHORIZED, got %v", err)
	}
	if _, err := svc.Login(ctx, "unknown@classpulse.io", "pw123456"); !apperrors.IsCode(err, "UNAUTHORIZED") {
		t.Fatalf("unknown email should be UNAUTHORIZED, got %v", err)
	}

	stored := users.users[user.ID]
	stored.IsActive = false
	users.users[user.ID] = stored
	if _, err := svc.Login(ctx, "fail@classpulse.io", "pw123456"); !apperrors.IsCode(err, "FORBIDDEN") {
		t.Fatalf("suspended login should be FORBIDDEN, got %v", err)
	}
}
