package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/classpulse/support-service/internal/domain"
	"github.com/classpulse/support-service/internal/repository"
	apperrors "github.com/classpulse/support-service/pkg/util/errorutil"
)

type fakeUserRepo struct {
	users map[string]domain.User
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			found := user
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.IsActive != nil && user.IsActive != *filter.IsActive {
			continue
		}
		if filter.IsVerified != nil && user.IsVerified != *filter.IsVerified {
			continue
		}
		out = append(out, user)
	}
	return out, nil
}

func seedAdminFixture(t *testing.T) (*AdminService, *fakeUserRepo, domain.User) {
	t.Helper()
	users := newFakeUserRepo()
	teacher := domain.User{Name: "New Teacher", Email: "teacher@classpulse.io", Role: domain.RoleTeacher, IsActive: true}
	if err := users.Create(context.Background(), &teacher); err != nil {
		t.Fatalf("seed teacher: %v", err)
	}
	return NewAdminService(users), users, teacher
}

func TestAdminService_RequiresAdminRole(t *testing.T) {
	svc, _, teacher := seedAdminFixture(t)
	ctx := context.Background()

	if _, err := svc.ListUsers(ctx, teacherActor, repository.UserFilter{}); !apperrors.IsCode(err, "FORBIDDEN") {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	if _, err := svc.ApproveTeacher(ctx, studentActor, teacher.ID); !apperrors.IsCode(err, "FORBIDDEN") {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestApproveTeacher_MarksVerified(t *testing.T) {
	svc, users, teacher := seedAdminFixture(t)

	approved, err := svc.ApproveTeacher(context.Background(), adminActor, teacher.ID)
	if err != nil {
		t.Fatalf("ApproveTeacher error: %v", err)
	}
	if !approved.IsVerified {
		t.Fatal("expected teacher to be verified")
	}
	if stored := users.users[teacher.ID]; !stored.IsVerified {
		t.Fatal("verification flag not persisted")
	}
}

func TestApproveTeacher_RejectsNonTeacher(t *testing.T) {
	svc, users, _ := seedAdminFixture(t)
	student := domain.User{Name: "Student", Email: "student@classpulse.io", Role: domain.RoleStudent, IsActive: true}
	if err := users.Create(context.Background(), &student); err != nil {
		t.Fatalf("seed student: %v", err)
	}

	if _, err := svc.ApproveTeacher(context.Background(), adminActor, student.ID); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestRejectTeacher_SuspendsAccount(t *testing.T) {
	svc, _, teacher := seedAdminFixture(t)

	rejected, err := svc.RejectTeacher(context.Background(), adminActor, teacher.ID)
	if err != nil {
		t.Fatalf("RejectTeacher error: %v", err)
	}
	if rejected.IsActive || rejected.IsVerified {
		t.Fatalf("rejected teacher should be suspended and unverified, got active=%v verified=%v", rejected.IsActive, rejected.IsVerified)
	}
}

func TestSuspendAndActivateUser(t *testing.T) {
	svc, _, teacher := seedAdminFixture(t)
	ctx := context.Background()

	suspended, err := svc.SuspendUser(ctx, adminActor, teacher.ID)
	if err != nil {
		t.Fatalf("SuspendUser error: %v", err)
	}
	if suspended.IsActive {
		t.Fatal("expected suspended user to be inactive")
	}

	activated, err := svc.ActivateUser(ctx, adminActor, teacher.ID)
	if err != nil {
		t.Fatalf("ActivateUser error: %v", err)
	}
	if !activated.IsActive {
		t.Fatal("expected activated user to be active")
	}
}

func TestPendingTeachers_FiltersUnverifiedActive(t *testing.T) {
	svc, users, _ := seedAdminFixture(t)
	ctx := context.Background()

	verified := domain.User{Name: "Verified", Email: "verified@classpulse.io", Role: domain.RoleTeacher, IsVerified: true, IsActive: true}
	if err := users.Create(ctx, &verified); err != nil {
		t.Fatalf("seed verified teacher: %v", err)
	}

	pending, err := svc.PendingTeachers(ctx, adminActor)
	if err != nil {
		t.Fatalf("PendingTeachers error: %v", err)
	}
	if len(pending) != 1 || pending[0].IsVerified {
		t.Fatalf("expected one unverified teacher, got %+v", pending)
	}
}

func TestAdminService_UnknownUserNotFound(t *testing.T) {
	svc, _, _ := seedAdminFixture(t)

	if _, err := svc.SuspendUser(context.Background(), adminActor, "user-999"); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
