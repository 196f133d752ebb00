package service

import (
	"testing"

	"github.com/classpulse/support-service/internal/domain"
	apperrors "github.com/classpulse/support-service/pkg/util/errorutil"
)

func TestCanChangeStatus_Matrix(t *testing.T) {
	student := domain.Actor{ID: "student-1", Role: domain.RoleStudent, IsActive: true}
	teacher := domain.Actor{ID: "teacher-1", Role: domain.RoleTeacher, IsActive: true}
	admin := domain.Actor{ID: "admin-1", Role: domain.RoleAdmin, IsActive: true}

	cases := []struct {
		name       string
		actor      domain.Actor
		isOwner    bool
		isAssignee bool
		ticketType domain.TicketType
		from       domain.TicketStatus
		to         domain.TicketStatus
		wantErr    string
	}{
		{
			name:       "owner_closes_own_ticket",
			actor:      student,
			isOwner:    true,
			ticketType: domain.TicketTypeAcademic,
			from:       domain.TicketStatusOpen,
			to:         domain.TicketStatusClosed,
		},
		{
			name:       "student_cannot_resolve",
			actor:      student,
			isOwner:    true,
			ticketType: domain.TicketTypeAcademic,
			from:       domain.TicketStatusInProgress,
			to:         domain.TicketStatusResolved,
			wantErr:    "Students can only close tickets",
		},
		{
			name:       "student_cannot_close_others",
			actor:      student,
			ticketType: domain.TicketTypePlatform,
			from:       domain.TicketStatusOpen,
			to:         domain.TicketStatusClosed,
			wantErr:    "You can only close your own tickets",
		},
		{
			name:       "assigned_teacher_resolves_academic",
			actor:      teacher,
			isAssignee: true,
			ticketType: domain.TicketTypeAcademic,
			from:       domain.TicketStatusInProgress,
			to:         domain.TicketStatusResolved,
		},
		{
			name:       "teacher_cannot_close",
			actor:      teacher,
			isAssignee: true,
			ticketType: domain.TicketTypeAcademic,
			from:       domain.TicketStatusResolved,
			to:         domain.TicketStatusClosed,
			wantErr:    "Teachers cannot close tickets",
		},
		{
			name:       "unassigned_teacher_cannot_update",
			actor:      teacher,
			ticketType: domain.TicketTypeAcademic,
			from:       domain.TicketStatusOpen,
			to:         domain.TicketStatusInProgress,
			wantErr:    "You can only update assigned academic tickets",
		},
		{
			name:       "teacher_cannot_update_platform",
			actor:      teacher,
			isAssignee: true,
			ticketType: domain.TicketTypePlatform,
			from:       domain.TicketStatusOpen,
			to:         domain.TicketStatusInProgress,
			wantErr:    "You can only update assigned academic tickets",
		},
		{
			name:       "admin_any_transition",
			actor:      admin,
			ticketType: domain.TicketTypeTechnical,
			from:       domain.TicketStatusWaitingForUser,
			to:         domain.TicketStatusResolved,
		},
		{
			name:       "admin_cannot_touch_closed",
			actor:      admin,
			ticketType: domain.TicketTypeTechnical,
			from:       domain.TicketStatusClosed,
			to:         domain.TicketStatusOpen,
			wantErr:    "Closed tickets can only be reopened",
		},
		{
			name:       "student_cannot_touch_closed",
			actor:      student,
			isOwner:    true,
			ticketType: domain.TicketTypeAcademic,
			from:       domain.TicketStatusClosed,
			to:         domain.TicketStatusClosed,
			wantErr:    "Closed tickets can only be reopened",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := canChangeStatus(tc.actor, tc.isOwner, tc.isAssignee, tc.ticketType, tc.from, tc.to)
			checkPermissionErr(t, err, tc.wantErr)
		})
	}
}

func TestCanRespond(t *testing.T) {
	admin := domain.Actor{ID: "admin-1", Role: domain.RoleAdmin, IsActive: true}
	student := domain.Actor{ID: "student-1", Role: domain.RoleStudent, IsActive: true}

	if err := canRespond(student, true, false, domain.TicketStatusOpen); err != nil {
		t.Fatalf("owner should respond to open ticket: %v", err)
	}
	if err := canRespond(admin, false, false, domain.TicketStatusInProgress); err != nil {
		t.Fatalf("admin should respond without assignment: %v", err)
	}

	err := canRespond(admin, false, false, domain.TicketStatusClosed)
	checkPermissionErr(t, err, "Cannot respond to a closed ticket")

	err = canRespond(student, false, false, domain.TicketStatusOpen)
	checkPermissionErr(t, err, "Only the ticket owner, the assignee, or an admin can respond")
}

func TestCanReopen(t *testing.T) {
	admin := domain.Actor{ID: "admin-1", Role: domain.RoleAdmin, IsActive: true}
	teacher := domain.Actor{ID: "teacher-1", Role: domain.RoleTeacher, IsActive: true}

	if err := canReopen(admin, false); err != nil {
		t.Fatalf("admin should reopen: %v", err)
	}
	if err := canReopen(teacher, true); err != nil {
		t.Fatalf("owner should reopen: %v", err)
	}
	err := canReopen(teacher, false)
	checkPermissionErr(t, err, "Only the ticket owner or an admin can reopen tickets")
}

func TestInferStatus(t *testing.T) {
	cases := []struct {
		name       string
		current    domain.TicketStatus
		isOwner    bool
		isAssignee bool
		want       domain.TicketStatus
	}{
		{"assignee_on_open_starts_progress", domain.TicketStatusOpen, false, true, domain.TicketStatusInProgress},
		{"owner_on_in_progress_waits", domain.TicketStatusInProgress, true, false, domain.TicketStatusWaitingForUser},
		{"assignee_on_waiting_resumes", domain.TicketStatusWaitingForUser, false, true, domain.TicketStatusInProgress},
		{"owner_on_open_no_change", domain.TicketStatusOpen, true, false, domain.TicketStatusOpen},
		{"assignee_on_in_progress_no_change", domain.TicketStatusInProgress, false, true, domain.TicketStatusInProgress},
		{"owner_on_waiting_no_change", domain.TicketStatusWaitingForUser, true, false, domain.TicketStatusWaitingForUser},
		{"admin_bystander_on_resolved_no_change", domain.TicketStatusResolved, false, false, domain.TicketStatusResolved},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := inferStatus(tc.current, tc.isOwner, tc.isAssignee)
			if got != tc.want {
				t.Fatalf("inferStatus(%s, owner=%v, assignee=%v) = %s, want %s",
					tc.current, tc.isOwner, tc.isAssignee, got, tc.want)
			}
			// A repeated response from the same side must not move the
			// status again.
			if again := inferStatus(got, tc.isOwner, tc.isAssignee); again != got {
				t.Fatalf("repeated response moved status from %s to %s", got, again)
			}
		})
	}
}

func TestValidateAssignee(t *testing.T) {
	teacher := &domain.User{ID: "teacher-1", Role: domain.RoleTeacher, IsActive: true}
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin, IsActive: true}
	suspended := &domain.User{ID: "teacher-2", Role: domain.RoleTeacher, IsActive: false}

	if err := validateAssignee(teacher, domain.TicketTypeAcademic); err != nil {
		t.Fatalf("teacher on academic: %v", err)
	}
	if err := validateAssignee(admin, domain.TicketTypePlatform); err != nil {
		t.Fatalf("admin on platform: %v", err)
	}
	checkPermissionErr(t, validateAssignee(admin, domain.TicketTypeAcademic), "Academic tickets can only be assigned to teachers")
	checkPermissionErr(t, validateAssignee(teacher, domain.TicketTypeTechnical), "Platform and technical tickets can only be assigned to admins")
	checkPermissionErr(t, validateAssignee(suspended, domain.TicketTypeAcademic), "Assignee not found or inactive")
	checkPermissionErr(t, validateAssignee(nil, domain.TicketTypeAcademic), "Assignee not found or inactive")
}

func checkPermissionErr(t *testing.T, err error, want string) {
	t.Helper()
	if want == "" {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Message != want {
		t.Fatalf("expected error %q, got %q", want, domainErr.Message)
	}
}
