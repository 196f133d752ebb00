package domain

import "time"

// Role enumerates platform roles. Students raise tickets; teachers handle
// academic tickets; admins handle platform/technical tickets and govern users.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ValidRole reports whether the value is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role may be assigned to tickets.
func (r Role) IsStaff() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// User is the domain model for all platform accounts. IsVerified only
// matters for teachers; verified teachers are preferred by auto-assignment.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	IsVerified   bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor identifies the already-authenticated caller of a lifecycle
// operation. The boundary layer resolves it from the session; the ticket
// service never reads credentials.
type Actor struct {
	ID       string
	Role     Role
	IsActive bool
}

// ActorFor derives an Actor from a loaded user record.
func ActorFor(u *User) Actor {
	return Actor{ID: u.ID, Role: u.Role, IsActive: u.IsActive}
}
