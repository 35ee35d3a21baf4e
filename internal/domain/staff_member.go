package domain

import "time"

// Role enumerates portal operator roles. Values are stored verbatim.
type Role string

const (
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
	RoleDirector Role = "director"
)

// Rank places the role in the privilege order director > admin > staff.
// Unknown values rank 0 and never satisfy a role check.
func (r Role) Rank() int {
	switch r {
	case RoleStaff:
		return 1
	case RoleAdmin:
		return 2
	case RoleDirector:
		return 3
	default:
		return 0
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.Rank() > 0
}

// Satisfies reports whether r grants at least the privileges of minimum.
func (r Role) Satisfies(minimum Role) bool {
	if !r.Valid() || !minimum.Valid() {
		return false
	}
	return r.Rank() >= minimum.Rank()
}

// StaffMember models an operator of the admin portal.
type StaffMember struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
