package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is an ordered permission level within a department.
type Role string

// Role constants, lowest to highest.
const (
	RoleViewer  Role = "viewer"
	RoleMember  Role = "member"
	RoleManager Role = "manager"
)

// ValidRoles contains all valid role values.
var ValidRoles = []Role{RoleViewer, RoleMember, RoleManager}

// IsValidRole checks if the given role is valid.
func IsValidRole(role Role) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Level returns the rank of the role for threshold comparisons.
// Unknown roles rank below viewer.
func (r Role) Level() int {
	switch r {
	case RoleViewer:
		return 1
	case RoleMember:
		return 2
	case RoleManager:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether r meets or exceeds the given role threshold.
func (r Role) AtLeast(threshold Role) bool {
	return r.Level() >= threshold.Level()
}

// Membership represents a user's role within a department of an organization.
type Membership struct {
	UserID       uuid.UUID `json:"user_id"`
	OrgID        uuid.UUID `json:"org_id"`
	DepartmentID uuid.UUID `json:"department_id"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
