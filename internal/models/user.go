package models

import (
	"strings"
	"time"
)

// Role enumerates the portal roles. Capability checks are explicit set
// membership tests; roles are not hierarchical.
type Role string

const (
	RoleAdmin             Role = "admin"
	RoleMinister          Role = "minister"
	RoleChairman          Role = "chairman"
	RoleSupervisor        Role = "supervisor"
	RoleProtocol          Role = "protocol"
	RoleSuperCollaborator Role = "super_collaborator"
	RoleCollaborator      Role = "collaborator"
	RoleViewer            Role = "viewer"
)

// roleAliasDeputy is the end-user facing name for the chairman role.
const roleAliasDeputy = "deputy"

// ParseRole normalises a raw role key to the canonical tag. The "deputy"
// alias maps to chairman.
func ParseRole(raw string) (Role, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == roleAliasDeputy {
		return RoleChairman, true
	}
	switch Role(key) {
	case RoleAdmin, RoleMinister, RoleChairman, RoleSupervisor, RoleProtocol,
		RoleSuperCollaborator, RoleCollaborator, RoleViewer:
		return Role(key), true
	}
	return "", false
}

// IsCollaborator reports whether the role is one of the two assignment-scoped
// roles. Only these roles may hold section or country assignments.
func (r Role) IsCollaborator() bool {
	return r == RoleCollaborator || r == RoleSuperCollaborator
}

// User represents an application user stored in the users table.
type User struct {
	ID              int64      `db:"id" json:"id"`
	Username        string     `db:"username" json:"username"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	FullName        string     `db:"full_name" json:"full_name"`
	Email           *string    `db:"email" json:"email,omitempty"`
	Role            Role       `db:"role" json:"role"`
	Active          bool       `db:"is_active" json:"is_active"`
	DeletedAt       *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedByUserID *int64     `db:"deleted_by_user_id" json:"-"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Usable reports whether the user may authenticate: active and not
// soft-deleted. Tokens issued earlier must fail once this turns false.
func (u *User) Usable() bool {
	return u != nil && u.Active && u.DeletedAt == nil
}
