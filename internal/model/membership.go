package model

import "time"

// Role is the closed set of roles a user can hold within a project.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Membership binds a user to a project with exactly one role. The
// database enforces at most one row per (user, project) pair via a
// unique key.
//
// Fields:
//  ID        – UUID primary key.
//  UserID    – member user.
//  ProjectID – project the role applies to.
//  Role      – role name within the project.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Membership struct {
	ID        string    // memberships.id
	UserID    string    // memberships.user_id
	ProjectID string    // memberships.project_id
	Role      Role      // memberships.role
	CreatedAt time.Time // memberships.created_at
	UpdatedAt time.Time // memberships.updated_at
}
