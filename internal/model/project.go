package model

import "time"

// Project represents a tenant row in the `projects` table. The ID is a
// human-chosen slug (e.g. "proj_ai_video") rather than a generated UUID.
// Projects are referenced by the session flows but never created by them.
//
// Fields:
//  ID        – slug primary key, at most 64 characters.
//  Name      – display name of the tenant.
//  Active    – inactive projects cannot issue new sessions.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Project struct {
	ID        string    // projects.id
	Name      string    // projects.name
	Active    bool      // projects.active
	CreatedAt time.Time // projects.created_at
	UpdatedAt time.Time // projects.updated_at
}
