package model

import "time"

// User represents an account record as stored in the `users` table.
// Each field corresponds to a column in the database. The json tags are
// omitted because these structs are used internally by the repository
// layer; handlers define separate response types with appropriate JSON
// tags so the password hash is never serialized outward.
//
// Fields:
//  ID           – UUID primary key of the user.
//  Email        – unique email address (stored as given, matched exactly).
//  PasswordHash – bcrypt hashed password.
//  Active       – whether the account is enabled.
//  Locked       – whether the account is administratively locked.
//  Deleted      – soft-delete flag; rows are never physically removed.
//  LastLoginAt  – timestamp of the most recent successful login (nullable).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           string     // users.id
	Email        string     // users.email
	PasswordHash string     // users.password_hash
	Active       bool       // users.active
	Locked       bool       // users.locked
	Deleted      bool       // users.deleted
	LastLoginAt  *time.Time // users.last_login_at (nullable)
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}

// Enabled reports whether the account may authenticate: it must be
// active, not locked and not soft-deleted.
func (u User) Enabled() bool {
	return u.Active && !u.Locked && !u.Deleted
}
