// Package queue defines the auth event payloads exchanged over the
// message broker, the publisher that emits them and the background
// consumer that turns them into an audit log.
package queue

// UserRegisteredEvent is published after a successful registration.
// It carries enough for downstream consumers to notify or audit without
// querying the primary database.
type UserRegisteredEvent struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	ProjectID    string `json:"project_id"`
	Role         string `json:"role"`
	RegisteredAt string `json:"registered_at"`
}

// SessionsRevokedEvent is published when every refresh token of a user
// is revoked (logout-everywhere or compromise response).
type SessionsRevokedEvent struct {
	UserID    string `json:"user_id"`
	RevokedAt string `json:"revoked_at"`
}
