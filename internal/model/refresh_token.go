package model

import "time"

// RefreshToken models a row in the `refresh_tokens` table. Each token
// belongs to one user and is bound to exactly one project; presenting it
// with a different project id must fail. The plain token value is never
// stored, only a keyed HMAC-SHA256 digest of it.
//
// Fields:
//  ID        – UUID primary key.
//  UserID    – owner of the token.
//  ProjectID – tenant context the token was issued for.
//  TokenHash – HMAC-SHA256 hex digest of the plain token value.
//  ExpiresAt – absolute expiry; expired rows are simply never matched.
//  Revoked   – set exactly once, on consumption or explicit revocation.
//  RevokedAt – when the token was revoked (nullable).
//  IssuedAt  – timestamp of creation.
//  UserAgent – audit metadata, not used for authorization decisions.
//  IPAddress – audit metadata, not used for authorization decisions.
type RefreshToken struct {
	ID        string     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	ProjectID string     // refresh_tokens.project_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	Revoked   bool       // refresh_tokens.revoked
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	IssuedAt  time.Time  // refresh_tokens.issued_at
	UserAgent string     // refresh_tokens.user_agent
	IPAddress string     // refresh_tokens.ip_address
}
