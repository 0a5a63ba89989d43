package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/yuruojie777/auth-service/internal/model"
)

// TokenRepo is the MySQL-backed RefreshTokenStore.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Create inserts a new active refresh-token row.
func (r *TokenRepo) Create(ctx context.Context, rec *model.RefreshToken) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (id, user_id, project_id, token_hash, expires_at, revoked, issued_at, user_agent, ip_address) VALUES (?,?,?,?,?,0,?,?,?)",
		rec.ID, rec.UserID, rec.ProjectID, rec.TokenHash, rec.ExpiresAt, rec.IssuedAt, rec.UserAgent, rec.IPAddress)
	return err
}

// Consume revokes the row matching tokenHash and returns it, provided it
// belongs to projectID, is not revoked and has not expired. The guarded
// UPDATE is the single arbiter: MySQL executes it atomically per row, so
// when N callers race on the same hash exactly one observes rows-affected
// of 1. There is no read-then-write window.
//
// When the update matches nothing, a follow-up read classifies the loss
// for internal use (audit logging); the classification never changes the
// outcome, which is already decided.
func (r *TokenRepo) Consume(ctx context.Context, tokenHash, projectID string, now time.Time) (model.RefreshToken, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked=1, revoked_at=? WHERE token_hash=? AND project_id=? AND revoked=0 AND expires_at>?",
		now, tokenHash, projectID, now)
	if err != nil {
		return model.RefreshToken{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.RefreshToken{}, err
	}
	if n == 0 {
		return model.RefreshToken{}, r.classifyLoss(ctx, tokenHash, projectID, now)
	}
	// The row is now exclusively ours; read it back for audit fields.
	return r.getByHash(ctx, tokenHash)
}

// classifyLoss explains why a conditional consume matched nothing.
func (r *TokenRepo) classifyLoss(ctx context.Context, tokenHash, projectID string, now time.Time) error {
	rec, err := r.getByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTokenNotFound
		}
		return err
	}
	if rec.ProjectID != projectID {
		return ErrTokenProjectMismatch
	}
	if rec.Revoked || !rec.ExpiresAt.After(now) {
		return ErrTokenSpent
	}
	// Raced another consumer between the update and this read.
	return ErrTokenSpent
}

// RevokeAllForUser marks every active token of the user revoked. Both
// this and Consume only ever move rows toward revoked, so running them
// concurrently is harmless.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID string, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked=1, revoked_at=? WHERE user_id=? AND revoked=0",
		now, userID)
	return err
}

func (r *TokenRepo) getByHash(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
	var (
		rec       model.RefreshToken
		revokedAt sql.NullTime
		userAgent sql.NullString
		ipAddress sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,project_id,token_hash,expires_at,revoked,revoked_at,issued_at,user_agent,ip_address FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&rec.ID, &rec.UserID, &rec.ProjectID, &rec.TokenHash, &rec.ExpiresAt,
		&rec.Revoked, &revokedAt, &rec.IssuedAt, &userAgent, &ipAddress)
	if err != nil {
		return model.RefreshToken{}, err
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		rec.RevokedAt = &t
	}
	rec.UserAgent = userAgent.String
	rec.IPAddress = ipAddress.String
	return rec, nil
}
