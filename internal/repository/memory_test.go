package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuruojie777/auth-service/internal/model"
)

func seedToken(t *testing.T, store *MemoryStore, hash, projectID string, expires time.Time) {
	t.Helper()
	require.NoError(t, store.Tokens().Create(context.Background(), &model.RefreshToken{
		ID:        "tok-" + hash,
		UserID:    "user-1",
		ProjectID: projectID,
		TokenHash: hash,
		ExpiresAt: expires,
		IssuedAt:  time.Now().UTC(),
	}))
}

func TestConsumeClassifiesLosses(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	store := NewMemoryStore()
	seedToken(t, store, "live", "proj_demo", now.Add(time.Hour))
	seedToken(t, store, "expired", "proj_demo", now.Add(-time.Minute))

	_, err := store.Tokens().Consume(ctx, "absent", "proj_demo", now)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	_, err = store.Tokens().Consume(ctx, "live", "proj_other", now)
	assert.ErrorIs(t, err, ErrTokenProjectMismatch)

	_, err = store.Tokens().Consume(ctx, "expired", "proj_demo", now)
	assert.ErrorIs(t, err, ErrTokenSpent)

	// First consume wins and returns the record; the second finds it
	// spent.
	rec, err := store.Tokens().Consume(ctx, "live", "proj_demo", now)
	require.NoError(t, err)
	assert.Equal(t, "user-1", rec.UserID)
	assert.True(t, rec.Revoked)

	_, err = store.Tokens().Consume(ctx, "live", "proj_demo", now)
	assert.ErrorIs(t, err, ErrTokenSpent)
}

func TestRevokeAllForUserIsScoped(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	store := NewMemoryStore()
	seedToken(t, store, "mine-a", "proj_demo", now.Add(time.Hour))
	seedToken(t, store, "mine-b", "proj_other", now.Add(time.Hour))
	require.NoError(t, store.Tokens().Create(ctx, &model.RefreshToken{
		ID:        "tok-theirs",
		UserID:    "user-2",
		ProjectID: "proj_demo",
		TokenHash: "theirs",
		ExpiresAt: now.Add(time.Hour),
		IssuedAt:  now,
	}))

	require.NoError(t, store.Tokens().RevokeAllForUser(ctx, "user-1", now))

	_, err := store.Tokens().Consume(ctx, "mine-a", "proj_demo", now)
	assert.ErrorIs(t, err, ErrTokenSpent)
	_, err = store.Tokens().Consume(ctx, "mine-b", "proj_other", now)
	assert.ErrorIs(t, err, ErrTokenSpent)

	// Another user's token is untouched.
	_, err = store.Tokens().Consume(ctx, "theirs", "proj_demo", now)
	assert.NoError(t, err)
}
