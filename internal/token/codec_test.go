package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCodec(ttl time.Duration) *AccessCodec {
	return NewAccessCodec("test-signing-secret-0123456789abcdef", ttl)
}

func TestIssueValidateRoundTrip(t *testing.T) {
	c := testCodec(15 * time.Minute)
	now := time.Now().UTC().Truncate(time.Second)

	raw, exp, err := c.Issue("user-1", "alice@example.com", "proj_demo", []string{"USER"}, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(15*time.Minute), exp)

	claims, err := c.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "proj_demo", claims.ProjectID)
	assert.Equal(t, []string{"USER"}, claims.Roles)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
}

func TestValidateExpiry(t *testing.T) {
	c := testCodec(time.Minute)
	issued := time.Now().UTC()
	raw, exp, err := c.Issue("user-1", "a@b.c", "proj_demo", []string{"USER"}, issued)
	require.NoError(t, err)

	// Still valid just before expiry.
	c.now = func() time.Time { return exp.Add(-time.Second) }
	_, err = c.Validate(raw)
	require.NoError(t, err)

	// Rejected after expiry with the expiry kind, not a generic error.
	c.now = func() time.Time { return exp.Add(time.Second) }
	_, err = c.Validate(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateTamperedSignature(t *testing.T) {
	c := testCodec(time.Minute)
	raw, _, err := c.Issue("user-1", "a@b.c", "proj_demo", []string{"USER"}, time.Now().UTC())
	require.NoError(t, err)

	// Flip one byte of the signature segment.
	last := raw[len(raw)-1]
	flip := byte('A')
	if last == 'A' {
		flip = 'B'
	}
	tampered := raw[:len(raw)-1] + string(flip)

	_, err = c.Validate(tampered)
	assert.ErrorIs(t, err, ErrTokenSignature)
}

func TestValidateWrongKey(t *testing.T) {
	issuer := testCodec(time.Minute)
	raw, _, err := issuer.Issue("user-1", "a@b.c", "proj_demo", []string{"USER"}, time.Now().UTC())
	require.NoError(t, err)

	other := NewAccessCodec("a-completely-different-secret-key!!", time.Minute)
	_, err = other.Validate(raw)
	assert.ErrorIs(t, err, ErrTokenSignature)
}

func TestValidateMalformed(t *testing.T) {
	c := testCodec(time.Minute)
	for _, raw := range []string{"", "garbage", "a.b", strings.Repeat("x.", 40)} {
		_, err := c.Validate(raw)
		assert.ErrorIs(t, err, ErrTokenMalformed, "input %q", raw)
	}
}
