package token

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRefreshSecret(t *testing.T) {
	a, err := NewRefreshSecret()
	require.NoError(t, err)
	b, err := NewRefreshSecret()
	require.NoError(t, err)

	assert.Len(t, a, refreshSecretBytes*2)
	_, err = hex.DecodeString(a)
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRefreshHasher(t *testing.T) {
	h := NewRefreshHasher("server-side-key")

	d1 := h.Hash("some-token-value")
	d2 := h.Hash("some-token-value")
	assert.Equal(t, d1, d2, "digest must be deterministic")
	assert.Len(t, d1, 64)
	assert.NotEqual(t, "some-token-value", d1)

	// A different key must produce a different digest; a leaked token
	// table is useless without the key.
	other := NewRefreshHasher("another-key")
	assert.NotEqual(t, d1, other.Hash("some-token-value"))

	assert.NotEqual(t, d1, h.Hash("some-token-valuf"))
}
