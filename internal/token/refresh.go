package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// refreshSecretBytes is the amount of raw entropy in a refresh token.
// 32 bytes comfortably exceeds the 128-bit minimum for a bearer secret.
const refreshSecretBytes = 32

// NewRefreshSecret returns a fresh opaque refresh-token value as a
// 64-character hex string. The value is handed to the client exactly
// once and never stored; only its keyed digest is persisted.
func NewRefreshSecret() (string, error) {
	buf := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// RefreshHasher computes the at-rest digest of refresh-token values.
// It is an HMAC-SHA256 over a server-side key rather than a bare digest,
// so a leaked token table cannot be turned into usable tokens without
// also obtaining the key.
type RefreshHasher struct {
	key []byte
}

// NewRefreshHasher builds a hasher from the configured server-side key.
func NewRefreshHasher(key string) *RefreshHasher {
	return &RefreshHasher{key: []byte(key)}
}

// Hash returns the hex HMAC-SHA256 digest of the raw token value.
func (h *RefreshHasher) Hash(raw string) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
