// Package token implements the stateless access-token codec and the
// opaque refresh-token primitives (secret generation and keyed hashing).
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Validation failures reported by AccessCodec.Validate. Signature and
// structural problems are distinguished from plain expiry so middleware
// can answer "token expired" without treating a forged token the same way.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenMalformed = errors.New("token malformed")
)

// Claims is the payload carried by an access token. Validity of an
// access token is entirely determined by its signature and embedded
// expiry; nothing is persisted server-side.
type Claims struct {
	Email     string   `json:"email"`
	ProjectID string   `json:"project_id"`
	Roles     []string `json:"roles"`
	jwt.RegisteredClaims
}

// AccessCodec signs and validates HS256 access tokens. The signing key
// and TTL are injected at construction; there is no package-level key
// state, so key rotation only requires building a new codec.
type AccessCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAccessCodec builds a codec from the configured signing secret and
// access-token TTL.
func NewAccessCodec(secret string, ttl time.Duration) *AccessCodec {
	return &AccessCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an access token for the user in the given project context.
// Claims: sub, iat, exp plus email, project_id and roles. It returns the
// serialized token and its expiry.
func (c *AccessCodec) Issue(userID, email, projectID string, roles []string, now time.Time) (string, time.Time, error) {
	exp := now.Add(c.ttl)
	claims := Claims{
		Email:     email,
		ProjectID: projectID,
		Roles:     roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Validate parses raw and returns its claims. Only HMAC-signed tokens
// are accepted; the signature is checked before expiry. Failures map to
// ErrTokenSignature, ErrTokenExpired or ErrTokenMalformed.
func (c *AccessCodec) Validate(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignature
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !tok.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
