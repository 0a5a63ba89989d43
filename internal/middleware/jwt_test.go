package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuruojie777/auth-service/internal/middleware"
	"github.com/yuruojie777/auth-service/internal/token"
)

type envelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newProtectedApp(codec *token.AccessCodec, roles ...string) *echo.Echo {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, middleware.JWTAuth(codec), middleware.RequireRole(roles...))
	return e
}

func get(e *echo.Echo, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestJWTAuthEnvelope(t *testing.T) {
	codec := token.NewAccessCodec("middleware-test-secret", time.Minute)
	e := newProtectedApp(codec, "USER")

	// Missing header.
	rec := get(e, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decode(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "UNAUTHORIZED", env.Code)

	// Forged token.
	rec = get(e, "not-a-token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	env = decode(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "INVALID_TOKEN", env.Code)

	// Expired token gets its own code so clients know to refresh.
	expired, _, err := codec.Issue("user-1", "a@b.c", "proj_demo", []string{"USER"}, time.Now().Add(-2*time.Minute))
	require.NoError(t, err)
	rec = get(e, expired)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	env = decode(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "TOKEN_EXPIRED", env.Code)

	// Valid token passes through.
	valid, _, err := codec.Issue("user-1", "a@b.c", "proj_demo", []string{"USER"}, time.Now())
	require.NoError(t, err)
	rec = get(e, valid)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleEnvelope(t *testing.T) {
	codec := token.NewAccessCodec("middleware-test-secret", time.Minute)
	e := newProtectedApp(codec, "ADMIN")

	raw, _, err := codec.Issue("user-1", "a@b.c", "proj_demo", []string{"USER"}, time.Now())
	require.NoError(t, err)

	rec := get(e, raw)
	require.Equal(t, http.StatusForbidden, rec.Code)
	env := decode(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "FORBIDDEN", env.Code)

	admin, _, err := codec.Issue("user-2", "b@b.c", "proj_demo", []string{"ADMIN"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(e, admin).Code)
}
