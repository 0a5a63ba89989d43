package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/yuruojie777/auth-service/internal/handler"
	"github.com/yuruojie777/auth-service/internal/model"
	"github.com/yuruojie777/auth-service/internal/repository"
	"github.com/yuruojie777/auth-service/internal/router"
	"github.com/yuruojie777/auth-service/internal/service"
	"github.com/yuruojie777/auth-service/internal/token"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type pairData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func newTestApp(t *testing.T) *echo.Echo {
	t.Helper()
	store := repository.NewMemoryStore()
	store.AddProject(model.Project{ID: "proj_demo", Name: "Demo", Active: true})

	codec := token.NewAccessCodec("handler-test-signing-secret", 15*time.Minute)
	hasher := token.NewRefreshHasher("handler-test-refresh-key")
	sessions := service.NewSessionService(
		store.Users(), store.Projects(), store.Memberships(), store.Tokens(),
		codec, hasher, bcrypt.MinCost, 30*24*time.Hour, nil, zap.NewNop(),
	)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(sessions, zap.NewNop(), false), codec, nil)
	return e
}

func doJSON(e *echo.Echo, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
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

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "refresh_token" {
			return ck
		}
	}
	t.Fatal("no refresh_token cookie in response")
	return nil
}

func TestRegisterEndpoint(t *testing.T) {
	e := newTestApp(t)

	rec := doJSON(e, http.MethodPost, "/v1/auth/register",
		`{"email":"alice@example.com","password":"password-1","project_id":"proj_demo"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "OK", env.Code)

	var data pairData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.AccessToken)
	assert.NotEmpty(t, data.RefreshToken)

	ck := refreshCookie(t, rec)
	assert.Equal(t, data.RefreshToken, ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, "/v1/auth", ck.Path)
}

func TestRegisterValidation(t *testing.T) {
	e := newTestApp(t)

	rec := doJSON(e, http.MethodPost, "/v1/auth/register", `{"email":"alice@example.com"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rec).Code)

	rec = doJSON(e, http.MethodPost, "/v1/auth/register", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST_BODY", decode(t, rec).Code)
}

func TestRegisterDuplicateEmailEndpoint(t *testing.T) {
	e := newTestApp(t)
	body := `{"email":"alice@example.com","password":"password-1","project_id":"proj_demo"}`

	require.Equal(t, http.StatusCreated, doJSON(e, http.MethodPost, "/v1/auth/register", body).Code)

	rec := doJSON(e, http.MethodPost, "/v1/auth/register", body)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EMAIL_ALREADY_USED", decode(t, rec).Code)
}

func TestLoginWrongPassword(t *testing.T) {
	e := newTestApp(t)
	doJSON(e, http.MethodPost, "/v1/auth/register",
		`{"email":"alice@example.com","password":"password-1","project_id":"proj_demo"}`)

	rec := doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"email":"alice@example.com","password":"nope","project_id":"proj_demo"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decode(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Code)
}

func TestLoginUnknownProject(t *testing.T) {
	e := newTestApp(t)
	doJSON(e, http.MethodPost, "/v1/auth/register",
		`{"email":"alice@example.com","password":"password-1","project_id":"proj_demo"}`)

	rec := doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"email":"alice@example.com","password":"password-1","project_id":"proj_ghost"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PROJECT_NOT_FOUND", decode(t, rec).Code)
}

func TestRefreshFlow(t *testing.T) {
	e := newTestApp(t)

	reg := doJSON(e, http.MethodPost, "/v1/auth/register",
		`{"email":"alice@example.com","password":"password-1","project_id":"proj_demo"}`)
	require.Equal(t, http.StatusCreated, reg.Code)
	first := refreshCookie(t, reg)

	rec := doJSON(e, http.MethodPost, "/v1/auth/refresh", `{"project_id":"proj_demo"}`, first)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data pairData
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	assert.NotEmpty(t, data.AccessToken)
	// The rotated refresh token travels only in the cookie.
	assert.Empty(t, data.RefreshToken)

	second := refreshCookie(t, rec)
	assert.NotEqual(t, first.Value, second.Value)

	// Replaying the consumed cookie fails.
	rec = doJSON(e, http.MethodPost, "/v1/auth/refresh", `{"project_id":"proj_demo"}`, first)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", decode(t, rec).Code)

	// The rotated cookie works.
	rec = doJSON(e, http.MethodPost, "/v1/auth/refresh", `{"project_id":"proj_demo"}`, second)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshWithoutCookie(t *testing.T) {
	e := newTestApp(t)

	rec := doJSON(e, http.MethodPost, "/v1/auth/refresh", `{"project_id":"proj_demo"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", decode(t, rec).Code)
}

func TestMeAndLogout(t *testing.T) {
	e := newTestApp(t)

	reg := doJSON(e, http.MethodPost, "/v1/auth/register",
		`{"email":"alice@example.com","password":"password-1","project_id":"proj_demo"}`)
	require.Equal(t, http.StatusCreated, reg.Code)
	var data pairData
	require.NoError(t, json.Unmarshal(decode(t, reg).Data, &data))
	cookie := refreshCookie(t, reg)

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+data.AccessToken)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "alice@example.com")
	assert.NotContains(t, rec.Body.String(), "password")

	req = httptest.NewRequest(http.MethodPost, "/v1/logout", nil)
	req.Header.Set("Authorization", "Bearer "+data.AccessToken)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Logout killed every session; the cookie is useless now.
	after := doJSON(e, http.MethodPost, "/v1/auth/refresh", `{"project_id":"proj_demo"}`, cookie)
	require.Equal(t, http.StatusUnauthorized, after.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", decode(t, after).Code)
}

func TestMeRejectsBadToken(t *testing.T) {
	e := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", decode(t, rec).Code)

	// Middleware rejections use the same envelope as handler responses.
	req = httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, rec).Code)
}

func TestHealthz(t *testing.T) {
	e := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
