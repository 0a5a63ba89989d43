package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/yuruojie777/auth-service/internal/middleware"
	"github.com/yuruojie777/auth-service/internal/service"
)

// refreshCookie is the HTTP-only cookie carrying the refresh token.
// Scoped to the auth path so it is never sent to other endpoints.
const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/v1/auth"
	dbTimeout         = 5 * time.Second
)

// AuthHandler exposes the session flows over HTTP. It owns no business
// logic; everything is delegated to the session service.
type AuthHandler struct {
	Sessions     *service.SessionService
	Log          *zap.Logger
	CookieSecure bool
}

func NewAuthHandler(sessions *service.SessionService, log *zap.Logger, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Sessions: sessions, Log: log, CookieSecure: cookieSecure}
}

// ----- DTOs -----

type registerReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	ProjectID string `json:"project_id"`
}

type loginReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	ProjectID string `json:"project_id"`
}

type refreshReq struct {
	ProjectID string `json:"project_id"`
}

type tokenPairResp struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token,omitempty"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at,omitempty"`
}

type userResp struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Register creates an account in a project and returns the first token
// pair. The refresh token is additionally set as an HTTP-only cookie.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, fail("BAD_REQUEST_BODY", "Request body is missing or malformed JSON"))
	}
	req.Email = strings.TrimSpace(req.Email)
	req.ProjectID = strings.TrimSpace(req.ProjectID)
	if req.Email == "" || req.Password == "" || req.ProjectID == "" {
		return respond(c, http.StatusBadRequest, fail("VALIDATION_ERROR", "email, password and project_id are required"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pair, err := h.Sessions.Register(ctx, req.Email, req.Password, req.ProjectID, c.Request().UserAgent(), c.RealIP())
	if err != nil {
		return h.respondError(c, err)
	}

	h.setRefreshCookie(c, pair.RefreshToken, pair.RefreshExpiresAt)
	return respond(c, http.StatusCreated, ok(tokenPairResp{
		AccessToken:      pair.AccessToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}))
}

// Login verifies credentials for a project and returns a fresh pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, fail("BAD_REQUEST_BODY", "Request body is missing or malformed JSON"))
	}
	req.Email = strings.TrimSpace(req.Email)
	req.ProjectID = strings.TrimSpace(req.ProjectID)
	if req.Email == "" || req.Password == "" || req.ProjectID == "" {
		return respond(c, http.StatusBadRequest, fail("VALIDATION_ERROR", "email, password and project_id are required"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pair, err := h.Sessions.Login(ctx, req.Email, req.Password, req.ProjectID, c.Request().UserAgent(), c.RealIP())
	if err != nil {
		return h.respondError(c, err)
	}

	h.setRefreshCookie(c, pair.RefreshToken, pair.RefreshExpiresAt)
	return respond(c, http.StatusOK, ok(tokenPairResp{
		AccessToken:      pair.AccessToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}))
}

// Refresh rotates the refresh token from the cookie. The new access
// token goes in the body; the rotated refresh token travels only via
// Set-Cookie and is never echoed in a response body again.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return respond(c, http.StatusUnauthorized, fail("INVALID_REFRESH_TOKEN", "Missing refresh token cookie"))
	}
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, fail("BAD_REQUEST_BODY", "Request body is missing or malformed JSON"))
	}
	req.ProjectID = strings.TrimSpace(req.ProjectID)
	if req.ProjectID == "" {
		return respond(c, http.StatusBadRequest, fail("VALIDATION_ERROR", "project_id is required"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pair, err := h.Sessions.Refresh(ctx, strings.TrimSpace(cookie.Value), req.ProjectID, c.Request().UserAgent(), c.RealIP())
	if err != nil {
		return h.respondError(c, err)
	}

	h.setRefreshCookie(c, pair.RefreshToken, pair.RefreshExpiresAt)
	return respond(c, http.StatusOK, ok(tokenPairResp{
		AccessToken:     pair.AccessToken,
		AccessExpiresAt: pair.AccessExpiresAt,
	}))
}

// Logout revokes every refresh token of the authenticated user and
// clears the cookie (logout-everywhere).
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserID).(string)
	if userID == "" {
		return respond(c, http.StatusUnauthorized, fail("UNAUTHORIZED", "Authentication required"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Sessions.RevokeAll(ctx, userID); err != nil {
		return h.respondError(c, err)
	}
	h.clearRefreshCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user. The password hash never appears in
// the response type.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserID).(string)
	if userID == "" {
		return respond(c, http.StatusUnauthorized, fail("UNAUTHORIZED", "Authentication required"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	user, err := h.Sessions.GetUserByID(ctx, userID)
	if err != nil {
		return h.respondError(c, err)
	}
	return respond(c, http.StatusOK, ok(userResp{
		ID:          user.ID,
		Email:       user.Email,
		Active:      user.Active,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}))
}

// respondError maps service sentinels onto stable codes. Anything
// unclassified is logged and reported as a generic internal error.
func (h *AuthHandler) respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return respond(c, http.StatusUnauthorized, fail("INVALID_CREDENTIALS", "Invalid email or password"))
	case errors.Is(err, service.ErrProjectNotFound):
		return respond(c, http.StatusNotFound, fail("PROJECT_NOT_FOUND", "Project not found"))
	case errors.Is(err, service.ErrProjectAccessDenied):
		return respond(c, http.StatusForbidden, fail("PROJECT_ACCESS_DENIED", "No access to this project"))
	case errors.Is(err, service.ErrEmailAlreadyUsed):
		return respond(c, http.StatusConflict, fail("EMAIL_ALREADY_USED", "Email is already registered"))
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return respond(c, http.StatusUnauthorized, fail("INVALID_REFRESH_TOKEN", "Invalid refresh token"))
	case errors.Is(err, service.ErrUserNotFound):
		return respond(c, http.StatusNotFound, fail("USER_NOT_FOUND", "User not found"))
	default:
		h.Log.Error("unhandled error", zap.Error(err))
		return respond(c, http.StatusInternalServerError, fail("INTERNAL_ERROR", "Unexpected server error"))
	}
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, value string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     refreshCookiePath,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
