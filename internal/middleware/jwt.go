// Package middleware provides reusable request processing for the HTTP
// layer: access-token validation, role enforcement and rate limiting.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/yuruojie777/auth-service/internal/api"
	"github.com/yuruojie777/auth-service/internal/token"
)

// Context keys set by JWTAuth for downstream handlers.
const (
	CtxUserID    = "user_id"
	CtxEmail     = "email"
	CtxProjectID = "project_id"
	CtxRoles     = "roles"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token with the given codec and injects the subject, email, project id
// and roles claims into the request context. Expired tokens get a
// distinct code so clients know to refresh; forged or malformed ones do
// not learn which claim failed.
func JWTAuth(codec *token.AccessCodec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return api.Respond(c, http.StatusUnauthorized, api.Fail("UNAUTHORIZED", "Missing bearer token"))
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := codec.Validate(raw)
			if err != nil {
				if errors.Is(err, token.ErrTokenExpired) {
					return api.Respond(c, http.StatusUnauthorized, api.Fail("TOKEN_EXPIRED", "Access token expired"))
				}
				return api.Respond(c, http.StatusUnauthorized, api.Fail("INVALID_TOKEN", "Invalid access token"))
			}

			c.Set(CtxUserID, claims.Subject)
			c.Set(CtxEmail, claims.Email)
			c.Set(CtxProjectID, claims.ProjectID)
			c.Set(CtxRoles, claims.Roles)
			return next(c)
		}
	}
}
