package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yuruojie777/auth-service/internal/api"
)

// RequireRole returns a middleware that enforces that the authenticated
// user holds at least one of the given roles in the project the access
// token was issued for. It assumes JWTAuth has stored the roles claim
// under CtxRoles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			held, ok := c.Get(CtxRoles).([]string)
			if !ok {
				return api.Respond(c, http.StatusForbidden, api.Fail("FORBIDDEN", "Insufficient role"))
			}
			for _, r := range held {
				if allowed[r] {
					return next(c)
				}
			}
			return api.Respond(c, http.StatusForbidden, api.Fail("FORBIDDEN", "Insufficient role"))
		}
	}
}
