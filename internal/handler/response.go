package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/yuruojie777/auth-service/internal/api"
)

// Local shorthands for the shared envelope.

func ok(data interface{}) api.Response { return api.OK(data) }

func fail(code, message string) api.Response { return api.Fail(code, message) }

func respond(c echo.Context, status int, res api.Response) error {
	return api.Respond(c, status, res)
}
