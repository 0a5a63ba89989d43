// Package api defines the JSON envelope every endpoint and middleware
// answers with, success or failure.
package api

import "github.com/labstack/echo/v4"

// Response is the wire envelope. Code is a stable machine-readable
// string; Details carries optional structured context such as field
// errors.
type Response struct {
	Success bool        `json:"success"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func OK(data interface{}) Response {
	return Response{Success: true, Code: "OK", Message: "Success", Data: data}
}

func Fail(code, message string) Response {
	return Response{Success: false, Code: code, Message: message}
}

func Respond(c echo.Context, status int, res Response) error {
	return c.JSON(status, res)
}
