// Package response defines the JSON envelope every API handler replies with.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the success response shape.
type Envelope struct {
	Data    any    `json:"data"`
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path"`
}

// ErrorBody is the error response shape.
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Path    string `json:"path"`
	Status  int    `json:"status"`
}

func requestPath(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().URL.Path
}

// OK sends 200 with data.
func OK(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, Envelope{
		Data:    data,
		Status:  http.StatusOK,
		Message: message,
		Path:    requestPath(c),
	})
}

// Created sends 201 with data.
func Created(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusCreated, Envelope{
		Data:    data,
		Status:  http.StatusCreated,
		Message: message,
		Path:    requestPath(c),
	})
}

// Error sends an ErrorBody with the given status.
func Error(c echo.Context, status int, message, detail string) error {
	return c.JSON(status, ErrorBody{
		Message: message,
		Error:   detail,
		Path:    requestPath(c),
		Status:  status,
	})
}

// BadRequest sends 400.
func BadRequest(c echo.Context, message, detail string) error {
	return Error(c, http.StatusBadRequest, message, detail)
}

// NotFound sends 404.
func NotFound(c echo.Context, message, detail string) error {
	return Error(c, http.StatusNotFound, message, detail)
}

// Unavailable sends 503, used while a bot export has not been produced yet.
func Unavailable(c echo.Context, message, detail string) error {
	return Error(c, http.StatusServiceUnavailable, message, detail)
}

// InternalError sends 500.
func InternalError(c echo.Context, message, detail string) error {
	return Error(c, http.StatusInternalServerError, message, detail)
}
