package common

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the JSON wrapper returned by every API route.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// RespondOK writes a successful envelope with a data payload.
func RespondOK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// RespondCreated writes a successful 201 envelope with a data payload.
func RespondCreated(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// RespondMessage writes a successful envelope carrying only a message.
func RespondMessage(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}
