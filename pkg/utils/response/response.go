// Package response contains response utility functions and types
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// MessageResponse is the body sent when an endpoint only reports an outcome.
// Redirect and Insights are set by the endpoints that carry them.
type MessageResponse struct {
	Message  string      `json:"message"`
	Redirect string      `json:"redirect,omitempty"`
	Insights interface{} `json:"insights,omitempty"`
}

// Message sends a JSON body containing only a message
func Message(c echo.Context, httpStatus int, message string) error {
	return c.JSON(httpStatus, MessageResponse{Message: message})
}

// MessageWithRedirect sends a success message with a redirect target for the browser
func MessageWithRedirect(c echo.Context, message, redirect string) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: message, Redirect: redirect})
}

// MessageWithInsights sends a success message with the freshly computed insights
func MessageWithInsights(c echo.Context, message string, insights interface{}) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: message, Insights: insights})
}

// Unauthorized sends the 401 body used by all protected JSON endpoints
func Unauthorized(c echo.Context) error {
	return Message(c, http.StatusUnauthorized, "Unauthorized")
}
