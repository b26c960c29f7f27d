// Package handlers contains the handlers for the API
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stayview/bookinsightsapi/internal/api/middleware"
	"github.com/stayview/bookinsightsapi/internal/service"
	"github.com/stayview/bookinsightsapi/pkg/utils/response"
	"github.com/stayview/bookinsightsapi/pkg/utils/zaplogger"
)

// SessionHandler is the handler for login and logout
type SessionHandler struct {
	service      *service.SessionService
	tokenTTL     time.Duration
	secureCookie bool
}

// NewSessionHandler creates a new handler for the session endpoints.
// secureCookie is set in production, where the dashboard is served cross-site
// over TLS.
func NewSessionHandler(service *service.SessionService, tokenTTL time.Duration, secureCookie bool) *SessionHandler {
	return &SessionHandler{
		service:      service,
		tokenTTL:     tokenTTL,
		secureCookie: secureCookie,
	}
}

// loginRequest is the body of POST /login
type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login verifies the submitted credentials, issues a bearer token and sets
// it as an HTTP-only cookie
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.Message(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return response.Message(c, http.StatusBadRequest, "Username and password are required")
	}

	user, token, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return response.Message(c, http.StatusUnauthorized, "User not found")
		case errors.Is(err, service.ErrInvalidPassword):
			return response.Message(c, http.StatusUnauthorized, "Incorrect password or username")
		default:
			zaplogger.Error("login failed", zaplogger.Fields{"error": err})
			return response.Message(c, http.StatusInternalServerError, "Internal Server Error")
		}
	}

	c.SetCookie(h.tokenCookie(token, time.Now().Add(h.tokenTTL)))

	zaplogger.Info("user logged in", zaplogger.Fields{"user_id": user.ID, "username": user.Name})
	return response.MessageWithRedirect(c, "Login successful", "/dashboard")
}

// Logout removes the caller's token from the issued set and expires the
// session cookie
func (h *SessionHandler) Logout(c echo.Context) error {
	token, _ := c.Get(middleware.ContextKeyToken).(string)
	if err := h.service.Logout(c.Request().Context(), token); err != nil {
		zaplogger.Error("logout failed", zaplogger.Fields{"error": err})
		return response.Message(c, http.StatusInternalServerError, "Internal Server Error")
	}

	c.SetCookie(h.tokenCookie("", time.Now().Add(-1*time.Hour)))

	return response.Message(c, http.StatusOK, "Logged out")
}

func (h *SessionHandler) tokenCookie(value string, expires time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
	}
	if h.secureCookie {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	}
	return cookie
}
