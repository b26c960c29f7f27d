package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/stayview/bookinsightsapi/internal/service"
	"github.com/stayview/bookinsightsapi/pkg/utils/response"
)

// TokenCookieName is the cookie carrying the bearer token
const TokenCookieName = "token"

// Context keys set by the auth middleware for downstream handlers
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
	ContextKeyToken    = "token"
)

// AuthMiddleware protects JSON endpoints. Requests without a valid issued
// token get a 401 body.
func AuthMiddleware(sessionService *service.SessionService) echo.MiddlewareFunc {
	return authMiddleware(sessionService, func(c echo.Context) error {
		return response.Unauthorized(c)
	})
}

// PageAuthMiddleware protects page endpoints. Unauthenticated browsers are
// sent back to the login page.
func PageAuthMiddleware(sessionService *service.SessionService) echo.MiddlewareFunc {
	return authMiddleware(sessionService, func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/")
	})
}

func authMiddleware(sessionService *service.SessionService, reject func(echo.Context) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return reject(c)
			}

			claims, err := sessionService.ValidateToken(c.Request().Context(), token)
			if err != nil {
				return reject(c)
			}

			// Add session data to context for use in handlers
			c.Set(ContextKeyUserID, claims.UserID)
			c.Set(ContextKeyUsername, claims.Username)
			c.Set(ContextKeyToken, token)

			return next(c)
		}
	}
}

// extractToken reads the bearer token from the session cookie, falling back
// to the Authorization header for non-browser clients
func extractToken(c echo.Context) string {
	if cookie, err := c.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
