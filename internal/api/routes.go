// Package api contains the API routes for the Bookinsights API
package api

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/stayview/bookinsightsapi/internal/api/handlers"
	"github.com/stayview/bookinsightsapi/internal/api/middleware"
	"github.com/stayview/bookinsightsapi/internal/config"
	"github.com/stayview/bookinsightsapi/internal/repository"
	"github.com/stayview/bookinsightsapi/internal/service"
)

// SetupRoutes configures the routes for the API
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *gorm.DB, tokenStore service.TokenStore) error {
	tokenTTL, err := time.ParseDuration(cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("invalid token TTL %q: %v", cfg.TokenTTL, err)
	}

	userRepo := repository.NewUserRepository(db)
	sessionService := service.NewSessionService(userRepo, tokenStore, cfg.JWTSecret, tokenTTL)
	sessionHandler := handlers.NewSessionHandler(sessionService, tokenTTL, cfg.IsProduction())

	insightService, err := service.NewInsightService(cfg)
	if err != nil {
		return err
	}
	insightStore := service.NewInsightStore()
	insightHandler := handlers.NewInsightHandler(insightService, insightStore)

	// Static pages
	e.File("/", "public/index.html")
	e.GET("/dashboard", func(c echo.Context) error {
		return c.File("public/dashboard.html")
	}, middleware.PageAuthMiddleware(sessionService))
	e.Static("/public", "public")

	// Session routes
	e.POST("/login", sessionHandler.Login)
	e.POST("/logout", sessionHandler.Logout, middleware.AuthMiddleware(sessionService))

	// Insight routes (protected)
	e.POST("/upload", insightHandler.Upload, middleware.AuthMiddleware(sessionService))
	e.POST("/insights", insightHandler.Refresh, middleware.AuthMiddleware(sessionService))

	// API routes
	apiGroup := e.Group("/api")
	apiGroup.GET("/test", insightHandler.TestAPI)
	apiGroup.GET("/insights", insightHandler.GetInsights, middleware.AuthMiddleware(sessionService))

	return nil
}
