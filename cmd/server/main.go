// Package main is the entry point for the Bookinsights API
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stayview/bookinsightsapi/internal/api"
	"github.com/stayview/bookinsightsapi/internal/api/middleware"
	"github.com/stayview/bookinsightsapi/internal/config"
	"github.com/stayview/bookinsightsapi/internal/database"
	"github.com/stayview/bookinsightsapi/internal/service"
	"github.com/stayview/bookinsightsapi/pkg/utils/zaplogger"
)

func main() {
	// Setup logger
	defer zaplogger.Sync()

	// Load configuration
	cfg, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zaplogger.SetLogLevel(cfg.ServerLogLevel)

	// startUpMessage
	zaplogger.Info(config.SingleLine)
	zaplogger.Info(cfg.APIName + " " + cfg.APIVersion)

	// Connect to Postgres
	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}

	// Connect Redis
	redisClient, err := database.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Every token issued before this boot becomes invalid here
	tokenStore := service.NewRedisTokenStore(redisClient)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := tokenStore.Clear(ctx); err != nil {
		log.Fatalf("Failed to clear issued token set: %v", err)
	}

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Setup middleware
	middleware.SetupLoggerMiddleware(e)

	// Setup routes
	if err := api.SetupRoutes(e, cfg, db, tokenStore); err != nil {
		log.Fatalf("Failed to setup routes: %v", err)
	}

	// Setup and start cron jobs
	cronService := service.NewCronService(tokenStore)
	cronService.Start()

	// Start the server
	startServer(e, cfg)
}

// startServer starts the Echo server on the specified port
func startServer(e *echo.Echo, cfg *config.Config) {
	port := cfg.ServerPort
	if port == "" {
		port = "3000"
	}
	startupMessage := fmt.Sprintf("%s %s Server [:%s] started", cfg.APIName, cfg.APIVersion, port)

	zaplogger.Info(config.SingleLine)
	zaplogger.Info(startupMessage)
	zaplogger.Info(config.SingleLine)
	e.Logger.Fatal(e.Start(":" + port))
}
