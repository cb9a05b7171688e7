package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	httpapi "github.com/nwsdaily/nws-daily-forecast/internal/api/http"
	"github.com/nwsdaily/nws-daily-forecast/internal/config"
	"github.com/nwsdaily/nws-daily-forecast/internal/forecast"
	"github.com/nwsdaily/nws-daily-forecast/internal/forecast/providers"
	"github.com/nwsdaily/nws-daily-forecast/internal/scheduler"
	"github.com/nwsdaily/nws-daily-forecast/internal/store"
)

func main() {
	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound NWS calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory cache of the latest consolidated forecast per point.
	memStore := store.NewMemoryStore(cfg.StoreMaxAge)

	// NWS source wrapped with day/night consolidation. Dropping the wrapper
	// (source.Inner()) would serve the raw period forecast instead.
	nws := providers.NewNWSSource(httpClient, cfg.UserAgent, cfg.Mode)
	source := forecast.NewDailySource(nws)

	// Scheduler that periodically refreshes and caches forecasts.
	sched := scheduler.New(cfg.Points, cfg.RefreshInterval, source, memStore)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "nws-daily-forecast",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "nws-daily-forecast",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, memStore, cfg.Points)

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
}
