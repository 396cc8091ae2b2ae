package main

import (
	"os"
	"os/signal"
	"syscall"

	"buildease/internal/adapters/http/middleware"
	"buildease/internal/adapters/http/routes"
	"buildease/internal/adapters/persistence/models"
	"buildease/internal/adapters/persistence/repositories"
	"buildease/internal/config"
	"buildease/internal/core/services"
	"buildease/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// @title BuildEase API
// @version 1.0
// @description Construction business workflow API: estimates, stages and company membership.

// @host localhost:8080
// @BasePath /
// @schemes http

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{Mode: cfg.AppMode, Level: cfg.LogLevel})

	// Connect to database. A store that cannot open is fatal; running
	// with silently lost sessions is worse than not starting.
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to auto migrate")
	}
	log.Info().Msg("database migration completed")

	// Seed bootstrap admin account
	if err := config.NewSeeder(db, cfg).Run(); err != nil {
		log.Warn().Err(err).Msg("failed to seed admin user")
	}

	// Session store with hourly expired-session sweep
	store := services.NewSessionStore(repositories.NewSessionRepository(db), cfg.Session.TTL, log)
	store.StartSweep()
	defer store.StopSweep()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "BuildEase API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db, store and cfg for dependency injection)
	routes.Setup(app, db, store, cfg, log)

	// Graceful shutdown
	go gracefulShutdown(app, log)

	log.Info().Str("port", cfg.Port).Str("mode", cfg.AppMode).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("server stopped gracefully")
}
