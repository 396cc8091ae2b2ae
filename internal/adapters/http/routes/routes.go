package routes

import (
	"buildease/internal/adapters/http/handlers"
	"buildease/internal/adapters/http/middleware"
	"buildease/internal/adapters/persistence/repositories"
	"buildease/internal/config"
	"buildease/internal/core/services"
	"buildease/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers and mounts all routes
func Setup(app *fiber.App, db *gorm.DB, store *services.SessionStore, cfg *config.Config, log *logger.Logger) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	estimateRepo := repositories.NewEstimateRepository(db)
	stageRepo := repositories.NewStageRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, log)
	estimateService := services.NewEstimateService(estimateRepo, log)

	aiService := services.NewAIService(services.AIConfig{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	}, log)

	stageService := services.NewStageService(stageRepo, estimateRepo, aiService, log)

	registryService := services.NewRegistryService(services.RegistryConfig{
		BaseURL: cfg.Registry.BaseURL,
		APIKey:  cfg.Registry.APIKey,
		Timeout: cfg.Registry.Timeout,
	}, log)

	addressService := services.NewAddressService(services.AddressConfig{
		BaseURL: cfg.Address.BaseURL,
		APIKey:  cfg.Address.APIKey,
		Timeout: cfg.Address.Timeout,
	}, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg)
	authHandler := handlers.NewAuthHandler(authService, store, cfg)
	companyHandler := handlers.NewCompanyHandler(authService)
	estimateHandler := handlers.NewEstimateHandler(estimateService)
	stageHandler := handlers.NewStageHandler(stageService)
	externalHandler := handlers.NewExternalHandler(registryService, addressService, aiService)

	sessionAuth := middleware.SessionAuth(store, authService, cfg)
	optionalSession := middleware.OptionalSession(store, authService, cfg)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Auth routes
	auth := app.Group("/auth")
	auth.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Get("/me", optionalSession, authHandler.Me)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/check-id", authHandler.CheckID)
	auth.Get("/verify-code", authHandler.VerifyCode)
	auth.Post("/approve", sessionAuth, middleware.RequireBoss(), authHandler.Approve)
	auth.Post("/reject", sessionAuth, middleware.RequireBoss(), authHandler.Reject)

	// Company routes
	company := app.Group("/company", sessionAuth)
	company.Get("/members", companyHandler.Members)

	// Estimate routes
	estimates := app.Group("/estimates", sessionAuth)
	estimates.Post("/", estimateHandler.Create)
	estimates.Get("/", estimateHandler.List)
	estimates.Get("/:id", estimateHandler.Get)
	estimates.Put("/:id", estimateHandler.Update)
	estimates.Patch("/:id/status", estimateHandler.Transition)
	estimates.Delete("/:id", estimateHandler.Delete)

	// Construction stage routes
	stages := app.Group("/stages", sessionAuth)
	stages.Post("/", stageHandler.Create)
	stages.Get("/:projectId", stageHandler.ListByProject)
	stages.Post("/:projectId/ai-schedule", stageHandler.ProposeSchedule)
	stages.Put("/:id", stageHandler.Update)
	stages.Post("/:id/advance", stageHandler.Advance)
	stages.Delete("/:id", stageHandler.Delete)

	// Outbound collaborator routes
	app.Post("/registry/verify", externalHandler.VerifyBusiness)
	app.Get("/address/search", externalHandler.SearchAddress)
	app.Post("/ai/extract-document", sessionAuth, externalHandler.ExtractDocument)
}
