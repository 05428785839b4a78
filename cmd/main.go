package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"carrinex/internal/authz"
	"carrinex/internal/caching"
	"carrinex/internal/config"
	"carrinex/internal/gateway"
	"carrinex/internal/handlers"
	"carrinex/internal/jobs/background"
	"carrinex/internal/middleware"
	"carrinex/internal/repositories"
	"carrinex/internal/routes"
	"carrinex/internal/services"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("configuration error")
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	companyRepo := repositories.NewCompanyRepo(pool)
	locationRepo := repositories.NewLocationRepo(pool)
	provisionRepo := repositories.NewProvisionRepo(pool)

	// Services
	authSvc := services.NewAuthService(
		userRepo, companyRepo, cacheSvc,
		[]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
		logger,
	)
	provisionSvc := services.NewProvisionService(provisionRepo, logger)
	onboardingSvc := services.NewOnboardingService(cacheSvc, provisionSvc, cfg.OnboardingDraftTTL, logger)

	// Route table and gateway, built once and injected
	table := routes.Default()
	gw := gateway.New(table)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, userRepo, companyRepo, logger)
	onboardingHandlers := handlers.NewOnboardingHandlers(onboardingSvc, authSvc, userRepo, logger)
	companyHandlers := handlers.NewCompanyHandlers(companyRepo, locationRepo, userRepo, logger)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(middleware.Gateway(gw, authSvc))

	// Health endpoints
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	// Identity endpoints, gateway class API_AUTH
	auth := e.Group("/api/auth")
	auth.POST("/sign-up", authHandlers.SignUp)
	auth.POST("/sign-in", authHandlers.SignIn)
	auth.POST("/refresh", authHandlers.Refresh)
	auth.POST("/sign-out", authHandlers.SignOut)
	auth.GET("/me", authHandlers.Me, middleware.RequireSession(authSvc))

	// Onboarding wizard API
	onboardingAPI := e.Group("/api/onboarding", middleware.RequireSession(authSvc))
	onboardingAPI.GET("", onboardingHandlers.State)
	onboardingAPI.POST("/type", onboardingHandlers.SelectType)
	onboardingAPI.POST("/company-info", onboardingHandlers.SubmitCompanyInfo)
	onboardingAPI.POST("/company-details", onboardingHandlers.SubmitCompanyDetails)
	onboardingAPI.POST("/back", onboardingHandlers.Back)
	onboardingAPI.POST("/confirm", onboardingHandlers.Confirm)

	// Company API
	companyAPI := e.Group("/api/companies", middleware.RequireSession(authSvc))
	companyAPI.GET("", companyHandlers.ListCompanies, middleware.RequireAuthority(authz.AuthorityAdmin))
	companyAPI.GET("/:id", companyHandlers.GetCompany)
	companyAPI.GET("/:id/locations", companyHandlers.ListLocations)
	companyAPI.POST("/:id/approve", companyHandlers.ApproveCompany, middleware.RequireAuthority(authz.AuthorityAdmin))

	// Page routes, guarded by the gateway middleware
	pageHandler := handlers.PageHandler(table)
	for _, path := range table.Paths() {
		e.GET(path, pageHandler)
	}
	e.GET(routes.OnboardingPath, pageHandler)

	// Background jobs
	scheduler, err := background.NewJobScheduler(companyRepo, userRepo, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create job scheduler")
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			logger.Warn().Err(err).Msg("scheduler shutdown failed")
		}
	}()

	logger.Info().Int("port", cfg.Port).Msg("carrinex server starting")
	if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
