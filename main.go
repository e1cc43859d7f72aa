package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/HSouheill/branchstock_backend/config"
	"github.com/HSouheill/branchstock_backend/controllers"
	"github.com/HSouheill/branchstock_backend/middleware"
	"github.com/HSouheill/branchstock_backend/repositories"
	"github.com/HSouheill/branchstock_backend/routes"
	"github.com/HSouheill/branchstock_backend/services"
	"github.com/HSouheill/branchstock_backend/utils"
	"github.com/HSouheill/branchstock_backend/websocket"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	settings := config.Load()
	if !settings.IsDevelopment() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Auth collaborator
	var verifier middleware.TokenVerifier
	authClient, err := config.InitFirebase(ctx, settings)
	switch {
	case err == nil:
		verifier = middleware.NewFirebaseVerifier(authClient)
	case errors.Is(err, config.ErrFirebaseNotConfigured) && settings.JWTSecret != "":
		log.Warn().Msg("Firebase not configured, verifying HS256 tokens signed with JWT_SECRET")
		verifier = middleware.NewJWTVerifier(settings.JWTSecret)
	default:
		log.Fatal().Err(err).Msg("no token verifier available")
	}

	// Connect to database
	client, err := config.ConnectDB(settings)
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Disconnect(shutdownCtx)
	}()
	db := client.Database(settings.DBName)

	// Redis is optional
	var idempotency services.IdempotencyStore
	if redisClient := config.ConnectRedis(settings); redisClient != nil {
		defer redisClient.Close()
		idempotency = repositories.NewIdempotencyStore(redisClient)
	}

	hubStop := make(chan struct{})
	defer close(hubStop)
	wsHub := websocket.NewHub()
	go wsHub.Run(hubStop)

	var mailer services.Mailer
	smtp := &utils.SMTPMailer{
		Host:     settings.SMTPHost,
		Port:     settings.SMTPPort,
		User:     settings.SMTPUser,
		Password: settings.SMTPPass,
		From:     settings.SMTPFrom,
	}
	if smtp.Enabled() {
		mailer = smtp
	}

	if err := utils.InitializeStorage(settings.UploadsDir); err != nil {
		log.Fatal().Err(err).Msg("cannot prepare uploads directory")
	}

	// Initialize repositories
	branchRepo := repositories.NewBranchRepository(db)
	itemRepo := repositories.NewItemRepository(db)
	saleRepo := repositories.NewSaleRepository(db)
	userRepo := repositories.NewUserRepository(db)
	messageRepo := repositories.NewMessageRepository(db)

	// Initialize services
	catalog := services.NewCatalogService(branchRepo, itemRepo, settings.UploadsDir)
	sales := services.NewSaleService(branchRepo, itemRepo, saleRepo, idempotency, wsHub, settings.LowStockThreshold)
	aggregator := services.NewAggregatorService(branchRepo, itemRepo, saleRepo, userRepo, settings.Location)
	lowStock := services.NewLowStockService(branchRepo, itemRepo, settings.LowStockThreshold)
	roles := services.NewRoleDirectory(userRepo, branchRepo, wsHub)
	messages := services.NewMessageService(messageRepo, userRepo, wsHub, mailer, settings.OwnerEmail)

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = controllers.NewValidator()

	rateLimiter := middleware.NewRateLimiter()
	rateLimiter.Start(hubStop)

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS(middleware.CORSOrigins(settings.CORSAllowedOrigins)))
	e.Use(middleware.SecurityHeaders(middleware.SecurityConfig{}))
	e.Use(rateLimiter.RateLimit())

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		pingCtx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status":   "unhealthy",
				"database": "unreachable",
			})
		}
		return c.JSON(http.StatusOK, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	routes.SetupRoutes(e, &routes.Handlers{
		Verifier:      verifier,
		Roles:         roles,
		Hub:           wsHub,
		Catalog:       controllers.NewCatalogController(catalog),
		Sales:         controllers.NewSaleController(sales),
		Reports:       controllers.NewReportController(aggregator, lowStock),
		Users:         controllers.NewUserController(roles),
		Notifications: controllers.NewNotificationController(messages),
	})

	e.Static("/uploads", settings.UploadsDir)

	go func() {
		log.Info().Str("port", settings.Port).Msg("branchstock backend listening")
		if err := e.Start(":" + settings.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server exited")
}
