// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rehire/internal/cache"
	"rehire/internal/config"
	"rehire/internal/database"
	"rehire/internal/maintenance"
	"rehire/internal/middleware"
	"rehire/internal/models"
	"rehire/internal/repository"
	"rehire/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	appName             = "rehire-api"
	defaultBodyLimit    = 1 * 1024 * 1024
	defaultReqTimeout   = 10 * time.Second
	readinessPingBudget = 5 * time.Second
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	stopSweeper    context.CancelFunc

	messaging *service.MessagingService
	users     *service.UserService
	hiring    *service.HiringService
	referrals *service.ReferralService
	analytics *service.AnalyticsService
	sweeper   *maintenance.Sweeper
}

// NewServer connects to the database and Redis and wires every dependency.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	conversationRepo := repository.NewConversationRepository(db)

	store := service.NewMessageStore(messageRepo)
	directory := service.NewConversationDirectory(conversationRepo, messageRepo, profileRepo)

	sweeper, err := maintenance.NewSweeper(messageRepo, conversationRepo, directory, cfg.MaintenanceCron)
	if err != nil {
		return nil, err
	}

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(appName),
		messaging:      service.NewMessagingService(userRepo, profileRepo, store, directory),
		users:          service.NewUserService(userRepo, profileRepo, redisClient, cfg.JWTSecret),
		hiring:         service.NewHiringService(repository.NewHiringPostRepository(db)),
		referrals:      service.NewReferralService(repository.NewReferralRepository(db)),
		analytics:      service.NewAnalyticsService(repository.NewAnalyticsRepository(db)),
		sweeper:        sweeper,
	}, nil
}

// App builds the Fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      appName,
		BodyLimit:    defaultBodyLimit,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// errorHandler renders errors that escaped a handler in the response envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(models.Response{Success: false, Message: fiberErr.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	app.Use(middleware.TracingMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	timeout := defaultReqTimeout
	if s.config.RequestTimeoutSeconds > 0 {
		timeout = time.Duration(s.config.RequestTimeoutSeconds) * time.Second
	}
	app.Use(middleware.RequestTimeout(timeout))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", s.Signup)
	auth.Post("/login", s.Login)

	protected := api.Group("", middleware.AuthRequired(s.config.JWTSecret, s.redis))

	protected.Post("/auth/logout", s.Logout)
	protected.Get("/auth/me", s.Me)

	profiles := protected.Group("/profiles")
	profiles.Get("/me", s.GetMyProfile)
	profiles.Put("/me", s.UpdateMyProfile)
	profiles.Get("/:userId", s.GetProfile)

	// Messaging
	protected.Get("/conversations", s.ListConversations)
	protected.Get("/conversation/:userId", s.OpenThread)
	protected.Patch("/conversations/:convId/archive", s.ArchiveConversation)
	protected.Patch("/conversations/:convId/unarchive", s.UnarchiveConversation)
	protected.Delete("/conversations/:convId", s.DeleteConversation)

	messages := protected.Group("/messages")
	messages.Post("/", s.SendMessage)
	// Specific routes before generic /:id
	messages.Get("/unread-count", s.UnreadCount)
	messages.Put("/:id/read", s.MarkMessageRead)
	messages.Delete("/:id/message", s.DeleteMessage)
	messages.Put("/:id", s.EditMessage)

	hiring := protected.Group("/hiring-posts")
	hiring.Get("/", s.ListHiringPosts)
	hiring.Post("/", s.CreateHiringPost)
	hiring.Patch("/:id/close", s.CloseHiringPost)
	hiring.Get("/:id", s.GetHiringPost)
	hiring.Put("/:id", s.UpdateHiringPost)
	hiring.Delete("/:id", s.DeleteHiringPost)

	referrals := protected.Group("/referrals")
	referrals.Get("/", s.ListReferrals)
	referrals.Post("/", s.CreateReferral)
	referrals.Patch("/:id/close", s.CloseReferral)
	referrals.Get("/:id", s.GetReferral)
	referrals.Put("/:id", s.UpdateReferral)
	referrals.Delete("/:id", s.DeleteReferral)

	protected.Get("/analytics/summary", s.AnalyticsSummary)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return models.RespondWithData(c, fiber.StatusOK, fiber.Map{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// ReadinessCheck reports whether the database and Redis answer pings.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessPingBudget)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	// Redis only backs caching and token revocation, so it does not gate readiness.
	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(models.Response{
		Success: status == fiber.StatusOK,
		Data: fiber.Map{
			"status": overall,
			"checks": fiber.Map{
				"database": dbStatus,
				"redis":    redisStatus,
			},
			"time": time.Now().UTC(),
		},
	})
}

// Start begins serving on the configured port and starts the maintenance
// sweeper when enabled. It blocks until the listener stops.
func (s *Server) Start() error {
	app := s.App()

	if s.config.MaintenanceEnabled {
		s.stopSweeper = s.sweeper.Start(context.Background())
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops the listener, the sweeper and closes the database and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.stopSweeper != nil {
		s.stopSweeper()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
