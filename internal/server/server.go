// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "devconnector/docs" // swagger docs
	"devconnector/internal/auth"
	"devconnector/internal/bootstrap"
	"devconnector/internal/cache"
	"devconnector/internal/config"
	"devconnector/internal/database"
	"devconnector/internal/featureflags"
	"devconnector/internal/github"
	"devconnector/internal/middleware"
	"devconnector/internal/models"
	"devconnector/internal/notifications"
	"devconnector/internal/repository"
	"devconnector/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Version is reported by the readiness probe and tracing resource.
const Version = "1.0.0"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	verifier    *auth.Verifier
	rateLimiter *middleware.RateLimiter
	github      *github.Client
	hub         *notifications.Hub
	flags       *featureflags.Manager

	userService    *service.UserService
	postService    *service.PostService
	profileService *service.ProfileService
	accountService *service.AccountService
}

// NewServer connects to the database and Redis and creates a server instance
// with all dependencies. Redis is optional: without it, token revocation,
// caching and rate limiting are disabled and realtime events stay local.
func NewServer(cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	store := cache.NewStore(redisClient)

	userRepo := repository.NewUserRepository(db, store)
	postRepo := repository.NewPostRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	verifier := auth.NewVerifier(cfg, auth.NewRedisRevocationStore(redisClient))

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("devconnector-api"),
		verifier:       verifier,
		rateLimiter:    middleware.NewRateLimiter(redisClient, cfg.Env),
		github:         github.New(cfg, store),
		hub:            notifications.NewHub(notifications.NewNotifier(redisClient)),
		flags:          featureflags.NewManager(cfg.FeatureFlags),
		userService:    service.NewUserService(userRepo, verifier),
		postService:    service.NewPostService(postRepo, userRepo),
		profileService: service.NewProfileService(profileRepo),
		accountService: service.NewAccountService(accountRepo, store, verifier),
	}, nil
}

// App builds the Fiber application with middleware and routes on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	app := fiber.New(fiber.Config{
		AppName:   "DevConnector API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, err)
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Server span first so the context middleware can pick up the trace id.
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, x-auth-token, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Msg: "Too many requests, please try again later",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Users and auth
	api.Post("/users", s.rateLimiter.Limit("register", 5, 10*time.Minute), s.Register)

	authRoutes := api.Group("/auth")
	authRoutes.Get("/", s.authenticated(s.CurrentUser))
	authRoutes.Post("/", s.rateLimiter.Limit("login", 10, 5*time.Minute), s.Login)
	authRoutes.Post("/logout", s.authenticated(s.Logout))

	// Posts. Specific /like, /unlike and /comment routes before generic /:id.
	posts := api.Group("/posts")
	posts.Post("/", s.rateLimiter.Limit("create_post", 10, time.Minute), s.authenticated(s.CreatePost))
	posts.Get("/", s.authenticated(s.ListPosts))
	posts.Put("/like/:id", s.authenticated(s.LikePost))
	posts.Put("/unlike/:id", s.authenticated(s.UnlikePost))
	posts.Post("/comment/:id", s.rateLimiter.Limit("create_comment", 30, time.Minute), s.authenticated(s.AddComment))
	posts.Delete("/comment/:id/:comment_id", s.authenticated(s.DeleteComment))
	posts.Get("/:id", s.authenticated(s.GetPost))
	posts.Delete("/:id", s.authenticated(s.DeletePost))

	// Profiles
	profile := api.Group("/profile")
	profile.Get("/", s.ListProfiles)
	profile.Post("/", s.authenticated(s.UpsertProfile))
	profile.Delete("/", s.authenticated(s.DeleteAccount))
	profile.Get("/me", s.authenticated(s.GetMyProfile))
	profile.Get("/user/:user_id", s.GetProfileByUser)
	profile.Get("/github/:username", s.GithubRepos)
	profile.Put("/experience", s.authenticated(s.AddExperience))
	profile.Delete("/experience/:exp_id", s.authenticated(s.DeleteExperience))
	profile.Put("/education", s.authenticated(s.AddEducation))
	profile.Delete("/education/:edu_id", s.authenticated(s.DeleteEducation))

	api.Get("/features", s.authenticated(s.FeatureFlags))

	// Realtime post events
	api.Get("/ws", s.WebsocketUpgrade, s.WebsocketAuth(), s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so a
// missing client is reported but does not fail the probe.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"version": Version,
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start wires realtime delivery and starts listening.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if err := s.hub.StartWiring(s.shutdownCtx); err != nil {
		middleware.Logger.Warn("failed to subscribe to post events, delivering locally while retrying",
			slog.String("error", err.Error()))
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port), slog.String("env", s.config.Env))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the subscriber goroutine
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down websocket hub", slog.String("error", err.Error()))
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
