// Package server contains the HTTP handlers for the Icarus JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "icarus/docs" // swagger docs
	"icarus/internal/bootstrap"
	"icarus/internal/config"
	"icarus/internal/database"
	"icarus/internal/middleware"
	"icarus/internal/models"
	"icarus/internal/observability"
	"icarus/internal/repository"
	"icarus/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	app             *fiber.App
	promMiddleware  *fiberprometheus.FiberPrometheus
	userService     *service.UserService
	authService     *service.AuthService
	postService     *service.PostService
	feedService     *service.FeedService
	waitlistService *service.WaitlistService
}

// NewServer connects to the stores named by cfg and builds a Server on them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedDemo: cfg.SeedDemo})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires a config and a database")
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(observability.ServiceName),
		userService:    service.NewUserService(userRepo),
		authService:    service.NewAuthService(userRepo, cfg.SessionSecret, cfg.SessionTTL()),
		postService: service.NewPostService(
			postRepo,
			repository.NewLikeRepository(db),
			repository.NewBookmarkRepository(db),
		),
		feedService:     service.NewFeedService(postRepo, cfg.FeedLimit, cfg.PageSize),
		waitlistService: service.NewWaitlistService(repository.NewWaitlistRepository(db)),
	}, nil
}

// NewApp builds a fiber app with the middleware chain and every route mounted.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Icarus API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Propagate request and trace IDs into the request context for logging.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5000,http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Post("/waitlist/submit", middleware.RateLimit(s.redis, 5, 10*time.Minute, "waitlist"), s.JoinWaitlist)

	api := app.Group("/api")
	required := s.SessionRequired()
	optional := s.SessionOptional()

	// Auth
	api.Post("/signup", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.Signup)
	api.Post("/signin", middleware.RateLimit(s.redis, 10, 5*time.Minute, "signin"), s.Signin)
	api.Post("/signout", required, s.Signout)

	// Current user
	api.Get("/user", required, s.GetCurrentUser)
	api.Put("/user/profile", required, s.UpdateProfile)
	api.Put("/user/password", required, s.ChangePassword)
	api.Put("/user/theme", required, s.SetTheme)
	api.Delete("/user/delete", required, s.DeleteAccount)

	// Posts; specific /:id/:action routes before the generic /:id routes
	api.Get("/posts", required, s.ListPosts)
	api.Post("/posts", required, middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	api.Post("/posts/:id/like", required, s.LikePost)
	api.Post("/posts/:id/bookmark", required, s.BookmarkPost)
	api.Get("/posts/:id", optional, s.GetPost)
	api.Delete("/posts/:id", required, s.DeletePost)
	api.Get("/users/:id/posts", optional, s.GetUserPosts)

	// Page views
	api.Get("/feed/:theme?", required, s.Feed)
	api.Get("/explore/:theme?", required, s.Feed)
	api.Get("/bookmarks/:theme?", required, s.Bookmarks)
	api.Get("/profile/:theme?", required, s.Profile)
	api.Get("/dashboard", required, s.Dashboard)

	api.Get("/waitlist", required, s.ListWaitlist)

	api.Get("/swagger/*", swagger.HandlerDefault)
}

// LivenessCheck handles liveness check requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"status":  "up",
		"time":    time.Now().UTC(),
	})
}

// ReadinessCheck reports the database and Redis state. Redis is optional:
// without it the service runs uncached, so only the database decides readiness.
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
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": status == fiber.StatusOK,
		"status":  overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now().UTC(),
	})
}

// Start builds the app and listens on the configured port until Shutdown.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully stops the HTTP server and closes the stores.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			errs = append(errs, fmt.Errorf("close database: %w", cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", rerr))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return errors.Join(errs...)
}
