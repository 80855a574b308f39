// Package server contains the HTTP handlers and routing for the Warbler API.
package server

import (
	"context"
	"log/slog"
	"time"

	_ "warbler/docs" // swagger docs
	"warbler/internal/config"
	"warbler/internal/featureflags"
	"warbler/internal/middleware"
	"warbler/internal/repository"
	"warbler/internal/service"
	"warbler/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager

	userRepo    repository.UserRepository
	followRepo  repository.FollowRepository
	messageRepo repository.MessageRepository
	likeRepo    repository.LikeRepository

	identity     *service.IdentityService
	graph        *service.GraphService
	messages     *service.MessageService
	likes        *service.LikeService
	feed         *service.FeedService
	sessions     *session.Manager
	sessionStore session.Store
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil outside production, in which case sessions live in
// process memory and rate limits fail open.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	store, err := session.NewStore(redisClient, !cfg.IsProduction())
	if err != nil {
		return nil, err
	}
	if redisClient == nil {
		middleware.Logger.Warn("redis unavailable; using in-process session store")
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("warbler-api"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		userRepo:       repository.NewUserRepository(db),
		followRepo:     repository.NewFollowRepository(db),
		messageRepo:    repository.NewMessageRepository(db),
		likeRepo:       repository.NewLikeRepository(db),
		sessionStore:   store,
	}

	s.identity = service.NewIdentityService(s.userRepo, s.followRepo, s.messageRepo, s.likeRepo,
		service.NewBcryptHasher(cfg.BcryptCost))
	s.graph = service.NewGraphService(s.followRepo, s.userRepo, s.featureFlags)
	s.messages = service.NewMessageService(s.messageRepo, s.userRepo)
	s.likes = service.NewLikeService(s.likeRepo, s.messageRepo)
	s.feed = service.NewFeedService(s.messageRepo, s.featureFlags)
	s.sessions = session.NewManager(store, s.userRepo, cfg.SessionSecret,
		time.Duration(cfg.SessionTTLHours)*time.Hour)

	return s, nil
}

// NewApp builds a Fiber app with the full middleware stack and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Warbler API",
		BodyLimit: 1 * 1024 * 1024,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Propagate request and trace IDs into the request context
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
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
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// rateLimiter returns a Redis-backed limiter for sensitive endpoints. Limits
// are off outside production and fail open when Redis is missing.
func (s *Server) rateLimiter(resource string, limit int, window time.Duration) fiber.Handler {
	var rdb redis.Cmdable
	if s.redis != nil {
		rdb = s.redis
	}
	return middleware.RateLimit(rdb, middleware.RateLimitConfig{
		Resource: resource,
		Limit:    limit,
		Window:   window,
		Policy:   middleware.FailOpen,
		Disabled: !s.config.IsProduction(),
	})
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	api.Get("/feature-flags", s.SessionOptional(), s.GetFeatureFlags)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", s.rateLimiter("signup", 3, 10*time.Minute), s.Signup)
	auth.Post("/login", s.rateLimiter("login", 10, 5*time.Minute), s.Login)
	auth.Post("/logout", s.SessionRequired(), s.Logout)

	api.Get("/feed", s.SessionOptional(), s.GetFeed)

	// User routes. Specific paths are registered before /:id.
	users := api.Group("/users")
	users.Get("/", s.SearchUsers)
	users.Get("/me", s.SessionRequired(), s.GetMe)
	users.Put("/me", s.SessionRequired(), s.UpdateMe)
	users.Delete("/me", s.SessionRequired(), s.DeleteMe)
	users.Get("/:id/messages", s.GetUserMessages)
	users.Get("/:id/following", s.SessionRequired(), s.GetFollowing)
	users.Get("/:id/followers", s.SessionRequired(), s.GetFollowers)
	users.Post("/:id/follow", s.SessionRequired(), s.FollowUser)
	users.Delete("/:id/follow", s.SessionRequired(), s.UnfollowUser)
	users.Get("/:id", s.SessionOptional(), s.GetUserProfile)

	// Message routes. /liked must precede /:id.
	messages := api.Group("/messages")
	messages.Post("/", s.SessionRequired(), s.rateLimiter("post_message", 30, time.Minute), s.PostMessage)
	messages.Get("/liked", s.SessionRequired(), s.GetLikedMessages)
	messages.Post("/:id/like", s.SessionRequired(), s.LikeMessage)
	messages.Delete("/:id/like", s.SessionRequired(), s.UnlikeMessage)
	messages.Get("/:id", s.SessionOptional(), s.GetMessage)
	messages.Delete("/:id", s.SessionRequired(), s.DeleteMessage)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings the database and the session store concurrently.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	redisStatus := "healthy"
	sessionStatus := "healthy"

	var g errgroup.Group
	g.Go(func() error {
		sqlDB, err := s.db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			dbStatus = "unhealthy"
		}
		return err
	})
	g.Go(func() error {
		if s.redis == nil {
			redisStatus = "unavailable"
			return nil
		}
		err := s.redis.Ping(ctx).Err()
		if err != nil {
			redisStatus = "unhealthy"
		}
		return err
	})
	g.Go(func() error {
		err := s.sessionStore.Ping(ctx)
		if err != nil {
			sessionStatus = "unhealthy"
		}
		return err
	})
	if err := g.Wait(); err != nil {
		middleware.Logger.WarnContext(ctx, "readiness check failed", slog.String("error", err.Error()))
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	// Missing Redis only degrades readiness in production.
	if dbStatus != "healthy" || sessionStatus != "healthy" || redisStatus == "unhealthy" || (redisStatus == "unavailable" && s.config.IsProduction()) {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"sessions": sessionStatus,
		},
		"time": time.Now(),
	})
}

// Shutdown releases the database pool. Redis is owned by the cache package.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "closing database pool")
	return sqlDB.Close()
}
