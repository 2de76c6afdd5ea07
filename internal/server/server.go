// Package server contains the HTTP handlers and routing for the API.
package server

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"tavern/internal/config"
	"tavern/internal/featureflags"
	"tavern/internal/middleware"
	"tavern/internal/models"
	"tavern/internal/repository"
	"tavern/internal/scribe"
	"tavern/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo     repository.UserRepository
	campaignRepo repository.CampaignRepository
	commentRepo  repository.CommentRepository
	followRepo   repository.FollowRepository

	campaignService service.CampaignService
	commentService  service.CommentService
	followService   service.FollowService
	profileService  service.ProfileService

	scribe *scribe.Client
	flags  *featureflags.Manager
}

// NewServerWithDeps creates a Server from already-initialized dependencies.
// Production wires these through bootstrap.InitRuntime; tests pass an
// in-memory database and a miniredis client.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	prom := middleware.InitMetrics("tavern-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		campaignRepo:   campaignRepo,
		commentRepo:    commentRepo,
		followRepo:     followRepo,
		scribe:         scribe.NewClient(cfg.ScribeURL, cfg.ScribeProbeTTL),
		flags:          featureflags.NewManager(cfg.FeatureFlags),
	}
	server.campaignService = service.NewCampaignService(campaignRepo)
	server.commentService = service.NewCommentService(commentRepo, campaignRepo)
	server.followService = service.NewFollowService(followRepo, userRepo)
	server.profileService = service.NewProfileService(userRepo, campaignRepo, followRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
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
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/add-follower", s.AuthRequired(), s.AddFollower)
	auth.Post("/remove-follower", s.AuthRequired(), s.RemoveFollower)

	// Campaign routes. Specific paths before the generic /:cid routes.
	campaigns := api.Group("/campaigns")
	campaigns.Post("/create", s.AuthRequired(), middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_campaign"), s.CreateCampaign)
	campaigns.Get("/", s.GetCampaigns)
	campaigns.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "search"), s.SearchCampaigns)
	campaigns.Post("/:cid/upvote", s.AuthRequired(), s.ToggleUpvote)
	campaigns.Get("/:cid", s.GetCampaign)
	campaigns.Put("/:cid", s.AuthRequired(), s.UpdateCampaign)
	campaigns.Delete("/:cid", s.AuthRequired(), s.DeleteCampaign)

	// Comment routes
	comments := api.Group("/comments")
	comments.Post("/create", s.AuthRequired(), middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateComment)
	comments.Get("/campaign/:cid", s.GetCampaignComments)
	comments.Put("/update", s.AuthRequired(), s.UpdateComment)
	comments.Delete("/delete", s.AuthRequired(), s.DeleteComment)

	// Profile routes
	profiles := api.Group("/profiles")
	profiles.Get("/:username", s.GetProfile)
	profiles.Post("/:username/update", s.AuthRequired(), s.UpdateProfile)
	profiles.Get("/:username/followers", s.AuthRequired(), s.GetFollowers)

	// Scribe routes
	scribeRoutes := api.Group("/scribe")
	scribeRoutes.Get("/status", s.ScribeStatus)
	scribeRoutes.Post("/generate", s.AuthRequired(), middleware.RateLimit(
		s.redis, 3, 5*time.Minute, "scribe_generate"), s.ScribeGenerate)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The API keeps serving without Redis, so a missing client only
		// degrades readiness, it does not fail it.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. It stores the user ID
// and admin flag from the token in the request locals.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		userID, admin, ok := s.parseToken(tokenString)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		c.Locals("userID", userID)
		c.Locals("isAdmin", admin)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// parseToken validates a JWT and extracts the user ID and admin flag.
func (s *Server) parseToken(tokenString string) (uint, bool, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false, false
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "tavern-api" {
		return 0, false, false
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "tavern-client" {
		return 0, false, false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false, false
	}

	admin, _ := claims["admin"].(bool)
	return uint(userID), admin, true
}

// optionalUserID attempts to extract userID from the Authorization header but
// does not enforce it. Read endpoints use this for anonymous access.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}

	userID, _, ok := s.parseToken(parts[1])
	if !ok {
		return 0, false
	}
	return userID, true
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Adventurer's Tavern API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
