// Package server contains the HTTP handlers and routing for the recipe API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "pantry/docs" // swagger docs
	"pantry/internal/bootstrap"
	"pantry/internal/config"
	"pantry/internal/middleware"
	"pantry/internal/models"
	"pantry/internal/repository"
	"pantry/internal/service"
	"pantry/internal/storage"

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

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	store          storage.Storage
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	userService       *service.UserService
	tokenService      *service.TokenService
	tagService        *service.TagService
	ingredientService *service.IngredientService
	recipeService     *service.RecipeService
	imageService      *service.ImageService
	mediaSigner       *service.MediaSigner
}

// NewServer creates a new server instance with all dependencies. It blocks
// until the database answers and applies the schema first.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ApplySchema: true})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, rt.DB, rt.Redis, rt.Store)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer has established DB, Redis and storage.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.Storage) (*Server, error) {
	if db == nil {
		return nil, errors.New("server requires a database")
	}
	if store == nil {
		return nil, errors.New("server requires a storage backend")
	}

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		store:          store,
		promMiddleware: middleware.InitMetrics("pantry-api"),
	}
	s.userService = service.NewUserService(userRepo, tokenRepo, store)
	s.tokenService = service.NewTokenService(s.userService, userRepo, tokenRepo)
	s.tagService = service.NewTagService(repository.NewTagRepository(db))
	s.ingredientService = service.NewIngredientService(repository.NewIngredientRepository(db))
	s.recipeService = service.NewRecipeService(recipeRepo, store)
	s.imageService = service.NewImageService(recipeRepo, store, service.NewImagePathGenerator(nil), cfg)
	s.mediaSigner = service.NewMediaSigner(cfg.MediaURLSecret, cfg.MediaURLTTL())

	return s, nil
}

// NewApp builds a Fiber app with the server's middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Pantry API",
		BodyLimit:    int(s.imageService.MaxUploadSizeBytes()) + 1024*1024,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler renders errors that escaped a handler, including Fiber's own 404/405.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return models.RespondWithError(c, fe.Code, models.NewNotFoundError("Route", c.Path()))
		case fiber.StatusMethodNotAllowed:
			return models.RespondWithError(c, fe.Code, models.NewMethodNotAllowedError(c.Method()))
		case fiber.StatusRequestEntityTooLarge:
			return models.RespondWithError(c, fiber.StatusBadRequest, models.NewInvalidImageError("File too large"))
		}
		if fe.Code < fiber.StatusInternalServerError {
			return models.RespondWithError(c, fe.Code, models.NewValidationError(fe.Message))
		}
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.Tracing())
	app.Use(middleware.RequestContext())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.AccessLog())

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

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.config.IsProduction()
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
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Get("/media/*", s.ServeMedia)

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	user := api.Group("/user")
	unthrottled := !s.config.RateLimitEnabled()
	user.Post("/create", middleware.RateLimit(s.redis, middleware.RateLimitConfig{
		Name: "register", Limit: 10, Window: 10 * time.Minute, Disabled: unthrottled,
	}), s.CreateUser)
	user.Post("/token", middleware.RateLimit(s.redis, middleware.RateLimitConfig{
		Name: "login", Limit: 20, Window: 5 * time.Minute, Disabled: unthrottled,
	}), s.CreateToken)
	user.Post("/logout", s.AuthRequired(), s.Logout)
	me := user.Group("/me", s.AuthRequired())
	me.Get("/", s.GetMe)
	me.Put("/", s.UpdateMe)
	me.Patch("/", s.PatchMe)
	me.Delete("/", s.DeleteMe)
	me.Post("/", s.MethodNotAllowed)

	recipe := api.Group("/recipe", s.AuthRequired())

	tags := recipe.Group("/tags")
	tags.Get("/", s.ListTags)
	tags.Post("/", s.CreateTag)
	tags.Patch("/:id", s.UpdateTag)
	tags.Put("/:id", s.UpdateTag)
	tags.Delete("/:id", s.DeleteTag)

	ingredients := recipe.Group("/ingredients")
	ingredients.Get("/", s.ListIngredients)
	ingredients.Post("/", s.CreateIngredient)
	ingredients.Patch("/:id", s.UpdateIngredient)
	ingredients.Put("/:id", s.UpdateIngredient)
	ingredients.Delete("/:id", s.DeleteIngredient)

	recipes := recipe.Group("/recipes")
	recipes.Get("/", s.ListRecipes)
	recipes.Post("/", s.CreateRecipe)
	// Specific /:id/:resource routes before generic /:id
	recipes.Post("/:id/upload-image", s.UploadRecipeImage)
	recipes.Get("/:id", s.GetRecipe)
	recipes.Put("/:id", s.UpdateRecipe)
	recipes.Patch("/:id", s.PatchRecipe)
	recipes.Delete("/:id", s.DeleteRecipe)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional and never fails readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
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
			redisStatus = "degraded"
		}
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

// Start serves HTTP on the configured port until Shutdown is called.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown stops the HTTP server and releases the database and Redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
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
