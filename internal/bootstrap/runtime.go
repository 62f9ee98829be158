// Package bootstrap brings up the runtime dependencies shared by the server
// and the management commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pantry/internal/cache"
	"pantry/internal/config"
	"pantry/internal/database"
	"pantry/internal/middleware"
	"pantry/internal/models"
	"pantry/internal/repository"
	"pantry/internal/service"
	"pantry/internal/storage"
	"pantry/internal/validation"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs migrations according to DB_SCHEMA_MODE.
	ApplySchema bool
	// SkipStorage leaves Runtime.Store nil for commands that never touch files.
	SkipStorage bool
}

// Runtime holds initialized dependencies.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	Store storage.Storage
}

// InitRuntime connects to the database, waits until it answers, optionally
// applies the schema, then connects Redis and the storage backend.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := WaitForDatabase(ctx, db, cfg); err != nil {
		return nil, err
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, fmt.Errorf("schema apply failed: %w", err)
		}
	}

	// Redis is optional; a nil client disables caching and Redis-backed rate limits.
	rt := &Runtime{DB: db, Redis: cache.ConnectOptional(ctx, cfg.RedisURL)}
	if !opts.SkipStorage {
		rt.Store, err = storage.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
	}

	if opts.ApplySchema {
		if err := ensureDevSuperuser(ctx, cfg, db, rt.Store); err != nil {
			return nil, fmt.Errorf("failed to bootstrap development superuser: %w", err)
		}
	}

	return rt, nil
}

// WaitForDatabase blocks until db answers a ping, bounded by DB_WAIT_TIMEOUT_SECONDS.
func WaitForDatabase(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql.DB: %w", err)
	}
	if _, err := database.WaitForDB(ctx, sqlDB, cfg.DBWaitInterval(), cfg.DBWaitTimeout()); err != nil {
		return fmt.Errorf("database did not become available: %w", err)
	}
	return nil
}

// Close releases the database and Redis connections.
func (rt *Runtime) Close() {
	if rt == nil {
		return
	}
	if rt.DB != nil {
		if sqlDB, err := rt.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if rt.Redis != nil {
		_ = rt.Redis.Close()
	}
}

// ensureDevSuperuser creates the configured superuser in development when enabled.
// An existing account with that email is left untouched.
func ensureDevSuperuser(ctx context.Context, cfg *config.Config, db *gorm.DB, store storage.Storage) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapSuperuser {
		return nil
	}

	email := strings.TrimSpace(cfg.DevSuperuserEmail)
	if email == "" {
		email = "admin@example.com"
	}
	if cfg.DevSuperuserPassword == "" {
		return fmt.Errorf("DEV_SUPERUSER_PASSWORD must be set when DEV_BOOTSTRAP_SUPERUSER is enabled")
	}

	userRepo := repository.NewUserRepository(db)
	users := service.NewUserService(userRepo, repository.NewTokenRepository(db), store)

	_, err := users.CreateSuperuser(ctx, email, cfg.DevSuperuserPassword)
	switch {
	case err == nil:
		middleware.Logger.InfoContext(ctx, "development superuser created", slog.String("email", email))
	case models.IsCode(err, models.CodeValidation):
		existing, lookupErr := userRepo.GetByEmail(ctx, validation.NormalizeEmail(email))
		if lookupErr != nil || existing == nil {
			return err
		}
		middleware.Logger.InfoContext(ctx, "development superuser already exists", slog.String("email", email))
	default:
		return err
	}
	return nil
}
