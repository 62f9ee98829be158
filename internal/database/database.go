// Package database handles database connections, schema management and startup checks.
package database

import (
	"fmt"
	"strings"
	"time"

	"pantry/internal/config"
	"pantry/internal/middleware"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Pool defaults used when the configuration leaves a value at zero.
const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
)

// DSN builds the key=value PostgreSQL connection string for cfg.
func DSN(cfg *config.Config) string {
	sslMode := cfg.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	parts := []string{
		"host=" + cfg.DBHost,
		"port=" + cfg.DBPort,
		"user=" + cfg.DBUser,
		"password=" + cfg.DBPassword,
		"dbname=" + cfg.DBName,
		"sslmode=" + sslMode,
	}
	return strings.Join(parts, " ")
}

// Connect opens a PostgreSQL handle without contacting the server.
// Callers use WaitForDB to block until the database answers.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger:               NewGormLogger(middleware.Logger),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(positiveOr(cfg.DBMaxOpenConns, defaultMaxOpenConns))
	sqlDB.SetMaxIdleConns(positiveOr(cfg.DBMaxIdleConns, defaultMaxIdleConns))
	sqlDB.SetConnMaxLifetime(positiveOr(time.Duration(cfg.DBConnMaxLifetimeMinutes)*time.Minute, defaultConnMaxLifetime))

	return db, nil
}

func positiveOr[T int | time.Duration](v, fallback T) T {
	if v > 0 {
		return v
	}
	return fallback
}
