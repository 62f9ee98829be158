package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// slogGorm routes GORM's logger through slog. Record-not-found is never an error
// here: the repositories translate it into domain not-found results.
type slogGorm struct {
	log   *slog.Logger
	level logger.LogLevel
	slow  time.Duration
}

// NewGormLogger returns a GORM logger that reports errors and slow queries to l.
func NewGormLogger(l *slog.Logger) logger.Interface {
	return &slogGorm{log: l, level: logger.Warn, slow: slowQueryThreshold}
}

func (g *slogGorm) LogMode(level logger.LogLevel) logger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *slogGorm) Info(ctx context.Context, msg string, args ...any) {
	g.printf(ctx, logger.Info, slog.LevelInfo, msg, args)
}

func (g *slogGorm) Warn(ctx context.Context, msg string, args ...any) {
	g.printf(ctx, logger.Warn, slog.LevelWarn, msg, args)
}

func (g *slogGorm) Error(ctx context.Context, msg string, args ...any) {
	g.printf(ctx, logger.Error, slog.LevelError, msg, args)
}

func (g *slogGorm) printf(ctx context.Context, min logger.LogLevel, lvl slog.Level, msg string, args []any) {
	if g.level >= min {
		g.log.Log(ctx, lvl, fmt.Sprintf(msg, args...))
	}
}

// Trace reports one executed statement.
func (g *slogGorm) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var (
		lvl slog.Level
		msg string
	)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= logger.Error:
		lvl, msg = slog.LevelError, "query failed"
	case g.slow > 0 && elapsed > g.slow && g.level >= logger.Warn:
		lvl, msg = slog.LevelWarn, "slow query"
	case g.level >= logger.Info:
		lvl, msg = slog.LevelInfo, "query"
	default:
		return
	}

	stmt, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", stmt),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}
	if lvl == slog.LevelError {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	g.log.LogAttrs(ctx, lvl, msg, attrs...)
}
