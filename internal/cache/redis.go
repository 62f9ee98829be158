// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pantry/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// client is shared by the cache helpers. Nil means caching is off.
var client *redis.Client

// errorCounter feeds failed commands into the Redis error metric. A miss is not a failure.
type errorCounter struct{}

func (errorCounter) DialHook(next redis.DialHook) redis.DialHook { return next }

func (errorCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		countError(cmd.Name(), err)
		return err
	}
}

func (errorCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		countError("pipeline", err)
		return err
	}
}

func countError(command string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		middleware.RedisErrors.WithLabelValues(command).Inc()
	}
}

// parseOptions accepts either a redis:// URL or a bare host:port.
func parseOptions(addr string) (*redis.Options, error) {
	if !strings.Contains(addr, "://") {
		return &redis.Options{Addr: addr}, nil
	}
	return redis.ParseURL(addr)
}

// Connect dials Redis at addr, verifies it with a ping and installs it as
// the package client. On failure caching stays off and the error is returned.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	opts, err := parseOptions(addr)
	if err != nil {
		return nil, fmt.Errorf("parse redis address: %w", err)
	}

	c := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	SetClient(c)
	return c, nil
}

// ConnectOptional is Connect for callers that run without Redis: a failure is
// logged and a nil client returned.
func ConnectOptional(ctx context.Context, addr string) *redis.Client {
	c, err := Connect(ctx, addr)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "redis unavailable, continuing without cache", slog.String("error", err.Error()))
		SetClient(nil)
		return nil
	}
	middleware.Logger.InfoContext(ctx, "redis connected", slog.String("addr", c.Options().Addr))
	return c
}

// SetClient replaces the package client and instruments it.
func SetClient(c *redis.Client) {
	if c != nil {
		c.AddHook(errorCounter{})
	}
	client = c
}

// GetClient returns the current Redis client, or nil when caching is off.
func GetClient() *redis.Client {
	return client
}
