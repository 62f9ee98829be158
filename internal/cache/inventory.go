package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pantry/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	TokenKeyPrefix = "auth:token:%s"
	UserKeyPrefix  = "user:%d"
)

const (
	TokenTTL = 5 * time.Minute
	UserTTL  = 5 * time.Minute
)

// TokenKey is keyed by token digest, never by the plaintext token.
func TokenKey(digest string) string {
	return fmt.Sprintf(TokenKeyPrefix, digest)
}

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// Aside returns the cached value under key, or loads, stores and returns it.
// Cache failures fall through to load.
func Aside[T any](ctx context.Context, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if client != nil {
		raw, err := client.Get(ctx, key).Bytes()
		if err == nil {
			var cached T
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if client != nil {
		if raw, jsonErr := json.Marshal(value); jsonErr == nil {
			if setErr := client.Set(ctx, key, raw, ttl).Err(); setErr != nil {
				middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", setErr.Error()))
			}
		}
	}
	return value, nil
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateToken(ctx context.Context, digest string) {
	Invalidate(ctx, TokenKey(digest))
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
