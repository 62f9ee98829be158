package database

import (
	"context"
	"log/slog"
	"time"

	"pantry/internal/middleware"

	"github.com/sethvargo/go-retry"
)

// Pinger is the connectivity probe used by WaitForDB. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// WaitForDB pings p every interval until it answers, ctx is done, or maxWait
// elapses. A maxWait of zero waits without bound. It returns the number of
// attempts made.
func WaitForDB(ctx context.Context, p Pinger, interval, maxWait time.Duration) (int, error) {
	if interval <= 0 {
		interval = time.Second
	}

	backoff := retry.NewConstant(interval)
	if maxWait > 0 {
		backoff = retry.WithMaxDuration(maxWait, backoff)
	}

	attempts := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		if err := p.PingContext(ctx); err != nil {
			middleware.Logger.WarnContext(ctx, "Database unavailable, waiting",
				slog.Int("attempt", attempts),
				slog.Duration("interval", interval),
				slog.String("error", err.Error()),
			)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return attempts, err
	}

	middleware.Logger.InfoContext(ctx, "Database available", slog.Int("attempts", attempts))
	return attempts, nil
}
