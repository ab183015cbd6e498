package store

import (
	"context"
	"log/slog"
	"time"
)

const sweepInterval = 5 * time.Minute

// StartTTLSweeper runs a background goroutine that periodically removes
// sessions idle beyond ttl. A ttl of 0 disables sweeping, preserving the
// default keep-forever lifecycle.
func StartTTLSweeper(ctx context.Context, s Store, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	ticker := time.NewTicker(sweepInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session TTL sweeper started", "interval", sweepInterval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				removed, err := s.DeleteIdle(ctx, ttl)
				if err != nil {
					slog.Error("TTL sweeper failed to delete idle sessions", "error", err)
					continue
				}
				if removed > 0 {
					slog.Info("TTL sweeper removed idle sessions", "count", removed)
				}
			case <-ctx.Done():
				slog.Info("Session TTL sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
