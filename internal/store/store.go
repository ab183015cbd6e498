// Package store provides session persistence interfaces and drivers.
package store

import (
	"context"
	"time"

	"github.com/ashureev/shotcoach/internal/domain"
)

// Store is the keyed session store the orchestrator is built against.
// Swapping the backing technology (memory, SQLite, Redis) must not touch
// orchestration logic.
//
// Keys are the escaped composite of shoot ID and room type
// (domain.SessionKey); drivers apply no further normalization. Per-key
// serialization of read-modify-write cycles is the orchestrator's job, not
// the driver's: drivers only need to make individual Get/Put calls safe.
type Store interface {
	// Get retrieves a session by key. Returns (nil, nil) when absent.
	Get(ctx context.Context, key string) (*domain.ShootSession, error)

	// Put creates or replaces a session record.
	Put(ctx context.Context, session *domain.ShootSession) error

	// DeleteShoot removes every room session belonging to a shoot and
	// returns how many were removed.
	DeleteShoot(ctx context.Context, shootID string) (int64, error)

	// DeleteIdle removes sessions not updated within ttl and returns how
	// many were removed. Used by the optional TTL sweeper.
	DeleteIdle(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases driver resources.
	Close() error
}
