package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/shotcoach/internal/domain"
	"github.com/ashureev/shotcoach/internal/shared"
	_ "modernc.org/sqlite"
)

const (
	writeRetries   = 3
	writeBaseDelay = 100 * time.Millisecond
)

// withWriteRetry runs fn with exponential backoff on SQLite concurrency
// errors, which WAL mode can still surface when the sweeper and the
// request path write at once.
func withWriteRetry(ctx context.Context, fn func() error) error {
	var err error
	for i := 0; i < writeRetries; i++ {
		if err = fn(); err == nil || !shared.IsSQLiteConflictError(err) {
			return err
		}
		if i < writeRetries-1 {
			select {
			case <-time.After(writeBaseDelay * time.Duration(1<<i)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}

// SQLiteStore implements Store using SQLite. Session history and
// constraints are stored as JSON columns; the composite (shoot_id,
// room_type) key is the primary key.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-backed session store at the given path.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode for better concurrency between the sweeper and request path.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS shoot_sessions (
		shoot_id TEXT NOT NULL,
		room_type TEXT NOT NULL,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		history_json TEXT NOT NULL DEFAULT '[]',
		constraints_json TEXT NOT NULL DEFAULT '[]',
		orientation_json TEXT,
		accepted INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (shoot_id, room_type)
	);
	CREATE INDEX IF NOT EXISTS idx_shoot_sessions_updated ON shoot_sessions(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Get retrieves a session by key, or (nil, nil) when absent.
func (s *SQLiteStore) Get(ctx context.Context, key string) (*domain.ShootSession, error) {
	shootID, roomType, err := splitKey(key)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT shoot_id, room_type, attempt_count, history_json,
		       constraints_json, orientation_json, accepted, created_at, updated_at
		FROM shoot_sessions WHERE shoot_id = ? AND room_type = ?`

	row := s.db.QueryRowContext(ctx, query, shootID, roomType)

	var sess domain.ShootSession
	var historyJSON, constraintsJSON string
	var orientationJSON sql.NullString
	var accepted int
	var createdAt, updatedAt int64

	err = row.Scan(
		&sess.ShootID, &sess.RoomType, &sess.AttemptCount, &historyJSON,
		&constraintsJSON, &orientationJSON, &accepted, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	if err := json.Unmarshal([]byte(historyJSON), &sess.History); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if err := json.Unmarshal([]byte(constraintsJSON), &sess.Constraints); err != nil {
		return nil, fmt.Errorf("decode constraints: %w", err)
	}
	if orientationJSON.Valid {
		var o domain.Orientation
		if err := json.Unmarshal([]byte(orientationJSON.String), &o); err != nil {
			return nil, fmt.Errorf("decode orientation: %w", err)
		}
		sess.LastOrientation = &o
	}
	sess.Accepted = accepted != 0
	sess.CreatedAt = time.Unix(createdAt, 0)
	sess.UpdatedAt = time.Unix(updatedAt, 0)

	return &sess, nil
}

// Put creates or replaces a session record.
func (s *SQLiteStore) Put(ctx context.Context, session *domain.ShootSession) error {
	historyJSON, err := json.Marshal(session.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	constraintsJSON, err := json.Marshal(session.Constraints)
	if err != nil {
		return fmt.Errorf("encode constraints: %w", err)
	}
	var orientationJSON interface{}
	if session.LastOrientation != nil {
		raw, err := json.Marshal(session.LastOrientation)
		if err != nil {
			return fmt.Errorf("encode orientation: %w", err)
		}
		orientationJSON = string(raw)
	}

	accepted := 0
	if session.Accepted {
		accepted = 1
	}

	query := `
	INSERT INTO shoot_sessions (shoot_id, room_type, attempt_count, history_json,
		constraints_json, orientation_json, accepted, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(shoot_id, room_type) DO UPDATE SET
		attempt_count = excluded.attempt_count,
		history_json = excluded.history_json,
		constraints_json = excluded.constraints_json,
		orientation_json = excluded.orientation_json,
		accepted = excluded.accepted,
		updated_at = excluded.updated_at`

	err = withWriteRetry(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx, query,
			session.ShootID, session.RoomType, session.AttemptCount, string(historyJSON),
			string(constraintsJSON), orientationJSON, accepted,
			session.CreatedAt.Unix(), session.UpdatedAt.Unix(),
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// DeleteShoot removes all room sessions for a shoot.
func (s *SQLiteStore) DeleteShoot(ctx context.Context, shootID string) (int64, error) {
	var result sql.Result
	err := withWriteRetry(ctx, func() error {
		var execErr error
		result, execErr = s.db.ExecContext(ctx, `DELETE FROM shoot_sessions WHERE shoot_id = ?`, shootID)
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("delete shoot sessions: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return removed, nil
}

// DeleteIdle removes sessions not updated within ttl.
func (s *SQLiteStore) DeleteIdle(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl).Unix()
	result, err := s.db.ExecContext(ctx, `DELETE FROM shoot_sessions WHERE updated_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("delete idle sessions: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return removed, nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
