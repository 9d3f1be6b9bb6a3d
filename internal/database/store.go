package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations. Methods accept
// context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// RecordRequest bumps the request counter for a user and records the
	// request start time.
	RecordRequest(ctx context.Context, userID string, at time.Time) error

	// GetUsage retrieves the usage row for a user. Returns nil, nil when the
	// user has never had a request admitted.
	GetUsage(ctx context.Context, userID string) (*UsageStat, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) RecordRequest(ctx context.Context, userID string, at time.Time) error {
	if userID == "" {
		return fmt.Errorf("cannot record request for empty user id")
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO usage_stats (user_id, request_count, last_request_at, created_at, updated_at)
		VALUES (?, 1, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			request_count = request_count + 1,
			last_request_at = excluded.last_request_at,
			updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, userID, at.UTC(), now, now); err != nil {
		return fmt.Errorf("failed to record request for user %s: %w", userID, err)
	}
	return nil
}

func (s *sqlxStore) GetUsage(ctx context.Context, userID string) (*UsageStat, error) {
	var stat UsageStat
	err := s.db.GetContext(ctx, &stat,
		`SELECT user_id, request_count, last_request_at, created_at, updated_at
		 FROM usage_stats WHERE user_id = ?`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get usage for user %s: %w", userID, err)
	}
	return &stat, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	startTime := time.Now()

	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "ANALYZE"); err != nil {
		return fmt.Errorf("failed to analyze database: %w", err)
	}

	s.logger.InfoContext(ctx, "database maintenance completed",
		"duration_ms", time.Since(startTime).Milliseconds())
	return nil
}
