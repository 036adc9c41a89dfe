// Package store is the relational cache: one table per resource type, rows
// scoped by location id (the locations table itself is scoped by search
// query). Rows are written once on cache miss and never updated or deleted.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Store wraps the pooled Postgres handle. The pool is owned by the process
// and injected into every resolver call; there is no package-level handle.
type Store struct {
	db       *sql.DB
	hotCache LocationCache
	logger   *zap.Logger
}

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to Postgres at dsn, applies pool settings and verifies the
// connection with a ping.
func Open(ctx context.Context, dsn string, opts Options, logger *zap.Logger) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("store: database DSN is empty")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// SetLocationCache installs an optional hot-row cache consulted before the
// locations table. Safe to leave unset.
func (s *Store) SetLocationCache(c LocationCache) {
	s.hotCache = c
}

// Ping reports database reachability for the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
