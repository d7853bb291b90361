// Package postgres provides the pgx-backed implementations of the three
// crawl ledger stores.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// Querier is the slice of pgxpool.Pool the stores need; pgxmock satisfies
// it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Connect opens a pgx pool using the provided config and verifies it with a
// ping.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS media_items (
	file_url        TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	year            INTEGER,
	year_raw        TEXT NOT NULL DEFAULT '',
	directory_url   TEXT,
	poster_url      TEXT,
	popularity      DOUBLE PRECISION,
	vote_count      INTEGER,
	vote_average    DOUBLE PRECISION,
	tmdb_id         INTEGER,
	fetched         BOOLEAN NOT NULL DEFAULT FALSE,
	metadata_status TEXT NOT NULL DEFAULT 'missing',
	last_crawled    TIMESTAMPTZ,
	remote_modified TIMESTAMPTZ,
	next_crawl      TIMESTAMPTZ,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS media_items_status_idx ON media_items (metadata_status);
CREATE INDEX IF NOT EXISTS media_items_title_idx ON media_items (title);

CREATE TABLE IF NOT EXISTS directory_visits (
	url             TEXT PRIMARY KEY,
	remote_modified TIMESTAMPTZ,
	last_crawled    TIMESTAMPTZ NOT NULL,
	media_count     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS failed_parses (
	url           TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	reason        TEXT NOT NULL DEFAULT 'unknown',
	raw_text      TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	retry_count   INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS failed_parses_retry_idx ON failed_parses (retry_count);
`

// EnsureSchema creates the ledger tables when they do not exist, so a fresh
// database is usable without a separate migration step.
func EnsureSchema(ctx context.Context, db Querier) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
