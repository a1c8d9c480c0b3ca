package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xtrntr/auction/internal/models"
)

// Schema creates the settlement journal table. The table is append-only and
// is never read back into auction state.
const Schema = `
CREATE TABLE IF NOT EXISTS settlements (
	id         TEXT PRIMARY KEY,
	username   TEXT NOT NULL,
	price      BIGINT NOT NULL,
	fee        BIGINT NOT NULL,
	balance    BIGINT NOT NULL,
	settled_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS settlements_username_idx ON settlements (username);
`

// DB wraps a PostgreSQL connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB initializes a new database connection pool and checks it is reachable
func NewDB(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the database connection pool
func (db *DB) Close(ctx context.Context) error {
	db.Pool.Close()
	return nil
}

// EnsureSchema creates the journal table if needed
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Record inserts a settlement
func (db *DB) Record(ctx context.Context, s models.Settlement) error {
	_, err := db.Pool.Exec(ctx,
		"INSERT INTO settlements (id, username, price, fee, balance, settled_at) VALUES ($1, $2, $3, $4, $5, $6)",
		s.ID, s.User, s.Price, s.Fee, s.Balance, s.SettledAt)
	if err != nil {
		return fmt.Errorf("failed to record settlement: %w", err)
	}
	return nil
}
