package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order on startup. Statements are idempotent so
// repeated application is safe.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email)`,
	`CREATE TABLE IF NOT EXISTS trades (
		id         BIGSERIAL PRIMARY KEY,
		type       TEXT NOT NULL CHECK (type IN ('buy', 'sell')),
		user_id    UUID NOT NULL REFERENCES users (id),
		symbol     TEXT NOT NULL,
		shares     INTEGER NOT NULL CHECK (shares BETWEEN 1 AND 100),
		price      DOUBLE PRECISION NOT NULL CHECK (price > 0),
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS trades_user_id_idx ON trades (user_id)`,
}

// Apply executes all schema migrations against db.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
