package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL,
		phone         TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL,
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id           TEXT PRIMARY KEY,
		owner_id     TEXT REFERENCES users(id) ON DELETE SET NULL,
		title        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		price        BIGINT NOT NULL CHECK (price > 0),
		currency     TEXT NOT NULL,
		location     TEXT NOT NULL,
		region       TEXT NOT NULL,
		address      TEXT NOT NULL DEFAULT '',
		bedrooms     INT NOT NULL DEFAULT 1,
		bathrooms    INT NOT NULL DEFAULT 1,
		area         INT NOT NULL DEFAULT 0,
		lat          DOUBLE PRECISION,
		lng          DOUBLE PRECISION,
		available    BOOLEAN NOT NULL DEFAULT TRUE,
		image_url    TEXT NOT NULL DEFAULT '',
		rating       DOUBLE PRECISION NOT NULL DEFAULT 0,
		review_count INT NOT NULL DEFAULT 0,
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id            TEXT PRIMARY KEY,
		listing_id    TEXT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		start_date    DATE NOT NULL,
		end_date      DATE NOT NULL,
		status        TEXT NOT NULL CHECK (status IN ('pending', 'confirmed', 'cancelled')),
		total_price   BIGINT NOT NULL,
		currency      TEXT NOT NULL,
		contact_name  TEXT NOT NULL,
		contact_email TEXT NOT NULL,
		contact_phone TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL,
		CHECK (end_date > start_date),
		CONSTRAINT bookings_no_overlap EXCLUDE USING gist (
			listing_id WITH =,
			daterange(start_date, end_date, '[]') WITH &&
		) WHERE (status <> 'cancelled')
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_user_created_idx ON bookings (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id         TEXT PRIMARY KEY,
		listing_id TEXT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		rating     INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment    TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT reviews_user_listing_key UNIQUE (user_id, listing_id)
	)`,
	`CREATE INDEX IF NOT EXISTS reviews_listing_idx ON reviews (listing_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS favorites (
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		listing_id TEXT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, listing_id)
	)`,
}

// Migrate creates missing tables. Statements are idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migrate step %d: %w", i, err)
		}
	}
	return nil
}
