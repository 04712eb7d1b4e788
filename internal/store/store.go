// Package store is the persistence adapter over Postgres for the resort's
// collections: products, orders, chalets, employees, activities and
// announcements. Order item payloads are stored as JSONB documents in the
// shape the mobile clients write, normalized on read by the model codec.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides access to every collection. Handlers depend on narrow
// per-handler interfaces satisfied by *Store.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store on the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price NUMERIC(10,2) NOT NULL CHECK (price >= 0),
	services TEXT[] NOT NULL,
	extras JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS orders (
	id UUID PRIMARY KEY,
	chalet TEXT NOT NULL,
	service TEXT NOT NULL,
	items JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS orders_chalet_idx ON orders (chalet, created_at DESC);
CREATE INDEX IF NOT EXISTS orders_service_idx ON orders (service, created_at DESC);

CREATE TABLE IF NOT EXISTS chalets (
	number TEXT PRIMARY KEY,
	booked BOOLEAN NOT NULL DEFAULT false,
	client_id TEXT
);

CREATE TABLE IF NOT EXISTS employees (
	id UUID PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	phone TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL,
	active BOOLEAN NOT NULL DEFAULT true,
	permissions JSONB NOT NULL,
	hashed_password TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS activities (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	starts_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS announcements (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema applies the embedded schema. Every statement is idempotent so
// startup can run it unconditionally.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
