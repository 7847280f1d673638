package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const optionsSchema = `
CREATE TABLE IF NOT EXISTS options (
	name       TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// The order tables stand in for the shop's own schema in development setups.
var ordersSchema = []string{
	`CREATE TABLE IF NOT EXISTS orders (
		id             BIGSERIAL PRIMARY KEY,
		order_key      TEXT NOT NULL UNIQUE,
		order_number   TEXT NOT NULL DEFAULT '',
		currency       TEXT NOT NULL,
		status         TEXT NOT NULL DEFAULT 'pending',
		total          NUMERIC(20, 8) NOT NULL DEFAULT 0,
		shipping_total NUMERIC(20, 8) NOT NULL DEFAULT 0,
		shipping_tax   NUMERIC(20, 8) NOT NULL DEFAULT 0,
		total_tax      NUMERIC(20, 8) NOT NULL DEFAULT 0,
		billing        JSONB NOT NULL DEFAULT '{}',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS order_meta (
		order_id   BIGINT NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
		meta_key   TEXT NOT NULL,
		meta_value TEXT NOT NULL,
		PRIMARY KEY (order_id, meta_key)
	)`,
	`CREATE TABLE IF NOT EXISTS order_notes (
		id         BIGSERIAL PRIMARY KEY,
		order_id   BIGINT NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS order_notes_order_id_idx ON order_notes (order_id)`,
}

// Migrate creates the options table, and the order tables when withOrders is set.
func Migrate(ctx context.Context, db *pgxpool.Pool, withOrders bool) error {
	if _, err := db.Exec(ctx, optionsSchema); err != nil {
		return fmt.Errorf("failed to create options table: %w", err)
	}
	if !withOrders {
		return nil
	}
	for _, stmt := range ordersSchema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create order tables: %w", err)
		}
	}
	return nil
}

// HasOrderTables reports whether the shop's order tables exist.
func HasOrderTables(ctx context.Context, db DBTX) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `SELECT to_regclass('orders') IS NOT NULL AND to_regclass('order_notes') IS NOT NULL`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to probe order tables: %w", err)
	}
	return exists, nil
}
