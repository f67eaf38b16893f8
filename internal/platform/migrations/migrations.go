// Package migrations applies the database schema. Statements are idempotent
// so Apply can run on every startup.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS gold_products (
		id TEXT PRIMARY KEY,
		sku TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		metal TEXT NOT NULL,
		purity_karat INTEGER NOT NULL DEFAULT 0,
		weight_grams DOUBLE PRECISION NOT NULL DEFAULT 0,
		unit_price DOUBLE PRECISION NOT NULL,
		currency TEXT NOT NULL,
		barcode TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS gold_warehouses (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS gold_inventory_levels (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL REFERENCES gold_products(id) ON DELETE CASCADE,
		warehouse_id TEXT NOT NULL REFERENCES gold_warehouses(id) ON DELETE CASCADE,
		quantity INTEGER NOT NULL DEFAULT 0,
		reorder_point INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (product_id, warehouse_id)
	)`,
	`CREATE TABLE IF NOT EXISTS gold_stock_transactions (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		warehouse_id TEXT NOT NULL,
		type TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		quantity_before INTEGER NOT NULL,
		quantity_after INTEGER NOT NULL,
		reference TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_gold_stock_transactions_product
		ON gold_stock_transactions (product_id, warehouse_id)`,
	`CREATE TABLE IF NOT EXISTS gold_customers (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		birthday TIMESTAMPTZ,
		note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS gold_orders (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL REFERENCES gold_customers(id),
		warehouse_id TEXT NOT NULL REFERENCES gold_warehouses(id),
		status TEXT NOT NULL,
		subtotal DOUBLE PRECISION NOT NULL,
		discount DOUBLE PRECISION NOT NULL DEFAULT 0,
		total DOUBLE PRECISION NOT NULL,
		currency TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		placed_at TIMESTAMPTZ,
		paid_at TIMESTAMPTZ,
		fulfilled_at TIMESTAMPTZ,
		cancelled_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS gold_order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES gold_orders(id) ON DELETE CASCADE,
		product_id TEXT NOT NULL,
		sku TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		unit_price DOUBLE PRECISION NOT NULL,
		line_total DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS gold_transfers (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		source_id TEXT NOT NULL REFERENCES gold_warehouses(id),
		destination_id TEXT NOT NULL REFERENCES gold_warehouses(id),
		status TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		dispatched_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		cancelled_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS gold_transfer_items (
		id TEXT PRIMARY KEY,
		transfer_id TEXT NOT NULL REFERENCES gold_transfers(id) ON DELETE CASCADE,
		product_id TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		received_quantity INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS gold_shipments (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL DEFAULT '',
		transfer_id TEXT NOT NULL DEFAULT '',
		carrier TEXT NOT NULL,
		tracking_number TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		shipped_at TIMESTAMPTZ,
		delivered_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS gold_shipment_events (
		id TEXT PRIMARY KEY,
		shipment_id TEXT NOT NULL REFERENCES gold_shipments(id) ON DELETE CASCADE,
		status TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		occurred_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS gold_loyalty_programs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		earn_rate DOUBLE PRECISION NOT NULL,
		redeem_rate DOUBLE PRECISION NOT NULL,
		expiry_months INTEGER NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS gold_loyalty_entries (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL REFERENCES gold_customers(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		points INTEGER NOT NULL,
		reference TEXT NOT NULL DEFAULT '',
		expires_at TIMESTAMPTZ,
		expired BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_gold_loyalty_entries_customer
		ON gold_loyalty_entries (customer_id)`,
	`CREATE TABLE IF NOT EXISTS gold_audit_entries (
		id BIGSERIAL PRIMARY KEY,
		time TIMESTAMPTZ NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT '',
		path TEXT NOT NULL,
		method TEXT NOT NULL,
		status INTEGER NOT NULL,
		remote_addr TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT ''
	)`,
}

// Apply runs every schema statement in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
