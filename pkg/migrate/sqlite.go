package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// sqliteSchema mirrors the goose migrations for the embedded sqlite mode.
// Array and json columns are stored as text.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		collection TEXT NOT NULL,
		base_sku TEXT NOT NULL,
		sizes TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS product_variants (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		slug TEXT NOT NULL UNIQUE,
		color TEXT NOT NULL,
		color_display TEXT,
		price_cents INTEGER NOT NULL,
		discount_percent INTEGER NOT NULL DEFAULT 0,
		current_price_cents INTEGER NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_items (
		sku TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		variant_id TEXT NOT NULL,
		size TEXT NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS variant_media (
		id TEXT PRIMARY KEY,
		variant_id TEXT NOT NULL,
		object_id TEXT NOT NULL,
		name TEXT NOT NULL,
		src TEXT NOT NULL,
		alt TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		created_by TEXT NOT NULL,
		email TEXT NOT NULL,
		items TEXT NOT NULL,
		shipping_address TEXT NOT NULL,
		shipping_option TEXT NOT NULL,
		payment_info TEXT,
		subtotal_cents INTEGER NOT NULL,
		shipping_cents INTEGER NOT NULL,
		total_cents INTEGER NOT NULL,
		created_at DATETIME
	)`,
}

// ApplySQLite creates the storefront schema on a sqlite connection.
func ApplySQLite(ctx context.Context, conn *gorm.DB) error {
	for _, stmt := range sqliteSchema {
		if err := conn.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}
