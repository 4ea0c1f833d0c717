package storage

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS customers (
	id                     INTEGER PRIMARY KEY AUTOINCREMENT,
	telegram_id            INTEGER NOT NULL UNIQUE,
	name                   TEXT    NOT NULL DEFAULT '',
	phone                  TEXT    NOT NULL DEFAULT '',
	address                TEXT    NOT NULL DEFAULT '',
	city                   TEXT    NOT NULL DEFAULT '',
	language               TEXT    NOT NULL DEFAULT 'ua',
	customer_type          TEXT    NOT NULL DEFAULT 'flower_shop',
	total_orders           INTEGER NOT NULL DEFAULT 0,
	total_spent            REAL    NOT NULL DEFAULT 0,
	loyalty_points         INTEGER NOT NULL DEFAULT 0,
	next_order_discount    REAL    NOT NULL DEFAULT 0,
	referral_code          TEXT    NOT NULL DEFAULT '',
	referral_balance       REAL    NOT NULL DEFAULT 0,
	referral_count         INTEGER NOT NULL DEFAULT 0,
	referred_by            INTEGER,
	referral_bonus_awarded INTEGER NOT NULL DEFAULT 0,
	is_blocked             INTEGER NOT NULL DEFAULT 0,
	created_at             TIMESTAMP NOT NULL,
	updated_at             TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_referral_code ON customers(referral_code);

CREATE TABLE IF NOT EXISTS countries (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS plantations (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	country_id INTEGER NOT NULL REFERENCES countries(id)
);

CREATE TABLE IF NOT EXISTS flower_types (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	name           TEXT NOT NULL,
	catalog_type   TEXT NOT NULL DEFAULT 'preorder',
	category       TEXT NOT NULL DEFAULT 'flower',
	price_usd      REAL NOT NULL DEFAULT 0,
	price_uah      REAL NOT NULL DEFAULT 0,
	height_prices  TEXT NOT NULL DEFAULT '',
	is_promo       INTEGER NOT NULL DEFAULT 0,
	promo_percent  REAL NOT NULL DEFAULT 0,
	promo_end_date TIMESTAMP,
	flower_class   TEXT NOT NULL DEFAULT '',
	height         TEXT NOT NULL DEFAULT '',
	color          TEXT NOT NULL DEFAULT '',
	type_id        INTEGER,
	country_id     INTEGER,
	plantation_id  INTEGER,
	image_url      TEXT NOT NULL DEFAULT '',
	is_active      INTEGER NOT NULL DEFAULT 1,
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	id                        INTEGER PRIMARY KEY AUTOINCREMENT,
	order_number              TEXT NOT NULL,
	customer_id               INTEGER NOT NULL REFERENCES customers(id),
	status                    TEXT NOT NULL DEFAULT 'new',
	total_uah                 REAL NOT NULL DEFAULT 0,
	comment                   TEXT NOT NULL DEFAULT '',
	referral_discount_pending REAL NOT NULL DEFAULT 0,
	created_at                TIMESTAMP NOT NULL,
	updated_at                TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_order_number ON orders(order_number);
CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id);

CREATE TABLE IF NOT EXISTS order_items (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id     INTEGER NOT NULL REFERENCES orders(id),
	product_id   INTEGER NOT NULL,
	product_name TEXT NOT NULL DEFAULT '',
	height       TEXT NOT NULL DEFAULT '',
	quantity     INTEGER NOT NULL DEFAULT 0,
	price_uah    REAL NOT NULL DEFAULT 0,
	total_uah    REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Migrate создаёт таблицы, если их ещё нет.
func (s *storageImpl) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
