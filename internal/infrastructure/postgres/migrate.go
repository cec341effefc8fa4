package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema es idempotente: se ejecuta en cada arranque.
// CHECK (stock >= 0) es el segundo resguardo; el primero es el chequeo bajo bloqueo del ledger.
const schema = `
CREATE TABLE IF NOT EXISTS medicines (
	id          TEXT PRIMARY KEY,
	sku         TEXT NOT NULL UNIQUE,
	name        TEXT NOT NULL,
	description TEXT,
	price       NUMERIC(14,2) NOT NULL DEFAULT 0,
	cost        NUMERIC(14,2) NOT NULL DEFAULT 0,
	tax_rate    NUMERIC(7,4)  NOT NULL DEFAULT 0,
	stock       BIGINT NOT NULL DEFAULT 0 CHECK (stock >= 0),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS suppliers (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	tax_id     TEXT,
	phone      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS customers (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	tax_id     TEXT UNIQUE,
	email      TEXT,
	phone      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS receipts (
	id             TEXT PRIMARY KEY,
	supplier_id    TEXT NOT NULL REFERENCES suppliers(id),
	date           DATE NOT NULL,
	notes          TEXT,
	currency       TEXT,
	payment_method TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS receipt_items (
	id          TEXT PRIMARY KEY,
	receipt_id  TEXT NOT NULL REFERENCES receipts(id) ON DELETE CASCADE,
	medicine_id TEXT NOT NULL REFERENCES medicines(id),
	quantity    BIGINT NOT NULL CHECK (quantity > 0),
	unit_cost   NUMERIC(14,2) NOT NULL DEFAULT 0,
	position    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_receipt_items_receipt ON receipt_items(receipt_id, position);

CREATE TABLE IF NOT EXISTS sales (
	id             TEXT PRIMARY KEY,
	customer_id    TEXT REFERENCES customers(id),
	date           DATE NOT NULL,
	notes          TEXT,
	currency       TEXT,
	payment_method TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sale_items (
	id          TEXT PRIMARY KEY,
	sale_id     TEXT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
	medicine_id TEXT NOT NULL REFERENCES medicines(id),
	quantity    BIGINT NOT NULL CHECK (quantity > 0),
	unit_price  NUMERIC(14,2) NOT NULL DEFAULT 0,
	tax_rate    NUMERIC(7,4)  NOT NULL DEFAULT 0,
	position    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items(sale_id, position);

CREATE TABLE IF NOT EXISTS ncf_sequences (
	prefix      TEXT PRIMARY KEY,
	next_number BIGINT NOT NULL DEFAULT 1 CHECK (next_number >= 1),
	range_start BIGINT,
	range_end   BIGINT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS invoices (
	id            TEXT PRIMARY KEY,
	sale_id       TEXT NOT NULL UNIQUE REFERENCES sales(id),
	customer_id   TEXT REFERENCES customers(id),
	prefix        TEXT NOT NULL,
	number        BIGINT NOT NULL,
	ncf           TEXT NOT NULL UNIQUE,
	status        TEXT NOT NULL CHECK (status IN ('emitida', 'anulada')),
	date          DATE NOT NULL,
	subtotal      NUMERIC(14,2) NOT NULL DEFAULT 0,
	tax_total     NUMERIC(14,2) NOT NULL DEFAULT 0,
	grand_total   NUMERIC(14,2) NOT NULL DEFAULT 0,
	cancel_reason TEXT,
	cancelled_at  TIMESTAMPTZ,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS stock_movements (
	seq           BIGSERIAL,
	id            TEXT PRIMARY KEY,
	medicine_id   TEXT NOT NULL REFERENCES medicines(id),
	document_type TEXT NOT NULL,
	document_id   TEXT NOT NULL,
	kind          TEXT NOT NULL,
	quantity      BIGINT NOT NULL,
	stock_after   BIGINT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_stock_movements_medicine ON stock_movements(medicine_id, seq);
`

// Migrate crea las tablas si no existen.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
