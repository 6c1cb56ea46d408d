package db

// SchemaSQL is the single source of truth for the database schema. Tests
// create their in-memory databases from GetSchemaSQL() instead of
// hardcoding CREATE TABLE statements, so repository code and tests cannot
// drift apart.
const SchemaSQL = `
-- Durable prod→test ID mappings. One test ID per (kind, prod_id) for the
-- lifetime of the store.
CREATE TABLE IF NOT EXISTS id_mappings (
	kind TEXT NOT NULL CHECK(kind IN ('tax_rates', 'products', 'prices', 'coupons')),
	prod_id TEXT NOT NULL,
	test_id TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (kind, prod_id)
);

CREATE INDEX IF NOT EXISTS idx_id_mappings_kind ON id_mappings(kind);

-- One row per finished copy run.
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	dry_run INTEGER NOT NULL DEFAULT 0,
	created INTEGER NOT NULL DEFAULT 0,
	updated INTEGER NOT NULL DEFAULT 0,
	errors INTEGER NOT NULL DEFAULT 0,
	snapshot_path TEXT
);
`

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
func GetSchemaSQL() string {
	return SchemaSQL
}
