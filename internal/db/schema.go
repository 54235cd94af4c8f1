package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Statements are idempotent so the
// schema can be re-applied on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS admins (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS submissions (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    email        TEXT NOT NULL,
    phone        TEXT NOT NULL,
    address      TEXT NOT NULL,
    seller_notes TEXT,
    admin_notes  TEXT,
    signature    TEXT NOT NULL,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
    id                 INTEGER PRIMARY KEY,
    submission_id      TEXT NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
    position           INTEGER NOT NULL,
    item_name          TEXT NOT NULL,
    description        TEXT,
    condition          TEXT NOT NULL CHECK (condition IN ('New', 'Like New', 'Good', 'Fair', 'Poor')),
    estimated_value    REAL CHECK (estimated_value IS NULL OR estimated_value >= 0),
    admin_quoted_price REAL CHECK (admin_quoted_price IS NULL OR admin_quoted_price >= 0),
    status             TEXT NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending', 'Quoted', 'Accepted', 'Rejected')),
    UNIQUE (submission_id, position)
);

CREATE INDEX IF NOT EXISTS idx_items_submission ON items(submission_id);

CREATE INDEX IF NOT EXISTS idx_submissions_created ON submissions(created_at DESC);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
