// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Dr-Payne25/GVisit/models"
)

// DriverName maps a store type to its database/sql driver
func DriverName(storeType string) (string, error) {
	switch storeType {
	case models.StoreSQLite:
		return "sqlite", nil
	case models.StorePostgres:
		return "postgres", nil
	}
	return "", fmt.Errorf("no sql driver for store type %q", storeType)
}

// Open connects to the database for storeType and verifies the connection.
func Open(ctx context.Context, storeType, url string) (*sql.DB, error) {
	driver, err := DriverName(storeType)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if storeType == models.StoreSQLite {
		// One writer at a time; also keeps :memory: databases on one connection
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// DropSchema removes all application tables. Used by tests.
func DropSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		DROP TABLE IF EXISTS journal_entry;
		DROP TABLE IF EXISTS journal_user;
	`)
	if err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return nil
}

// The DDL is shared by SQLite and PostgreSQL, so it sticks to the common
// subset: TEXT, INTEGER and TIMESTAMP columns, JSON kept as TEXT.
const schema = `
-- Journal accounts, keyed by lowercase username
CREATE TABLE IF NOT EXISTS journal_user (
    username TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    remember_version INTEGER NOT NULL DEFAULT 0
);

-- Journal entries
CREATE TABLE IF NOT EXISTS journal_entry (
    id INTEGER PRIMARY KEY,
    username TEXT NOT NULL REFERENCES journal_user(username) ON DELETE CASCADE,
    created_ts TEXT NOT NULL,
    created_date TEXT NOT NULL,
    created_time TEXT NOT NULL,
    focus TEXT NOT NULL,
    content TEXT NOT NULL,
    mood TEXT NOT NULL,
    energy TEXT NOT NULL,
    gratitude TEXT NOT NULL DEFAULT '[]',
    action_item TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    version TEXT NOT NULL,
    updated_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_journal_entry_username ON journal_entry(username);
`
