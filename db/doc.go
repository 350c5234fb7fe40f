// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens SQL connections and manages the schema for the SQL store.

# Drivers

	STORE_TYPE=sqlite   → modernc.org/sqlite (pure Go)
	STORE_TYPE=postgres → github.com/lib/pq

	conn, err := db.Open(ctx, cfg.StoreType, cfg.DatabaseURL)

SQLite connections are limited to one open connection.

# Schema

CreateSchema is idempotent (CREATE ... IF NOT EXISTS):

	if err := db.CreateSchema(ctx, conn); err != nil {
		// handle
	}

# Tables

journal_user:
  - username (PK, lowercase), display_name, password_hash, created_at

journal_entry:
  - id (PK), username (FK → journal_user, cascade delete)
  - created_ts, created_date, created_time: display timestamps
  - focus, content, mood, energy, action_item, version
  - gratitude, tags: JSON arrays stored as TEXT
  - updated_at: set on edit
*/
package db
