// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the GVisit server.

GVisit is a small personal site with two parts: two presentations that can
only be downloaded after entering a shared password, and a private journal
where each registered user writes entries with a focus, mood, energy level,
gratitude list, action item and tags.

# Starting the Server

Everything has a default, so the server starts with no configuration:

	go run .

Or with flags:

	go run . -p 8080 -data ./data -password "correct horse"

# Configuration

Settings come from a .env file, then the environment, then CLI flags:

  - PORT (-p): Server port (default: 5002)
  - PASSWORD (-password): Shared download password
  - SECRET_KEY (-secret): Signs remember-me cookies; random if unset
  - DATA_DIR (-data): Directory for journal_entries.json and users.json
  - DOWNLOADS_DIR (-downloads): Directory holding the presentations
  - STORE_TYPE (-t), DATABASE_URL (-d): json (default), sqlite or postgres
  - BACKUP_BUCKET (-bucket): GCS bucket for journal backups
  - BACKUP_DIR: Local directory for journal backups when no bucket is set
  - ENV: production turns on Secure session cookies and JSON logs

# Architecture

  - handlers: HTTP handlers (downloads, accounts, journal, pages)
  - router: Route definitions using Go 1.22+ routing
  - middleware: Logging, metrics, security headers, login throttling
  - session: Server-side sessions, flash messages, remember-me cookies
  - store: Users and journal entries in JSON files or SQL
  - backup: Journal snapshots to GCS or a directory
  - views: Embedded HTML templates
  - models: Domain types and the journal vocabulary
  - auth: Password hashing and tokens
  - db: SQL schema
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
