// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values are resolved in three layers, later layers winning:

 1. A .env file in the working directory (optional)
 2. Environment variables, with defaults from the Config struct tags
 3. CLI flags

# Environment Variables

	PORT           → -p          (default 5002)
	PASSWORD       → --password  (default GVISIT)
	SECRET_KEY     → --secret    (random per process if unset)
	DATA_DIR       → --data      (default .)
	DOWNLOADS_DIR  → --downloads (default secure_powerpoints)
	STORE_TYPE     → -t          (json, sqlite, postgres)
	DATABASE_URL   → -d
	BACKUP_BUCKET  → --bucket

Environment only:

	JOURNAL_FILE, USERS_FILE, BACKUP_DIR, GOOGLE_APPLICATION_CREDENTIALS,
	ENV, LOG_LEVEL, CSRF_ENABLED, REMEMBER_DAYS, SESSION_HOURS, LOGIN_RATE

# Validation

ParseFlags returns an error if:

  - the port is outside 1-65535
  - STORE_TYPE is not json, sqlite or postgres
  - a sql store is selected without DATABASE_URL
  - REMEMBER_DAYS, SESSION_HOURS or LOGIN_RATE is below 1
*/
package cliparse
