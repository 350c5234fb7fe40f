// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package backup copies journal snapshots to an object store.

# Backends

  - GCSBackend: a Google Cloud Storage bucket (BACKUP_BUCKET)
  - DirBackend: a local directory, e.g. a mounted volume (BACKUP_DIR)

# Object Layout

Every backup writes the same JSON array twice:

	journal_backups/journal_entries_20060102_150405.json
	journal_backups/latest.json

Restore reads latest.json only. Older snapshots are kept for manual recovery;
enable bucket versioning or lifecycle rules to manage them.

# Failure Semantics

Backups are best effort. Service.Backup returns an error so the caller can
log it, but a failed backup never fails the write that triggered it.

A nil *Service is valid: Enabled reports false, Backup is a no-op and
Restore returns ErrDisabled.
*/
package backup
