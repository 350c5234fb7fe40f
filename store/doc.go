// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists journal users and entries.

# Implementations

  - JSONStore: two flat files, journal_entries.json (array) and users.json
    (object keyed by lowercase username). Default.
  - SQLStore: SQLite or PostgreSQL through database/sql.

Both satisfy Store and behave identically; the shared tests run against each.

# Ownership

Every entry belongs to exactly one user. Methods that take a username only
read or modify that user's entries. An entry owned by someone else is
reported as ErrNotFound, the same as a missing one.

# Search

ListEntries is a linear scan of the user's entries with an optional Filter:

	entries, err := s.ListEntries(ctx, "alice", store.Filter{Tag: "work", Query: "release"})

Results are newest first (descending id).

# Backups

When constructed with a *backup.Service, every journal write is followed by a
best-effort backup of all entries. JSONStore also restores from the latest
backup when its journal file is missing.
*/
package store
