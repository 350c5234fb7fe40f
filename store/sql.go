// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Dr-Payne25/GVisit/auth"
	"github.com/Dr-Payne25/GVisit/backup"
	"github.com/Dr-Payne25/GVisit/db"
	"github.com/Dr-Payne25/GVisit/models"
)

// SQLStore keeps users and entries in SQLite or PostgreSQL.
type SQLStore struct {
	db     *sql.DB
	kind   string
	backup  *backup.Service
	backups *backupQueue
	now     func() time.Time

	// serializes id assignment in AddEntry
	writeMu sync.Mutex
	// keeps snapshots queued in the order they were read
	snapshotMu sync.Mutex
}

// OpenSQLStore connects to url and creates the schema.
func OpenSQLStore(ctx context.Context, kind, url string, backupSvc *backup.Service) (*SQLStore, error) {
	conn, err := db.Open(ctx, kind, url)
	if err != nil {
		return nil, err
	}
	if err := db.CreateSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return NewSQLStore(conn, kind, backupSvc), nil
}

func NewSQLStore(conn *sql.DB, kind string, backupSvc *backup.Service) *SQLStore {
	return &SQLStore{db: conn, kind: kind, backup: backupSvc, backups: newBackupQueue(backupSvc), now: time.Now}
}

func (s *SQLStore) Kind() string { return s.kind }

// Close waits for queued backups to finish, then closes the database
func (s *SQLStore) Close() error {
	s.backups.wait()
	return s.db.Close()
}

// Users

func (s *SQLStore) GetUser(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT username, display_name, password_hash, created_at, remember_version
		FROM journal_user
		WHERE username = $1
	`, auth.NormalizeUsername(username)).Scan(&u.Username, &u.DisplayName, &u.PasswordHash, &u.CreatedAt, &u.RememberVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

func (s *SQLStore) CreateUser(ctx context.Context, user models.User) error {
	user.Username = auth.NormalizeUsername(user.Username)

	var exists int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM journal_user WHERE username = $1
	`, user.Username).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to query user: %w", err)
	}
	if exists > 0 {
		return ErrUserExists
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO journal_user (username, display_name, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, user.Username, user.DisplayName, user.PasswordHash, user.CreatedAt)
	if err != nil {
		// Lost a race with another registration of the same name
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *SQLStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal_user`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (s *SQLStore) RevokeRemember(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE journal_user SET remember_version = remember_version + 1 WHERE username = $1
	`, auth.NormalizeUsername(username))
	if err != nil {
		return fmt.Errorf("failed to revoke remember tokens: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Entries

const entryColumns = `id, username, created_ts, created_date, created_time, focus, content,
	mood, energy, gratitude, action_item, tags, version, updated_at`

func (s *SQLStore) ListEntries(ctx context.Context, username string, f Filter) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entry
		WHERE username = $1
		ORDER BY id DESC
	`, auth.NormalizeUsername(username))
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	all, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}

	// Search stays a linear filter, matching the JSON store exactly
	out := []models.Entry{}
	for _, e := range all {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *SQLStore) GetEntry(ctx context.Context, username string, id int) (models.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entry
		WHERE id = $1 AND username = $2
	`, id, auth.NormalizeUsername(username))
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to query entry: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return models.Entry{}, err
	}
	if len(entries) == 0 {
		return models.Entry{}, ErrNotFound
	}
	return entries[0], nil
}

func (s *SQLStore) AddEntry(ctx context.Context, username string, in models.EntryInput) (models.Entry, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	entry := models.Entry{
		Username: auth.NormalizeUsername(username),
		Version:  models.EntryVersion,
	}
	entry.Stamp(s.now())
	in.Apply(&entry)

	gratitude, tags, err := encodeLists(entry)
	if err != nil {
		return models.Entry{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM journal_entry`).Scan(&entry.ID); err != nil {
		return models.Entry{}, fmt.Errorf("failed to allocate entry id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO journal_entry (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, entry.ID, entry.Username, entry.Timestamp, entry.Date, entry.Time, entry.Focus, entry.Content,
		entry.Mood, entry.Energy, gratitude, entry.ActionItem, tags, entry.Version, nil)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to insert entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Entry{}, fmt.Errorf("failed to commit entry: %w", err)
	}

	s.backupAll(ctx)
	return entry, nil
}

func (s *SQLStore) UpdateEntry(ctx context.Context, username string, id int, in models.EntryInput) (models.Entry, error) {
	entry, err := s.GetEntry(ctx, username, id)
	if err != nil {
		return models.Entry{}, err
	}

	in.Apply(&entry)
	now := s.now()
	entry.UpdatedAt = &now
	entry.Version = models.EntryVersion

	gratitude, tags, err := encodeLists(entry)
	if err != nil {
		return models.Entry{}, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE journal_entry
		SET focus = $1, content = $2, mood = $3, energy = $4, gratitude = $5,
			action_item = $6, tags = $7, version = $8, updated_at = $9
		WHERE id = $10 AND username = $11
	`, entry.Focus, entry.Content, entry.Mood, entry.Energy, gratitude,
		entry.ActionItem, tags, entry.Version, now, id, entry.Username)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to update entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Entry{}, ErrNotFound
	}

	s.backupAll(ctx)
	return entry, nil
}

func (s *SQLStore) DeleteEntry(ctx context.Context, username string, id int) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM journal_entry WHERE id = $1 AND username = $2
	`, id, auth.NormalizeUsername(username))
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.backupAll(ctx)
	return nil
}

func (s *SQLStore) Tags(ctx context.Context, username string) ([]models.TagCount, error) {
	entries, err := s.ListEntries(ctx, username, Filter{})
	if err != nil {
		return nil, err
	}
	return models.CountTags(entries), nil
}

func (s *SQLStore) AllEntries(ctx context.Context) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM journal_entry ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// backupAll queues a snapshot of every entry. Failures are logged; the
// write that triggered the backup has already committed.
func (s *SQLStore) backupAll(ctx context.Context) {
	if !s.backup.Enabled() {
		return
	}

	s.snapshotMu.Lock()
	defer s.snapshotMu.Unlock()
	entries, err := s.AllEntries(context.WithoutCancel(ctx))
	if err != nil {
		slog.Error("failed to read entries for backup", "error", err)
		return
	}
	s.backups.schedule(entries)
}

func scanEntries(rows *sql.Rows) ([]models.Entry, error) {
	entries := []models.Entry{}
	for rows.Next() {
		var (
			e         models.Entry
			gratitude string
			tags      string
			updatedAt sql.NullTime
		)
		if err := rows.Scan(
			&e.ID,
			&e.Username,
			&e.Timestamp,
			&e.Date,
			&e.Time,
			&e.Focus,
			&e.Content,
			&e.Mood,
			&e.Energy,
			&gratitude,
			&e.ActionItem,
			&tags,
			&e.Version,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if err := json.Unmarshal([]byte(gratitude), &e.Gratitude); err != nil {
			return nil, fmt.Errorf("failed to decode gratitude for entry %d: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags for entry %d: %w", e.ID, err)
		}
		if updatedAt.Valid {
			t := updatedAt.Time
			e.UpdatedAt = &t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return entries, nil
}

func encodeLists(e models.Entry) (gratitude, tags string, err error) {
	g, err := json.Marshal(e.Gratitude)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode gratitude: %w", err)
	}
	t, err := json.Marshal(e.Tags)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(g), string(t), nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
