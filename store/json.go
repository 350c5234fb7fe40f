// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Dr-Payne25/GVisit/auth"
	"github.com/Dr-Payne25/GVisit/backup"
	"github.com/Dr-Payne25/GVisit/models"
)

// JSONStore keeps users and entries in two flat JSON files.
// All access goes through one mutex; it assumes a single server process.
type JSONStore struct {
	journalPath string
	usersPath   string
	backup      *backup.Service
	backups     *backupQueue
	now         func() time.Time

	mu sync.Mutex
}

func NewJSONStore(journalPath, usersPath string, backupSvc *backup.Service) *JSONStore {
	return &JSONStore{
		journalPath: journalPath,
		usersPath:   usersPath,
		backup:      backupSvc,
		backups:     newBackupQueue(backupSvc),
		now:         time.Now,
	}
}

func (s *JSONStore) Kind() string { return models.StoreJSON }

// Close waits for queued backups to finish
func (s *JSONStore) Close() error {
	s.backups.wait()
	return nil
}

// Users

func (s *JSONStore) GetUser(ctx context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return models.User{}, err
	}
	user, ok := users[auth.NormalizeUsername(username)]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (s *JSONStore) CreateUser(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return err
	}
	user.Username = auth.NormalizeUsername(user.Username)
	if _, exists := users[user.Username]; exists {
		return ErrUserExists
	}
	users[user.Username] = user
	return writeJSON(s.usersPath, users)
}

func (s *JSONStore) RevokeRemember(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return err
	}
	key := auth.NormalizeUsername(username)
	user, ok := users[key]
	if !ok {
		return ErrNotFound
	}
	user.RememberVersion++
	users[key] = user
	return writeJSON(s.usersPath, users)
}

func (s *JSONStore) CountUsers(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

func (s *JSONStore) loadUsers() (map[string]models.User, error) {
	users := map[string]models.User{}
	data, err := os.ReadFile(s.usersPath)
	if errors.Is(err, os.ErrNotExist) {
		return users, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	if err := json.Unmarshal(data, &users); err != nil {
		// Refuse to continue: saving would wipe every account
		return nil, fmt.Errorf("failed to decode users file: %w", err)
	}
	for name, u := range users {
		// Older files keyed users by name only
		if u.Username == "" {
			u.Username = name
			users[name] = u
		}
	}
	return users, nil
}

// Entries

func (s *JSONStore) ListEntries(ctx context.Context, username string, f Filter) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadEntries(ctx)
	if err != nil {
		return nil, err
	}
	return filterEntries(entries, auth.NormalizeUsername(username), f), nil
}

func (s *JSONStore) GetEntry(ctx context.Context, username string, id int) (models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadEntries(ctx)
	if err != nil {
		return models.Entry{}, err
	}
	i := findEntry(entries, auth.NormalizeUsername(username), id)
	if i < 0 {
		return models.Entry{}, ErrNotFound
	}
	return entries[i], nil
}

func (s *JSONStore) AddEntry(ctx context.Context, username string, in models.EntryInput) (models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadEntries(ctx)
	if err != nil {
		return models.Entry{}, err
	}

	entry := models.Entry{
		ID:       nextID(entries),
		Username: auth.NormalizeUsername(username),
		Version:  models.EntryVersion,
	}
	entry.Stamp(s.now())
	in.Apply(&entry)

	entries = append(entries, entry)
	if err := s.saveEntries(ctx, entries); err != nil {
		return models.Entry{}, err
	}
	return entry, nil
}

func (s *JSONStore) UpdateEntry(ctx context.Context, username string, id int, in models.EntryInput) (models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadEntries(ctx)
	if err != nil {
		return models.Entry{}, err
	}
	i := findEntry(entries, auth.NormalizeUsername(username), id)
	if i < 0 {
		return models.Entry{}, ErrNotFound
	}

	in.Apply(&entries[i])
	now := s.now()
	entries[i].UpdatedAt = &now
	entries[i].Version = models.EntryVersion

	if err := s.saveEntries(ctx, entries); err != nil {
		return models.Entry{}, err
	}
	return entries[i], nil
}

func (s *JSONStore) DeleteEntry(ctx context.Context, username string, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadEntries(ctx)
	if err != nil {
		return err
	}
	i := findEntry(entries, auth.NormalizeUsername(username), id)
	if i < 0 {
		return ErrNotFound
	}

	entries = append(entries[:i], entries[i+1:]...)
	return s.saveEntries(ctx, entries)
}

func (s *JSONStore) Tags(ctx context.Context, username string) ([]models.TagCount, error) {
	entries, err := s.ListEntries(ctx, username, Filter{})
	if err != nil {
		return nil, err
	}
	return models.CountTags(entries), nil
}

func (s *JSONStore) AllEntries(ctx context.Context) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadEntries(ctx)
}

func findEntry(entries []models.Entry, username string, id int) int {
	for i, e := range entries {
		if e.ID == id && e.Username == username {
			return i
		}
	}
	return -1
}

// loadEntries reads the journal file. A missing file is restored from the
// latest backup when one exists; a corrupt file is moved aside and reads as
// empty.
func (s *JSONStore) loadEntries(ctx context.Context) ([]models.Entry, error) {
	data, err := os.ReadFile(s.journalPath)
	if errors.Is(err, os.ErrNotExist) {
		return s.restore(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	var entries []models.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		// Keep the damaged bytes; the next save would replace them
		aside := s.journalPath + ".corrupt-" + s.now().Format("20060102_150405")
		if rerr := os.Rename(s.journalPath, aside); rerr != nil {
			return nil, fmt.Errorf("failed to move corrupt journal aside: %w", rerr)
		}
		slog.Warn("journal file is not valid JSON, moved aside and treating as empty",
			"path", s.journalPath, "moved_to", aside, "error", err)
		return []models.Entry{}, nil
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	return entries, nil
}

func (s *JSONStore) restore(ctx context.Context) ([]models.Entry, error) {
	if !s.backup.Enabled() {
		return []models.Entry{}, nil
	}

	entries, err := s.backup.Restore(ctx)
	if err != nil {
		if !errors.Is(err, backup.ErrNoBackup) {
			slog.Error("failed to restore journal from backup", "error", err)
		}
		return []models.Entry{}, nil
	}

	if err := writeJSON(s.journalPath, entries); err != nil {
		return nil, err
	}
	slog.Info("restored journal from backup", "entries", len(entries))
	return entries, nil
}

func (s *JSONStore) saveEntries(ctx context.Context, entries []models.Entry) error {
	if err := writeJSON(s.journalPath, entries); err != nil {
		return err
	}
	s.backups.schedule(entries)
	return nil
}

// writeJSON replaces path atomically with the indented JSON encoding of v
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
