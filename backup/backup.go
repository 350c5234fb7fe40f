// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Dr-Payne25/GVisit/models"
)

// Object keys
const (
	Prefix    = "journal_backups/"
	LatestKey = Prefix + "latest.json"
)

// DefaultTimeout bounds one backup or restore against the backend
const DefaultTimeout = 30 * time.Second

var (
	ErrNoBackup = errors.New("no backup found")
	ErrDisabled = errors.New("backup not configured")
)

var backupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gvisit",
	Name:      "backups_total",
	Help:      "Journal backup attempts by result.",
}, []string{"result"})

// Backend stores backup objects by key.
type Backend interface {
	Put(ctx context.Context, key string, data []byte) error
	// Get returns ErrNoBackup when key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	Name() string
}

// Service writes journal snapshots to a Backend.
// A nil *Service is valid and disabled.
type Service struct {
	backend Backend
	timeout time.Duration
	now     func() time.Time
}

func NewService(backend Backend) *Service {
	return &Service{backend: backend, timeout: DefaultTimeout, now: time.Now}
}

// WithTimeout sets how long one backup or restore may take
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

func (s *Service) Enabled() bool {
	return s != nil && s.backend != nil
}

// Name describes the backend, or "none"
func (s *Service) Name() string {
	if !s.Enabled() {
		return "none"
	}
	return s.backend.Name()
}

// SnapshotKey is the timestamped key for a backup taken at t
func SnapshotKey(t time.Time) string {
	return fmt.Sprintf("%sjournal_entries_%s.json", Prefix, t.Format("20060102_150405"))
}

// Backup writes entries to a timestamped object and to latest.json.
// Callers treat failures as non-fatal.
func (s *Service) Backup(ctx context.Context, entries []models.Entry) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.backup(ctx, entries); err != nil {
		backupsTotal.WithLabelValues("error").Inc()
		return err
	}
	backupsTotal.WithLabelValues("ok").Inc()
	return nil
}

func (s *Service) backup(ctx context.Context, entries []models.Entry) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if entries == nil {
		entries = []models.Entry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	key := SnapshotKey(s.now())
	if err := s.backend.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := s.backend.Put(ctx, LatestKey, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", LatestKey, err)
	}

	slog.Info("journal backed up", "backend", s.backend.Name(), "entries", len(entries), "key", key)
	return nil
}

// Restore reads the entries stored in latest.json
func (s *Service) Restore(ctx context.Context) ([]models.Entry, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.backend.Get(ctx, LatestKey)
	if err != nil {
		return nil, err
	}

	var entries []models.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}

	slog.Info("journal restored from backup", "backend", s.backend.Name(), "entries", len(entries))
	return entries, nil
}
