// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/Dr-Payne25/GVisit/backup"
	"github.com/Dr-Payne25/GVisit/models"
)

// backupQueue copies journal snapshots to the backup service off the
// request path. Only the newest pending snapshot is kept, so a slow backend
// delays backups but never the writes that trigger them.
type backupQueue struct {
	svc *backup.Service

	mu      sync.Mutex
	idle    *sync.Cond
	pending []models.Entry
	queued  bool
	running bool
}

func newBackupQueue(svc *backup.Service) *backupQueue {
	q := &backupQueue{svc: svc}
	q.idle = sync.NewCond(&q.mu)
	return q
}

// schedule queues entries as the next snapshot to back up
func (q *backupQueue) schedule(entries []models.Entry) {
	if !q.svc.Enabled() {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = slices.Clone(entries)
	q.queued = true
	if !q.running {
		q.running = true
		go q.run()
	}
}

func (q *backupQueue) run() {
	for {
		q.mu.Lock()
		if !q.queued {
			q.running = false
			q.idle.Broadcast()
			q.mu.Unlock()
			return
		}
		entries := q.pending
		q.pending, q.queued = nil, false
		q.mu.Unlock()

		// The service bounds each attempt with its own timeout
		if err := q.svc.Backup(context.Background(), entries); err != nil {
			slog.Error("journal backup failed", "backend", q.svc.Name(), "error", err)
		}
	}
}

// wait blocks until every scheduled snapshot has been attempted
func (q *backupQueue) wait() {
	q.mu.Lock()
	for q.running {
		q.idle.Wait()
	}
	q.mu.Unlock()
}
