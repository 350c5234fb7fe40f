// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Flash kinds
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashError   = "error"
)

type Flash struct {
	Kind    string
	Message string
}

// Session is the server-side state behind a session cookie.
// Values returned by the store are copies; call Save to persist changes.
type Session struct {
	ID        string
	Username  string
	Downloads map[string]bool
	CSRFToken string
	Flashes   []Flash
	ExpiresAt time.Time
}

func (s *Session) LoggedIn() bool {
	return s.Username != ""
}

// CanDownload reports whether the download password was entered for id
func (s *Session) CanDownload(id string) bool {
	return s.Downloads[id]
}

func (s *Session) GrantDownload(id string) {
	if s.Downloads == nil {
		s.Downloads = map[string]bool{}
	}
	s.Downloads[id] = true
}

func (s *Session) AddFlash(kind, message string) {
	s.Flashes = append(s.Flashes, Flash{Kind: kind, Message: message})
}

// PopFlashes returns and clears pending flash messages
func (s *Session) PopFlashes() []Flash {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

func (s *Session) clone() *Session {
	c := *s
	c.Downloads = maps.Clone(s.Downloads)
	c.Flashes = slices.Clone(s.Flashes)
	return &c
}

// MemoryStore is a thread-safe in-memory session store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session), now: time.Now}
}

// Create stores a new empty session and returns a copy of it.
func (m *MemoryStore) Create(ttl time.Duration, csrfToken string) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Downloads: map[string]bool{},
		CSRFToken: csrfToken,
		ExpiresAt: m.now().Add(ttl),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s.clone()
}

// Get returns a copy of the session, or nil if missing or expired.
func (m *MemoryStore) Get(id string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	if m.now().After(s.ExpiresAt) {
		m.Delete(id)
		return nil
	}
	// Stored sessions are replaced on Save, never mutated in place
	return s.clone()
}

// Save replaces the stored session. Sessions deleted in the meantime stay deleted.
func (m *MemoryStore) Save(s *Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; !ok {
		return false
	}
	m.sessions[s.ID] = s.clone()
	return true
}

func (m *MemoryStore) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Rotate moves a session to a fresh id and returns the moved copy.
func (m *MemoryStore) Rotate(s *Session, ttl time.Duration) *Session {
	moved := s.clone()
	moved.ID = uuid.NewString()
	moved.ExpiresAt = m.now().Add(ttl)

	m.mu.Lock()
	delete(m.sessions, s.ID)
	m.sessions[moved.ID] = moved
	m.mu.Unlock()
	return moved.clone()
}

// Prune drops expired sessions and returns how many were removed.
func (m *MemoryStore) Prune() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
