// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Dr-Payne25/GVisit/auth"
	"github.com/Dr-Payne25/GVisit/models"
)

// Cookie names
const (
	CookieName         = "gvisit_session"
	RememberCookieName = "remember_token"
)

// UserLookup confirms that a remembered user still exists and revokes
// remember-me tokens on logout.
type UserLookup interface {
	GetUser(ctx context.Context, username string) (models.User, error)
	RevokeRemember(ctx context.Context, username string) error
}

type Options struct {
	Secret      string
	TTL         time.Duration
	RememberTTL time.Duration
	// Secure marks the session cookie Secure. The remember-me cookie is
	// always Secure.
	Secure bool
}

// Manager ties sessions to cookies and restores remembered logins.
type Manager struct {
	store *MemoryStore
	users UserLookup
	opts  Options
}

func NewManager(store *MemoryStore, users UserLookup, opts Options) *Manager {
	return &Manager{store: store, users: users, opts: opts}
}

func (m *Manager) Store() *MemoryStore {
	return m.store
}

// Load returns the request's session, starting a new one if needed. A
// valid remember-me cookie logs an anonymous session in.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) *Session {
	var s *Session
	if id, ok := readCookie(r, CookieName); ok {
		s = m.store.Get(id)
	}
	created := s == nil
	if created {
		s = m.create()
	}

	if !s.LoggedIn() {
		if restored := m.restoreRemembered(w, r, s); restored != nil {
			return restored
		}
	}
	if created {
		m.writeSessionCookie(w, s)
	}
	return s
}

// restoreRemembered logs s in from a valid remember-me cookie and returns
// the rotated session, or nil when there is nothing to restore.
func (m *Manager) restoreRemembered(w http.ResponseWriter, r *http.Request, s *Session) *Session {
	token, ok := readCookie(r, RememberCookieName)
	if !ok {
		return nil
	}

	remembered, err := auth.VerifyRememberToken(token, m.opts.Secret)
	if err == nil {
		user, err := m.users.GetUser(r.Context(), remembered.Username)
		if err == nil && user.RememberVersion == remembered.Version {
			restored, err := m.bind(w, s, remembered.Username)
			if err != nil {
				slog.Error("failed to restore remembered session", "error", err)
				return nil
			}
			slog.Info("session restored from remember token", "user", remembered.Username)
			return restored
		}
	}

	// Invalid, expired, revoked, or for a deleted user
	m.clearRememberCookie(w)
	return nil
}

func (m *Manager) Save(s *Session) {
	m.store.Save(s)
}

// Login binds user to a fresh session id so a pre-login id can not be
// reused, and optionally sets the remember-me cookie.
func (m *Manager) Login(w http.ResponseWriter, s *Session, user models.User, remember bool) (*Session, error) {
	rotated, err := m.bind(w, s, user.Username)
	if err != nil {
		return nil, err
	}

	if remember {
		signed, err := auth.GenerateRememberToken(rotated.Username, user.RememberVersion, m.opts.Secret, m.opts.RememberTTL)
		if err != nil {
			return nil, err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     RememberCookieName,
			Value:    signed,
			Path:     "/",
			MaxAge:   int(m.opts.RememberTTL / time.Second),
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return rotated, nil
}

// bind logs s in as username under a new id and CSRF token
func (m *Manager) bind(w http.ResponseWriter, s *Session, username string) (*Session, error) {
	token, err := auth.GenerateToken()
	if err != nil {
		return nil, err
	}
	s.Username = auth.NormalizeUsername(username)
	s.CSRFToken = token

	rotated := m.store.Rotate(s, m.opts.TTL)
	m.writeSessionCookie(w, rotated)
	return rotated, nil
}

// Logout destroys s, revokes the user's remember-me tokens, clears the
// remember-me cookie and returns a fresh anonymous session for follow-up
// flash messages.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request, s *Session) *Session {
	if s.LoggedIn() {
		if err := m.users.RevokeRemember(r.Context(), s.Username); err != nil {
			slog.Error("failed to revoke remember tokens", "user", s.Username, "error", err)
		}
	}
	m.store.Delete(s.ID)
	m.clearRememberCookie(w)

	fresh := m.create()
	m.writeSessionCookie(w, fresh)
	return fresh
}

// ValidCSRF reports whether the submitted token matches the session's
func (m *Manager) ValidCSRF(s *Session, submitted string) bool {
	return auth.TokensEqual(s.CSRFToken, submitted)
}

// Janitor prunes expired sessions every interval until ctx is done.
func (m *Manager) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.store.Prune(); n > 0 {
				slog.Debug("pruned expired sessions", "count", n)
			}
		}
	}
}

func (m *Manager) create() *Session {
	token, err := auth.GenerateToken()
	if err != nil {
		// crypto/rand failing leaves nothing sensible to do
		panic(err)
	}
	return m.store.Create(m.opts.TTL, token)
}

func (m *Manager) writeSessionCookie(w http.ResponseWriter, s *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) clearRememberCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RememberCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func readCookie(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}
