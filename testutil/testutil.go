// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dr-Payne25/GVisit/auth"
	"github.com/Dr-Payne25/GVisit/cliparse"
	"github.com/Dr-Payne25/GVisit/session"
	"github.com/Dr-Payne25/GVisit/store"
)

// TestPassword is the shared download password in GetTestConfig
const TestPassword = "test-download-password"

// GetTestConfig returns a configuration whose data and downloads live in a
// fresh temp dir. Password hashing is switched to the minimum bcrypt cost.
func GetTestConfig(t *testing.T) cliparse.Config {
	t.Helper()
	auth.BcryptCost = bcrypt.MinCost

	dir := t.TempDir()
	downloads := filepath.Join(dir, "secure_powerpoints")
	if err := os.MkdirAll(downloads, 0o755); err != nil {
		t.Fatalf("Failed to create downloads dir: %v", err)
	}

	return cliparse.Config{
		Port:         5002,
		Password:     TestPassword,
		SecretKey:    "test-secret-key",
		DataDir:      dir,
		JournalFile:  "journal_entries.json",
		UsersFile:    "users.json",
		DownloadsDir: downloads,
		StoreType:    "json",
		Env:          "development",
		LogLevel:     "info",
		CSRFEnabled:  true,
		RememberDays: 30,
		SessionHours: 12,
		LoginRate:    1000,
	}
}

// NewJSONStore opens a JSON store at the config's paths without backups
func NewJSONStore(t *testing.T, cfg cliparse.Config) *store.JSONStore {
	t.Helper()
	return store.NewJSONStore(cfg.JournalPath(), cfg.UsersPath(), nil)
}

// NewSessionManager returns a session manager backed by users
func NewSessionManager(cfg cliparse.Config, users session.UserLookup) *session.Manager {
	return session.NewManager(session.NewMemoryStore(), users, session.Options{
		Secret:      cfg.SecretKey,
		TTL:         cfg.SessionTTL(),
		RememberTTL: cfg.RememberTTL(),
		Secure:      cfg.Production(),
	})
}

// WriteDownload places a file in the downloads dir
func WriteDownload(t *testing.T, cfg cliparse.Config, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(cfg.DownloadsDir, name), data, 0o644); err != nil {
		t.Fatalf("Failed to write download: %v", err)
	}
}

// Client drives a handler like a browser: it keeps cookies between requests
// and fills in the CSRF token of its session on form posts.
type Client struct {
	t        *testing.T
	handler  http.Handler
	sessions *session.Manager
	cookies  map[string]*http.Cookie
}

func NewClient(t *testing.T, handler http.Handler, sessions *session.Manager) *Client {
	return &Client{t: t, handler: handler, sessions: sessions, cookies: map[string]*http.Cookie{}}
}

// Handler is the handler the client talks to
func (c *Client) Handler() http.Handler {
	return c.handler
}

// Do sends req with the client's cookies and records any cookies set
func (c *Client) Do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, cookie := range c.cookies {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	c.keepCookies(w)
	return w
}

func (c *Client) Get(path string) *httptest.ResponseRecorder {
	c.t.Helper()
	return c.Do(httptest.NewRequest(http.MethodGet, path, nil))
}

// PostForm posts form with the session's CSRF token unless form sets one
func (c *Client) PostForm(path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if !form.Has("csrf_token") {
		form.Set("csrf_token", c.CSRFToken())
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Do(req)
}

// CSRFToken returns the token of the client's session, starting one if needed
func (c *Client) CSRFToken() string {
	c.t.Helper()
	if s := c.session(); s != nil {
		return s.CSRFToken
	}
	w := httptest.NewRecorder()
	c.sessions.Load(w, httptest.NewRequest(http.MethodGet, "/", nil))
	c.keepCookies(w)
	if s := c.session(); s != nil {
		return s.CSRFToken
	}
	c.t.Fatal("Failed to start a session")
	return ""
}

// Session returns a copy of the client's server-side session, or nil
func (c *Client) Session() *session.Session {
	return c.session()
}

func (c *Client) session() *session.Session {
	cookie, ok := c.cookies[session.CookieName]
	if !ok {
		return nil
	}
	return c.sessions.Store().Get(cookie.Value)
}

// Cookie returns the cookie the client holds under name, or nil
func (c *Client) Cookie(name string) *http.Cookie {
	return c.cookies[name]
}

// ForgetCookie drops a cookie, like a browser restart dropping session cookies
func (c *Client) ForgetCookie(name string) {
	delete(c.cookies, name)
}

func (c *Client) keepCookies(w *httptest.ResponseRecorder) {
	for _, cookie := range w.Result().Cookies() {
		if cookie.MaxAge < 0 || cookie.Value == "" {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
}

// Register creates a journal account, leaving the client logged in
func (c *Client) Register(username, password string) {
	c.t.Helper()
	w := c.PostForm("/journal_register", url.Values{
		"username":         {username},
		"password":         {password},
		"confirm_password": {password},
	})
	AssertRedirect(c.t, w, "/journal")
}

// Login logs into the journal and asserts success
func (c *Client) Login(username, password string, remember bool) *httptest.ResponseRecorder {
	c.t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	if remember {
		form.Set("remember_me", "on")
	}
	w := c.PostForm("/journal_login", form)
	AssertRedirect(c.t, w, "/journal")
	return w
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertRedirect checks for a 303 to location
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusSeeOther {
		t.Fatalf("Expected redirect to %s, got status %d. Body: %s", location, w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Fatalf("Expected redirect to %s, got %s", location, got)
	}
}

// AssertBodyContains checks that the response body contains every substring
func AssertBodyContains(t *testing.T, w *httptest.ResponseRecorder, substrings ...string) {
	t.Helper()
	body := w.Body.String()
	for _, s := range substrings {
		if !strings.Contains(body, s) {
			t.Errorf("Expected body to contain %q. Body: %s", s, body)
		}
	}
}

// AssertBodyNotContains checks that none of the substrings appear in the body
func AssertBodyNotContains(t *testing.T, w *httptest.ResponseRecorder, substrings ...string) {
	t.Helper()
	body := w.Body.String()
	for _, s := range substrings {
		if strings.Contains(body, s) {
			t.Errorf("Expected body not to contain %q", s)
		}
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
