// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Dr-Payne25/GVisit/auth"
	"github.com/Dr-Payne25/GVisit/session"
	"github.com/Dr-Payne25/GVisit/testutil"
)

func TestRegister_Validation(t *testing.T) {
	testCases := []struct {
		name     string
		username string
		password string
		confirm  string
		message  string
	}{
		{"short username", "ab", "secret123", "secret123", "Username must be at least 3 characters long"},
		{"empty username", "", "secret123", "secret123", "Username must be at least 3 characters long"},
		{"long username", strings.Repeat("a", 31), "secret123", "secret123", msgUsernameInvalid},
		{"username with spaces", "bad name", "secret123", "secret123", msgUsernameInvalid},
		{"short password", "alice", "12345", "12345", "Password must be at least 6 characters long"},
		{"long password", "alice", strings.Repeat("p", 129), strings.Repeat("p", 129), msgPasswordTooLong},
		{"mismatch", "alice", "secret123", "secret124", "Passwords do not match"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, d := newTestServer(t)

			w := c.PostForm("/journal_register", url.Values{
				"username":         {tc.username},
				"password":         {tc.password},
				"confirm_password": {tc.confirm},
			})

			testutil.AssertStatus(t, w, http.StatusOK)
			testutil.AssertBodyContains(t, w, tc.message)
			if n, _ := d.Store.CountUsers(context.Background()); n != 0 {
				t.Errorf("Expected no users, got %d", n)
			}
			if c.Session().LoggedIn() {
				t.Error("Expected not logged in")
			}
		})
	}
}

func TestRegister_Success(t *testing.T) {
	c, d := newTestServer(t)

	c.Register("Alice", "secret123")

	s := c.Session()
	if s.Username != "alice" {
		t.Errorf("Expected session user 'alice', got '%s'", s.Username)
	}
	assertFlash(t, c, session.FlashSuccess, "User registered successfully")

	user, err := d.Store.GetUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Expected stored user: %v", err)
	}
	if !auth.IsBcryptHash(user.PasswordHash) {
		t.Errorf("Expected bcrypt hash, got %q", user.PasswordHash)
	}
	if user.DisplayName != "Alice" {
		t.Errorf("Expected display name 'Alice', got '%s'", user.DisplayName)
	}

	w := c.Get("/journal")
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertBodyContains(t, w, "User registered successfully")
}

func TestRegister_DuplicateCaseInsensitive(t *testing.T) {
	c, d := newTestServer(t)
	c.Register("alice", "secret123")

	other := testutil.NewClient(t, c.Handler(), d.Sessions)
	w := other.PostForm("/journal_register", url.Values{
		"username":         {"ALICE"},
		"password":         {"another1"},
		"confirm_password": {"another1"},
	})

	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertBodyContains(t, w, "Username already exists")
}

func TestRegisterForm_LoggedInRedirects(t *testing.T) {
	c, _ := newTestServer(t)
	c.Register("alice", "secret123")

	testutil.AssertRedirect(t, c.Get("/journal_register"), "/journal")
	testutil.AssertRedirect(t, c.Get("/journal_login"), "/journal")
}

func TestLogin(t *testing.T) {
	c, d := newTestServer(t)
	c.Register("alice", "secret123")
	c.PostForm("/logout_journal", nil)

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		for _, form := range []url.Values{
			{"username": {"alice"}, "password": {"wrong-password"}},
			{"username": {"nobody"}, "password": {"secret123"}},
		} {
			w := c.PostForm("/journal_login", form)
			testutil.AssertStatus(t, w, http.StatusOK)
			testutil.AssertBodyContains(t, w, "Invalid username or password")
			if c.Session().LoggedIn() {
				t.Fatal("Expected login to fail")
			}
		}
	})

	t.Run("case insensitive with welcome", func(t *testing.T) {
		before := c.Session().ID
		c.Login("ALICE", "secret123", false)

		s := c.Session()
		if s.Username != "alice" {
			t.Errorf("Expected user 'alice', got '%s'", s.Username)
		}
		if s.ID == before {
			t.Error("Expected session id to rotate on login")
		}
		if d.Sessions.Store().Get(before) != nil {
			t.Error("Expected pre-login session to be gone")
		}
		assertFlash(t, c, session.FlashSuccess, "Welcome back, Alice!")
		if c.Cookie(session.RememberCookieName) != nil {
			t.Error("Expected no remember cookie without remember_me")
		}
	})
}

func TestLogin_RememberMe(t *testing.T) {
	c, _ := newTestServer(t)
	c.Register("alice", "secret123")
	c.PostForm("/logout_journal", nil)

	w := c.Login("alice", "secret123", true)

	var remember *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == session.RememberCookieName {
			remember = cookie
		}
	}
	if remember == nil {
		t.Fatal("Expected remember cookie")
	}
	if !remember.HttpOnly || !remember.Secure || remember.SameSite != http.SameSiteLaxMode {
		t.Errorf("Unexpected remember cookie flags: %+v", remember)
	}
	if remember.MaxAge != 30*24*60*60 {
		t.Errorf("Expected 30 day max age, got %d", remember.MaxAge)
	}

	// A new browser session with only the remember cookie is logged in
	c.ForgetCookie(session.CookieName)
	w = c.Get("/journal")
	testutil.AssertStatus(t, w, http.StatusOK)
	if s := c.Session(); s == nil || s.Username != "alice" {
		t.Error("Expected remember cookie to restore the login")
	}

	// Logout clears it for good
	testutil.AssertRedirect(t, c.PostForm("/logout_journal", nil), "/journal_login")
	if c.Cookie(session.RememberCookieName) != nil {
		t.Error("Expected remember cookie cleared on logout")
	}
	c.ForgetCookie(session.CookieName)
	testutil.AssertRedirect(t, c.Get("/journal"), "/journal_login")
}

func TestLogout_RevokesCopiedRememberToken(t *testing.T) {
	c, d := newTestServer(t)
	c.Register("alice", "secret123")
	c.PostForm("/logout_journal", nil)
	c.Login("alice", "secret123", true)

	copied := c.Cookie(session.RememberCookieName)
	if copied == nil {
		t.Fatal("Expected remember cookie")
	}

	testutil.AssertRedirect(t, c.PostForm("/logout_journal", nil), "/journal_login")

	// Another browser replaying the old cookie is not logged in
	other := testutil.NewClient(t, c.Handler(), d.Sessions)
	req := httptest.NewRequest(http.MethodGet, "/journal", nil)
	req.AddCookie(&http.Cookie{Name: copied.Name, Value: copied.Value})
	w := other.Do(req)

	testutil.AssertRedirect(t, w, "/journal_login")
	cleared := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == session.RememberCookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("Expected the revoked remember cookie to be cleared")
	}

	// Logging in again issues a token that works
	c.Login("alice", "secret123", true)
	fresh := testutil.NewClient(t, c.Handler(), d.Sessions)
	req = httptest.NewRequest(http.MethodGet, "/journal", nil)
	remember := c.Cookie(session.RememberCookieName)
	req.AddCookie(&http.Cookie{Name: remember.Name, Value: remember.Value})
	testutil.AssertStatus(t, fresh.Do(req), http.StatusOK)
}

func TestLogout(t *testing.T) {
	c, d := newTestServer(t)
	c.Register("alice", "secret123")
	loggedIn := c.Session().ID

	w := c.PostForm("/logout_journal", nil)

	testutil.AssertRedirect(t, w, "/journal_login")
	assertFlash(t, c, session.FlashInfo, "You have been logged out successfully.")
	if d.Sessions.Store().Get(loggedIn) != nil {
		t.Error("Expected logged-in session destroyed")
	}

	w = c.Get("/journal")
	testutil.AssertRedirect(t, w, "/journal_login")
	assertFlash(t, c, session.FlashWarning, "Please log in to access your journal.")
}
