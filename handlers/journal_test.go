// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/Dr-Payne25/GVisit/models"
	"github.com/Dr-Payne25/GVisit/session"
	"github.com/Dr-Payne25/GVisit/store"
	"github.com/Dr-Payne25/GVisit/testutil"
)

func entryValues(content string) url.Values {
	return url.Values{
		"focus":       {models.FocusDailyReflection},
		"content":     {content},
		"mood":        {"good"},
		"energy":      {"High"},
		"gratitude_1": {"coffee"},
		"gratitude_2": {"  "},
		"gratitude_3": {"friends"},
		"action_item": {"call mom"},
		"tags":        {"Work, health, work"},
	}
}

func addEntry(t *testing.T, c *testutil.Client, content string) {
	t.Helper()
	w := c.PostForm("/journal", entryValues(content))
	testutil.AssertRedirect(t, w, "/journal")
}

func TestJournal_RequiresLogin(t *testing.T) {
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/journal"},
		{"POST", "/journal"},
		{"GET", "/journal/edit/1"},
		{"POST", "/journal/edit/1"},
		{"POST", "/journal/delete/1"},
		{"GET", "/journal/export"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			c, _ := newTestServer(t)

			if tc.method == "POST" {
				testutil.AssertRedirect(t, c.PostForm(tc.path, entryValues("x")), "/journal_login")
			} else {
				testutil.AssertRedirect(t, c.Get(tc.path), "/journal_login")
			}
			assertFlash(t, c, session.FlashWarning, "Please log in to access your journal.")
		})
	}
}

func TestJournal_AddAndList(t *testing.T) {
	c, d := newTestServer(t)
	c.Register("alice", "secret123")

	addEntry(t, c, "First line\nSecond line")
	assertFlash(t, c, session.FlashSuccess, "Journal entry added successfully!")

	entries, err := d.Store.ListEntries(context.Background(), "alice", store.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.ID != 1 || e.Username != "alice" || e.Version != models.EntryVersion {
		t.Errorf("Unexpected entry identity: %+v", e)
	}
	if strings.Join(e.Gratitude, ",") != "coffee,friends" {
		t.Errorf("Expected blank gratitude dropped, got %v", e.Gratitude)
	}
	if strings.Join(e.Tags, ",") != "work,health" {
		t.Errorf("Expected normalized tags, got %v", e.Tags)
	}

	w := c.Get("/journal")
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertBodyContains(t, w,
		"First line\nSecond line",
		"call mom",
		"coffee, friends",
		`href="/journal/edit/1"`,
		`action="/journal/delete/1"`,
		"work (1)",
	)
}

func TestJournal_AddValidation(t *testing.T) {
	testCases := []struct {
		name    string
		change  func(url.Values)
		message string
	}{
		{"missing focus", func(v url.Values) { v.Del("focus") }, "Please fill in all required fields."},
		{"blank content", func(v url.Values) { v.Set("content", "   \n ") }, "Please fill in all required fields."},
		{"missing mood", func(v url.Values) { v.Del("mood") }, "Please fill in all required fields."},
		{"missing energy", func(v url.Values) { v.Del("energy") }, "Please fill in all required fields."},
		{"unknown focus", func(v url.Values) { v.Set("focus", "Shopping List") }, "Please fill in all required fields."},
		{"unknown mood", func(v url.Values) { v.Set("mood", "ecstatic") }, "Please fill in all required fields."},
		{"unknown energy", func(v url.Values) { v.Set("energy", "Extreme") }, "Please fill in all required fields."},
		{"content too long", func(v url.Values) { v.Set("content", strings.Repeat("a", 10001)) }, msgContentTooLong},
		{"action item too long", func(v url.Values) { v.Set("action_item", strings.Repeat("a", 501)) }, msgFieldTooLong},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, d := newTestServer(t)
			c.Register("alice", "secret123")

			form := entryValues("valid content")
			tc.change(form)
			w := c.PostForm("/journal", form)

			testutil.AssertRedirect(t, w, "/journal")
			assertFlash(t, c, session.FlashError, tc.message)
			entries, _ := d.Store.ListEntries(context.Background(), "alice", store.Filter{})
			if len(entries) != 0 {
				t.Errorf("Expected no entries, got %d", len(entries))
			}
		})
	}
}

func TestJournal_ContentIsEscaped(t *testing.T) {
	c, _ := newTestServer(t)
	c.Register("alice", "secret123")

	addEntry(t, c, `<script>alert("xss")</script>`)

	w := c.Get("/journal")
	testutil.AssertBodyNotContains(t, w, `<script>alert`)
	testutil.AssertBodyContains(t, w, "&lt;script&gt;")
}

func TestJournal_Filters(t *testing.T) {
	c, _ := newTestServer(t)
	c.Register("alice", "secret123")

	addEntry(t, c, "Morning run felt great")

	form := entryValues("Quarterly planning meeting")
	form.Set("mood", "bad")
	form.Set("focus", models.FocusProjectPlanning)
	form.Set("tags", "planning")
	c.PostForm("/journal", form)

	testCases := []struct {
		query   string
		want    string
		notWant string
	}{
		{"q=RUN", "Morning run", "Quarterly planning"},
		{"tag=planning", "Quarterly planning", "Morning run"},
		{"mood=bad", "Quarterly planning", "Morning run"},
		{"focus=" + url.QueryEscape(models.FocusDailyReflection), "Morning run", "Quarterly planning"},
		{"q=nothing-matches", "No entries match your filters.", "Morning run"},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			w := c.Get("/journal?" + tc.query)
			testutil.AssertStatus(t, w, http.StatusOK)
			testutil.AssertBodyContains(t, w, tc.want)
			testutil.AssertBodyNotContains(t, w, tc.notWant)
		})
	}
}

func TestJournal_EditAndUpdate(t *testing.T) {
	c, d := newTestServer(t)
	c.Register("alice", "secret123")
	addEntry(t, c, "Original content")

	w := c.Get("/journal/edit/1")
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertBodyContains(t, w, "Original content", `action="/journal/edit/1"`, `value="work, health"`)

	form := entryValues("Updated content")
	form.Set("tags", "revised")
	w = c.PostForm("/journal/edit/1", form)
	testutil.AssertRedirect(t, w, "/journal")
	assertFlash(t, c, session.FlashSuccess, "Entry updated successfully!")

	e, err := d.Store.GetEntry(context.Background(), "alice", 1)
	if err != nil {
		t.Fatal(err)
	}
	if e.Content != "Updated content" || strings.Join(e.Tags, ",") != "revised" {
		t.Errorf("Unexpected updated entry: %+v", e)
	}
	if e.UpdatedAt == nil {
		t.Error("Expected UpdatedAt to be set")
	}
}

func TestJournal_UpdateValidation(t *testing.T) {
	c, _ := newTestServer(t)
	c.Register("alice", "secret123")
	addEntry(t, c, "Original content")

	form := entryValues("")
	w := c.PostForm("/journal/edit/1", form)

	testutil.AssertRedirect(t, w, "/journal/edit/1")
	assertFlash(t, c, session.FlashError, "Please fill in all required fields.")
}

func TestJournal_Delete(t *testing.T) {
	c, d := newTestServer(t)
	c.Register("alice", "secret123")
	addEntry(t, c, "Short lived")

	w := c.PostForm("/journal/delete/1", nil)

	testutil.AssertRedirect(t, w, "/journal")
	assertFlash(t, c, session.FlashSuccess, "Entry deleted successfully!")
	if _, err := d.Store.GetEntry(context.Background(), "alice", 1); err == nil {
		t.Error("Expected entry to be deleted")
	}
}

func TestJournal_EntryNotFound(t *testing.T) {
	testCases := []struct {
		name   string
		method string
		path   string
	}{
		{"edit missing", "GET", "/journal/edit/99"},
		{"edit non-numeric", "GET", "/journal/edit/abc"},
		{"edit negative", "GET", "/journal/edit/-1"},
		{"update missing", "POST", "/journal/edit/99"},
		{"delete missing", "POST", "/journal/delete/99"},
		{"delete non-numeric", "POST", "/journal/delete/abc"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestServer(t)
			c.Register("alice", "secret123")

			if tc.method == "POST" {
				testutil.AssertRedirect(t, c.PostForm(tc.path, entryValues("x")), "/journal")
			} else {
				testutil.AssertRedirect(t, c.Get(tc.path), "/journal")
			}
			assertFlash(t, c, session.FlashError, "Entry not found.")
		})
	}
}

func TestJournal_UsersAreIsolated(t *testing.T) {
	alice, d := newTestServer(t)
	alice.Register("alice", "secret123")
	addEntry(t, alice, "Alice's private thoughts")

	bob := testutil.NewClient(t, alice.Handler(), d.Sessions)
	bob.Register("bob", "secret456")

	w := bob.Get("/journal")
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertBodyNotContains(t, w, "private thoughts")

	testutil.AssertRedirect(t, bob.Get("/journal/edit/1"), "/journal")
	assertFlash(t, bob, session.FlashError, "Entry not found.")

	testutil.AssertRedirect(t, bob.PostForm("/journal/edit/1", entryValues("hijacked")), "/journal")
	testutil.AssertRedirect(t, bob.PostForm("/journal/delete/1", nil), "/journal")

	e, err := d.Store.GetEntry(context.Background(), "alice", 1)
	if err != nil {
		t.Fatalf("Expected alice's entry to survive: %v", err)
	}
	if e.Content != "Alice's private thoughts" {
		t.Errorf("Expected alice's entry unchanged, got %q", e.Content)
	}

	w = bob.Get("/journal/export")
	var exported []models.Entry
	testutil.AssertJSON(t, w, &exported)
	if len(exported) != 0 {
		t.Errorf("Expected bob's export to be empty, got %d entries", len(exported))
	}
}

func TestJournal_Export(t *testing.T) {
	c, _ := newTestServer(t)
	c.Register("alice", "secret123")
	addEntry(t, c, "one")
	addEntry(t, c, "two")

	w := c.Get("/journal/export")

	testutil.AssertStatus(t, w, http.StatusOK)
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Unexpected Content-Type %q", w.Header().Get("Content-Type"))
	}
	if d := w.Header().Get("Content-Disposition"); !strings.HasPrefix(d, `attachment; filename="journal_alice_`) {
		t.Errorf("Unexpected Content-Disposition %q", d)
	}

	var entries []models.Entry
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	// Newest first
	if entries[0].Content != "two" || entries[1].Content != "one" {
		t.Errorf("Unexpected order: %q, %q", entries[0].Content, entries[1].Content)
	}
	for _, e := range entries {
		if e.Username != "alice" {
			t.Errorf("Unexpected owner %q", e.Username)
		}
	}
}

func TestJournal_IDsAfterDelete(t *testing.T) {
	c, d := newTestServer(t)
	c.Register("alice", "secret123")
	for i := 1; i <= 3; i++ {
		addEntry(t, c, fmt.Sprintf("entry %d", i))
	}
	testutil.AssertRedirect(t, c.PostForm("/journal/delete/2", nil), "/journal")
	addEntry(t, c, "entry 4")

	entries, _ := d.Store.ListEntries(context.Background(), "alice", store.Filter{})
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	if fmt.Sprint(ids) != "[4 3 1]" {
		t.Errorf("Expected ids [4 3 1], got %v", ids)
	}
}
