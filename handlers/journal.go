// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Dr-Payne25/GVisit/middleware"
	"github.com/Dr-Payne25/GVisit/models"
	"github.com/Dr-Payne25/GVisit/session"
	"github.com/Dr-Payne25/GVisit/store"
	"github.com/Dr-Payne25/GVisit/views"
)

const msgEntryNotFound = "Entry not found."

type JournalHandler struct {
	Deps
}

func NewJournalHandler(d Deps) *JournalHandler {
	return &JournalHandler{Deps: d}
}

// requireUser redirects anonymous visitors to the login page
func (h *JournalHandler) requireUser(w http.ResponseWriter, r *http.Request, s *session.Session) bool {
	if s.LoggedIn() {
		return true
	}
	h.flashRedirect(w, r, s, session.FlashWarning, "Please log in to access your journal.", "/journal_login")
	return false
}

// entryID parses the id path value. Ids that can not name an entry are
// treated like entries that do not exist.
func (h *JournalHandler) entryID(w http.ResponseWriter, r *http.Request, s *session.Session) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		h.flashRedirect(w, r, s, session.FlashError, msgEntryNotFound, "/journal")
		return 0, false
	}
	return id, true
}

// storeFailed handles errors from the journal store. Missing and foreign
// entries get the same message.
func (h *JournalHandler) storeFailed(w http.ResponseWriter, r *http.Request, s *session.Session, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		h.flashRedirect(w, r, s, session.FlashError, msgEntryNotFound, "/journal")
		return
	}
	slog.Error("journal store failed", "op", op, "user", s.Username, "error", err)
	h.flashRedirect(w, r, s, session.FlashError, msgTryAgain, "/journal")
}

// List handles GET /journal
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if !h.requireUser(w, r, s) {
		return
	}

	q := r.URL.Query()
	filter := store.Filter{
		Query: q.Get("q"),
		Tag:   q.Get("tag"),
		Mood:  q.Get("mood"),
		Focus: q.Get("focus"),
	}

	ctx := r.Context()
	entries, err := h.Store.ListEntries(ctx, s.Username, filter)
	if err != nil {
		h.listFailed(w, s, err)
		return
	}
	total := len(entries)
	if !filter.IsZero() {
		all, err := h.Store.ListEntries(ctx, s.Username, store.Filter{})
		if err != nil {
			h.listFailed(w, s, err)
			return
		}
		total = len(all)
	}
	tags, err := h.Store.Tags(ctx, s.Username)
	if err != nil {
		h.listFailed(w, s, err)
		return
	}

	h.render(w, http.StatusOK, s, views.PageJournal, "Journal", views.JournalData{
		Entries:       entries,
		Total:         total,
		Query:         filter.Query,
		Tag:           filter.Tag,
		Mood:          filter.Mood,
		Focus:         filter.Focus,
		Filtered:      !filter.IsZero(),
		Tags:          tags,
		BackupEnabled: h.Backup.Enabled(),
		Form:          views.NewEntryForm(models.Entry{Focus: models.FocusDailyReflection}),
	})
}

func (h *JournalHandler) listFailed(w http.ResponseWriter, s *session.Session, err error) {
	slog.Error("failed to list journal entries", "user", s.Username, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// Add handles POST /journal
func (h *JournalHandler) Add(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if !h.requireUser(w, r, s) {
		return
	}

	form := parseEntryForm(r.PostForm)
	if msg := form.validate(); msg != "" {
		h.flashRedirect(w, r, s, session.FlashError, msg, "/journal")
		return
	}

	entry, err := h.Store.AddEntry(r.Context(), s.Username, form.input())
	if err != nil {
		h.storeFailed(w, r, s, "add", err)
		return
	}

	slog.Info("journal entry added", "user", s.Username, "entry_id", entry.ID)
	h.flashRedirect(w, r, s, session.FlashSuccess, "Journal entry added successfully!", "/journal")
}

// EditForm handles GET /journal/edit/{id}
func (h *JournalHandler) EditForm(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if !h.requireUser(w, r, s) {
		return
	}
	id, ok := h.entryID(w, r, s)
	if !ok {
		return
	}

	entry, err := h.Store.GetEntry(r.Context(), s.Username, id)
	if err != nil {
		h.storeFailed(w, r, s, "get", err)
		return
	}
	h.render(w, http.StatusOK, s, views.PageEditEntry, "Edit entry", views.EditData{
		Entry: entry,
		Form:  views.NewEntryForm(entry),
	})
}

// Update handles POST /journal/edit/{id}
func (h *JournalHandler) Update(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if !h.requireUser(w, r, s) {
		return
	}
	id, ok := h.entryID(w, r, s)
	if !ok {
		return
	}

	form := parseEntryForm(r.PostForm)
	if msg := form.validate(); msg != "" {
		h.flashRedirect(w, r, s, session.FlashError, msg, fmt.Sprintf("/journal/edit/%d", id))
		return
	}

	if _, err := h.Store.UpdateEntry(r.Context(), s.Username, id, form.input()); err != nil {
		h.storeFailed(w, r, s, "update", err)
		return
	}

	slog.Info("journal entry updated", "user", s.Username, "entry_id", id)
	h.flashRedirect(w, r, s, session.FlashSuccess, "Entry updated successfully!", "/journal")
}

// Delete handles POST /journal/delete/{id}
func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if !h.requireUser(w, r, s) {
		return
	}
	id, ok := h.entryID(w, r, s)
	if !ok {
		return
	}

	if err := h.Store.DeleteEntry(r.Context(), s.Username, id); err != nil {
		h.storeFailed(w, r, s, "delete", err)
		return
	}

	slog.Info("journal entry deleted", "user", s.Username, "entry_id", id)
	h.flashRedirect(w, r, s, session.FlashSuccess, "Entry deleted successfully!", "/journal")
}

// Export handles GET /journal/export
func (h *JournalHandler) Export(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if !h.requireUser(w, r, s) {
		return
	}

	entries, err := h.Store.ListEntries(r.Context(), s.Username, store.Filter{})
	if err != nil {
		h.listFailed(w, s, err)
		return
	}
	if entries == nil {
		entries = []models.Entry{}
	}

	filename := fmt.Sprintf("journal_%s_%s.json", s.Username, time.Now().Format("20060102"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	middleware.JSONResponse(w, http.StatusOK, entries)
}
