// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Dr-Payne25/GVisit/models"
	"github.com/Dr-Payne25/GVisit/session"
)

// Page names
const (
	PageIndex           = "index"
	PageLogin           = "login"
	PagePowerpoint      = "powerpoint"
	PageJournal         = "journal"
	PageJournalLogin    = "journal_login"
	PageJournalRegister = "journal_register"
	PageEditEntry       = "edit_entry"
	PageNotFound        = "404"
)

//go:embed templates/*.html
var templateFS embed.FS

// shared templates are parsed into every page
var shared = []string{"templates/layout.html", "templates/entry_form.html"}

var funcs = template.FuncMap{
	"bytes": func(n int64) string {
		if n < 0 {
			return "unknown size"
		}
		return humanize.Bytes(uint64(n))
	},
	"ago": func(t *time.Time) string {
		if t == nil || t.IsZero() {
			return ""
		}
		return humanize.Time(*t)
	},
	"comma":     func(n int) string { return humanize.Comma(int64(n)) },
	"inc":       func(i int) int { return i + 1 },
	"moodLabel": models.MoodLabel,
	"join":      strings.Join,
}

// Page is the data every template receives.
type Page struct {
	Title     string
	CSRFToken string
	Flashes   []session.Flash
	// User is the display name of the logged-in journal user, if any
	User string
	Data any
}

type IndexData struct {
	Downloads []models.Download
}

type DownloadData struct {
	Download models.Download
	// Size is -1 when the file is missing on the server
	Size int64
}

type JournalData struct {
	Entries       []models.Entry
	Total         int
	Query         string
	Tag           string
	Mood          string
	Focus         string
	Filtered      bool
	Tags          []models.TagCount
	BackupEnabled bool
	Form          EntryForm
}

type EditData struct {
	Entry models.Entry
	Form  EntryForm
}

// EntryForm holds the choices and current values of the entry form.
type EntryForm struct {
	Focuses      []string
	Prompts      map[string]string
	Moods        []models.MoodOption
	EnergyLevels []string
	Gratitude    []string
	Tags         string
	Values       models.Entry
}

// NewEntryForm returns an entry form prefilled from e.
func NewEntryForm(e models.Entry) EntryForm {
	gratitude := make([]string, models.MaxGratitudeItems)
	copy(gratitude, e.Gratitude)
	return EntryForm{
		Focuses:      models.JournalFocuses,
		Prompts:      models.FocusPrompts,
		Moods:        models.MoodOptions,
		EnergyLevels: models.EnergyLevels,
		Gratitude:    gratitude,
		Tags:         strings.Join(e.Tags, ", "),
		Values:       e,
	}
}

type AccountData struct {
	Username string
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page together with the shared layout
func New() (*Renderer, error) {
	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, shared...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range names {
		if slices.Contains(shared, name) {
			continue
		}
		page := strings.TrimSuffix(strings.TrimPrefix(name, "templates/"), ".html")
		clone, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFS(templateFS, name); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		r.pages[page] = clone
	}
	return r, nil
}

// Render writes page with the given status. Output is buffered so a
// template error never leaves a half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data Page) {
	tmpl, ok := r.pages[page]
	if !ok {
		slog.Error("unknown page", "page", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render page", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("failed to write page", "page", page, "error", err)
	}
}
