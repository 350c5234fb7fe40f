// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dr-Payne25/GVisit/auth"
	"github.com/Dr-Payne25/GVisit/backup"
	"github.com/Dr-Payne25/GVisit/cliparse"
	"github.com/Dr-Payne25/GVisit/middleware"
	"github.com/Dr-Payne25/GVisit/session"
	"github.com/Dr-Payne25/GVisit/store"
	"github.com/Dr-Payne25/GVisit/views"
)

// maxFormBytes bounds a form body; entry content is at most 10000 characters
const maxFormBytes = 256 << 10

// Deps are shared by every handler
type Deps struct {
	Config   cliparse.Config
	Store    store.Store
	Sessions *session.Manager
	Views    *views.Renderer
	Backup   *backup.Service
	Limiter  *middleware.LoginLimiter
}

// SessionHandlerFunc is an http.HandlerFunc that also receives the visitor's session
type SessionHandlerFunc func(w http.ResponseWriter, r *http.Request, s *session.Session)

// WithSession loads the session and, for POST requests, checks the form's
// CSRF token against it before calling next
func (d Deps) WithSession(next SessionHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := d.Sessions.Load(w, r)

		if r.Method == http.MethodPost {
			r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Bad Request", http.StatusBadRequest)
				return
			}
			if d.Config.CSRFEnabled && !d.Sessions.ValidCSRF(s, r.PostForm.Get("csrf_token")) {
				slog.Warn("csrf token mismatch",
					"path", r.URL.Path,
					"client", auth.HashIP(middleware.GetClientIP(r, d.Config.TrustProxy), d.Config.SecretKey),
					"request_id", middleware.RequestID(r.Context()),
				)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
		}

		next(w, r, s)
	}
}

// render shows page with the session's pending flashes
func (d Deps) render(w http.ResponseWriter, status int, s *session.Session, page, title string, data any) {
	flashes := s.PopFlashes()
	d.Sessions.Save(s)

	var user string
	if s.LoggedIn() {
		user = auth.DisplayName(s.Username)
	}
	d.Views.Render(w, status, page, views.Page{
		Title:     title,
		CSRFToken: s.CSRFToken,
		Flashes:   flashes,
		User:      user,
		Data:      data,
	})
}

func (d Deps) redirect(w http.ResponseWriter, r *http.Request, s *session.Session, url string) {
	d.Sessions.Save(s)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (d Deps) flashRedirect(w http.ResponseWriter, r *http.Request, s *session.Session, kind, message, url string) {
	s.AddFlash(kind, message)
	d.redirect(w, r, s, url)
}

// allowLogin applies the per-client login limiter
func (d Deps) allowLogin(r *http.Request, form string) bool {
	if d.Limiter == nil || d.Limiter.Allow(r) {
		return true
	}
	middleware.LoginRejections.WithLabelValues(form, "throttled").Inc()
	slog.Warn("login throttled",
		"form", form,
		"client", auth.HashIP(middleware.GetClientIP(r, d.Config.TrustProxy), d.Config.SecretKey),
	)
	return false
}
