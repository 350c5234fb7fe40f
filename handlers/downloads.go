// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Dr-Payne25/GVisit/auth"
	"github.com/Dr-Payne25/GVisit/middleware"
	"github.com/Dr-Payne25/GVisit/models"
	"github.com/Dr-Payne25/GVisit/session"
	"github.com/Dr-Payne25/GVisit/views"
)

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

type DownloadHandler struct {
	Deps
}

func NewDownloadHandler(d Deps) *DownloadHandler {
	return &DownloadHandler{Deps: d}
}

// lookup resolves the ppt_id path value against the whitelist, redirecting
// home when it is unknown
func (h *DownloadHandler) lookup(w http.ResponseWriter, r *http.Request, s *session.Session) (models.Download, bool) {
	d, ok := models.LookupDownload(r.PathValue("ppt_id"))
	if !ok {
		h.flashRedirect(w, r, s, session.FlashError, "Invalid presentation ID.", "/")
	}
	return d, ok
}

// path is the file on disk for d. Only whitelisted names reach the filesystem.
func (h *DownloadHandler) path(d models.Download) string {
	return filepath.Join(h.Config.DownloadsDir, d.FileName)
}

// LoginForm handles GET /login/{ppt_id}
func (h *DownloadHandler) LoginForm(w http.ResponseWriter, r *http.Request, s *session.Session) {
	d, ok := h.lookup(w, r, s)
	if !ok {
		return
	}
	h.render(w, http.StatusOK, s, views.PageLogin, d.Title, views.DownloadData{Download: d})
}

// Login handles POST /login/{ppt_id}
func (h *DownloadHandler) Login(w http.ResponseWriter, r *http.Request, s *session.Session) {
	d, ok := h.lookup(w, r, s)
	if !ok {
		return
	}

	if !h.allowLogin(r, "download") {
		s.AddFlash(session.FlashError, "Too many attempts. Please wait a minute and try again.")
		h.render(w, http.StatusTooManyRequests, s, views.PageLogin, d.Title, views.DownloadData{Download: d})
		return
	}

	if err := auth.CheckSharedPassword(r.PostForm.Get("password"), h.Config.Password); err != nil {
		middleware.LoginRejections.WithLabelValues("download", "password").Inc()
		s.AddFlash(session.FlashError, "Incorrect password. Please try again.")
		h.render(w, http.StatusOK, s, views.PageLogin, d.Title, views.DownloadData{Download: d})
		return
	}

	s.GrantDownload(d.ID)
	slog.Info("download unlocked", "ppt_id", d.ID)
	h.redirect(w, r, s, "/powerpoint/"+d.ID)
}

// Page handles GET /powerpoint/{ppt_id}
func (h *DownloadHandler) Page(w http.ResponseWriter, r *http.Request, s *session.Session) {
	d, ok := h.lookup(w, r, s)
	if !ok {
		return
	}
	if !s.CanDownload(d.ID) {
		h.flashRedirect(w, r, s, session.FlashWarning, "You need to enter the password to view this page.", "/login/"+d.ID)
		return
	}

	size := int64(-1)
	if info, err := os.Stat(h.path(d)); err == nil {
		size = info.Size()
	}
	h.render(w, http.StatusOK, s, views.PagePowerpoint, d.Title, views.DownloadData{Download: d, Size: size})
}

// Download handles GET /download_ppt/{ppt_id}
func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request, s *session.Session) {
	d, ok := h.lookup(w, r, s)
	if !ok {
		return
	}
	if !s.CanDownload(d.ID) {
		h.flashRedirect(w, r, s, session.FlashWarning, "You need to enter the password to download this file.", "/login/"+d.ID)
		return
	}

	f, err := os.Open(h.path(d))
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("download missing on disk", "ppt_id", d.ID)
		h.flashRedirect(w, r, s, session.FlashError, "File not found on server.", "/powerpoint/"+d.ID)
		return
	}
	if err != nil {
		slog.Error("failed to open download", "ppt_id", d.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		slog.Error("failed to stat download", "ppt_id", d.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("download served", "ppt_id", d.ID, "bytes", info.Size())
	w.Header().Set("Content-Type", pptxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.FileName))
	http.ServeContent(w, r, d.FileName, info.ModTime(), f)
}
