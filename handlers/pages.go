// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/Dr-Payne25/GVisit/middleware"
	"github.com/Dr-Payne25/GVisit/models"
	"github.com/Dr-Payne25/GVisit/session"
	"github.com/Dr-Payne25/GVisit/views"
)

type PageHandler struct {
	Deps
}

func NewPageHandler(d Deps) *PageHandler {
	return &PageHandler{Deps: d}
}

// Home handles GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request, s *session.Session) {
	downloads := make([]models.Download, 0, len(models.DownloadIDs))
	for _, id := range models.DownloadIDs {
		downloads = append(downloads, models.Downloads[id])
	}
	h.render(w, http.StatusOK, s, views.PageIndex, "Home", views.IndexData{Downloads: downloads})
}

// NotFound renders the 404 page for every unmatched route
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request, s *session.Session) {
	h.render(w, http.StatusNotFound, s, views.PageNotFound, "Not found", nil)
}

// Health handles GET /health
func (h *PageHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.HealthResponse{
		Status: "healthy",
		Backup: h.Backup.Enabled(),
		Store:  h.Store.Kind(),
	})
}
