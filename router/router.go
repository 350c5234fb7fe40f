// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dr-Payne25/GVisit/handlers"
	"github.com/Dr-Payne25/GVisit/middleware"
)

func NewRouter(deps handlers.Deps) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	pageHandler := handlers.NewPageHandler(deps)
	downloadHandler := handlers.NewDownloadHandler(deps)
	accountHandler := handlers.NewAccountHandler(deps)
	journalHandler := handlers.NewJournalHandler(deps)

	route := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(middleware.WithMetrics(pattern, h)))
	}
	page := func(pattern string, h handlers.SessionHandlerFunc) {
		route(pattern, deps.WithSession(h))
	}

	// Ops
	route("GET /health", pageHandler.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Home
	page("GET /{$}", pageHandler.Home)

	// Password-gated downloads
	page("GET /login/{ppt_id}", downloadHandler.LoginForm)
	page("POST /login/{ppt_id}", downloadHandler.Login)
	page("GET /powerpoint/{ppt_id}", downloadHandler.Page)
	page("GET /download_ppt/{ppt_id}", downloadHandler.Download)

	// Journal accounts
	page("GET /journal_register", accountHandler.RegisterForm)
	page("POST /journal_register", accountHandler.Register)
	page("GET /journal_login", accountHandler.LoginForm)
	page("POST /journal_login", accountHandler.Login)
	page("POST /logout_journal", accountHandler.Logout)

	// Journal
	page("GET /journal", journalHandler.List)
	page("POST /journal", journalHandler.Add)
	page("GET /journal/edit/{id}", journalHandler.EditForm)
	page("POST /journal/edit/{id}", journalHandler.Update)
	page("POST /journal/delete/{id}", journalHandler.Delete)
	page("GET /journal/export", journalHandler.Export)

	// Everything else
	page("GET /", pageHandler.NotFound)

	return middleware.SecurityHeaders(mux)
}
