// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes for GVisit.

# Route Registration

NewRouter returns the complete handler, wrapped in security headers:

	handler := router.NewRouter(deps)

Every route is wrapped with request logging and Prometheus metrics. HTML
routes also go through Deps.WithSession for the session and CSRF check.

# Endpoints

Ops:

	GET /health  - JSON status, backup and store kind
	GET /metrics - Prometheus exposition

Downloads (shared password):

	GET  /login/{ppt_id}        - Password form
	POST /login/{ppt_id}        - Unlock for this session
	GET  /powerpoint/{ppt_id}   - Download page
	GET  /download_ppt/{ppt_id} - File as attachment

Journal accounts:

	GET/POST /journal_register
	GET/POST /journal_login
	POST     /logout_journal

Journal (logged in):

	GET  /journal             - Entries, filters (q, tag, mood, focus) and new entry form
	POST /journal             - Add entry
	GET  /journal/edit/{id}   - Edit form
	POST /journal/edit/{id}   - Update entry
	POST /journal/delete/{id} - Delete entry
	GET  /journal/export      - Own entries as JSON

Any other GET renders the 404 page; other methods on unknown paths get 405.
*/
package router
