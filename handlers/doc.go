// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP handlers for GVisit.

# Handler Types

Each handler is a struct embedding Deps (config, store, sessions, views,
backup service and login limiter):

  - PageHandler: home page, 404 page and health check
  - DownloadHandler: shared-password gate for the two presentations
  - AccountHandler: journal registration, login and logout
  - JournalHandler: entry list, add, edit, delete and export

Handlers are created via constructor functions that accept Deps:

	journal := handlers.NewJournalHandler(deps)

# Sessions and CSRF

HTML handlers take the visitor's session as a third argument. Deps.WithSession
adapts them to http.HandlerFunc; on POST it parses the form and rejects the
request with 403 unless csrf_token matches the session.

	mux.HandleFunc("POST /journal", deps.WithSession(journal.Add))

# Responses

Form handlers follow post/redirect/get: the outcome is stored as a flash
message and the browser is sent to the next page with 303 See Other. Failed
password checks re-render the form instead so the typed username survives.

Journal handlers only ever pass the session's username to the store, so
entries of other users are indistinguishable from missing ones.
*/
package handlers
