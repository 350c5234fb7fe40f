// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package session keeps per-visitor state on the server side.
//
// A visitor holds only an opaque session id cookie. The session records the
// logged-in journal user, which downloads the shared password has unlocked,
// the CSRF token for forms and pending flash messages. Sessions live in
// memory and do not survive a restart; the signed remember-me cookie is what
// carries a journal login across restarts.
package session
