// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Each request gets a uuid request id, returned in the X-Request-ID header and
available to handlers via RequestID(ctx). Completion is logged with method,
path, status and duration_ms.

# Metrics

WithMetrics counts requests and observes latency per route pattern. The
collectors register with the default Prometheus registry and are served by
promhttp at /metrics. LoginRejections is exported for the login handlers.

# Security Headers

	server := http.Server{
		Handler: middleware.SecurityHeaders(mux),
	}

Sets nosniff, X-Frame-Options DENY, a same-origin referrer policy and a
Content-Security-Policy that only allows same-origin resources.

# Login Throttling

LoginLimiter allows a fixed number of login attempts per client per minute.
Clients are keyed by auth.HashIP of GetClientIP, never by the raw address.
Forwarding headers are ignored unless the limiter is built with trustProxy,
so a client can not mint fresh buckets by rotating X-Forwarded-For.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
*/
package middleware
