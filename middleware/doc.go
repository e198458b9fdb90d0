// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging and Metrics

	mux.HandleFunc("GET /rounds", middleware.WithLogging(middleware.WithMetrics(m, handler)))

WithLogging logs method, path, status, client IP and duration_ms.
WithMetrics feeds the request latency histogram; a nil *metrics.Metrics
is allowed.

# Authentication

RequireAuth expects "Authorization: Bearer <token>" and stores the
resolved user in the request context:

	user, ok := middleware.CurrentUser(r.Context())

RequireRole answers 403 unless the current user has the given role.

# Rate Limiting

RateLimit consults a ratelimit.Limiter keyed by user ID (client IP for
anonymous requests). Rejections get 429 and a Retry-After header in
whole seconds, rounded up.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(cfg.FrontendURL, mux),
	}

Only the configured origin is echoed back. Preflight requests get 204.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Checks X-Forwarded-For, then X-Real-IP, then RemoteAddr.
*/
package middleware
