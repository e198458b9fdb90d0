// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Goose Tap API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(router.Deps{DB: db, Auth: authSvc, ...})

# Endpoints

Health (unlogged):

	GET /health            - Basic status
	GET /health/detailed   - Database, uptime and heap usage
	GET /health/liveness   - Process is up
	GET /health/readiness  - Database reachable (503 otherwise)
	GET /metrics           - Prometheus exposition

Auth (public):

	POST /auth/login - Log in, registering the username on first use

Rounds (requires Authorization: Bearer <token>):

	GET  /rounds          - All rounds, active first
	POST /rounds          - Schedule a round (admin only)
	GET  /rounds/{id}     - One round with caller stats and winner
	POST /rounds/{id}/tap - Tap (rate limited per participant)

# Middleware Order

Every non-health route is wrapped, outermost first, in WithLogging,
WithMetrics and RequireAuth. The tap route adds RateLimit inside
RequireAuth, so rejected taps never reach the store.
*/
package router
