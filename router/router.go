// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/goose-tap/auth"
	"github.com/danielhkuo/goose-tap/game"
	"github.com/danielhkuo/goose-tap/handlers"
	"github.com/danielhkuo/goose-tap/metrics"
	"github.com/danielhkuo/goose-tap/middleware"
	"github.com/danielhkuo/goose-tap/models"
	"github.com/danielhkuo/goose-tap/ratelimit"
)

// Deps are the components the routes are wired to. Metrics may be nil.
type Deps struct {
	DB      *sql.DB
	Auth    *auth.Service
	Rounds  *game.Service
	Engine  *game.Engine
	Limiter *ratelimit.Limiter
	Metrics *metrics.Metrics
}

func NewRouter(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(d.Auth)
	roundHandler := handlers.NewRoundHandler(d.Rounds, d.Engine)
	healthHandler := handlers.NewHealthHandler(d.DB)

	public := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.WithMetrics(d.Metrics, h))
	}
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return public(middleware.RequireAuth(d.Auth, h))
	}

	// Health checks
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /health/detailed", healthHandler.Detailed)
	mux.HandleFunc("GET /health/liveness", healthHandler.Liveness)
	mux.HandleFunc("GET /health/readiness", healthHandler.Readiness)
	mux.Handle("GET /metrics", d.Metrics.Handler())

	// Auth (public)
	mux.HandleFunc("POST /auth/login", public(authHandler.Login))

	// Rounds (bearer token)
	mux.HandleFunc("GET /rounds", authed(roundHandler.ListRounds))
	mux.HandleFunc("POST /rounds", authed(middleware.RequireRole(models.RoleAdmin, roundHandler.CreateRound)))
	mux.HandleFunc("GET /rounds/{id}", authed(roundHandler.GetRound))
	mux.HandleFunc("POST /rounds/{id}/tap", authed(middleware.RateLimit(d.Limiter, d.Metrics, roundHandler.Tap)))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("goose-tap API v1"))
	})

	return mux
}
