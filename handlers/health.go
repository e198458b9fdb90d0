// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/goose-tap/middleware"
	"github.com/danielhkuo/goose-tap/models"
)

// pingTimeout bounds the database check of the health probes
const pingTimeout = 2 * time.Second

type HealthHandler struct {
	db      *sql.DB
	started time.Time
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}

// Detailed handles GET /health/detailed
func (h *HealthHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	status, database := "ok", "connected"
	if err := h.ping(r.Context()); err != nil {
		slog.Warn("health check database ping failed", "error", err)
		status, database = "degraded", "disconnected"
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	middleware.JSONResponse(w, http.StatusOK, models.DetailedHealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Database:  database,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		HeapUsed:  humanize.IBytes(mem.HeapAlloc),
		HeapTotal: humanize.IBytes(mem.HeapSys),
	})
}

// Liveness handles GET /health/liveness
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.ProbeResponse{Status: "alive"})
}

// Readiness handles GET /health/readiness
// Ready means the database answers a ping
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if err := h.ping(r.Context()); err != nil {
		slog.Warn("readiness check failed", "error", err)
		middleware.JSONResponse(w, http.StatusServiceUnavailable, models.ProbeResponse{Status: "not ready"})
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ProbeResponse{Status: "ready"})
}

func (h *HealthHandler) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return h.db.PingContext(ctx)
}
