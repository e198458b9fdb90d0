// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/goose-tap/game"
	"github.com/danielhkuo/goose-tap/middleware"
	"github.com/danielhkuo/goose-tap/models"
)

type RoundHandler struct {
	rounds *game.Service
	engine *game.Engine
}

func NewRoundHandler(rounds *game.Service, engine *game.Engine) *RoundHandler {
	return &RoundHandler{rounds: rounds, engine: engine}
}

// CreateRound handles POST /rounds (admin only)
func (h *RoundHandler) CreateRound(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRoundRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.StartTime.IsZero() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "startTime is required")
		return
	}

	view, err := h.rounds.CreateRound(r.Context(), req.StartTime)
	if err != nil {
		writeGameError(w, err, "Failed to create round")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, view)
}

// ListRounds handles GET /rounds
func (h *RoundHandler) ListRounds(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	views, err := h.rounds.ListRounds(r.Context(), user.ID)
	if err != nil {
		writeGameError(w, err, "Failed to list rounds")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.RoundsResponse{Rounds: views})
}

// GetRound handles GET /rounds/{id}
func (h *RoundHandler) GetRound(w http.ResponseWriter, r *http.Request) {
	roundID := r.PathValue("id")
	if roundID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "round id is required")
		return
	}
	user, _ := middleware.CurrentUser(r.Context())

	view, err := h.rounds.GetRound(r.Context(), roundID, user.ID)
	if err != nil {
		writeGameError(w, err, "Failed to load round")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// Tap handles POST /rounds/{id}/tap
// Rate limiting happens in middleware before this runs
func (h *RoundHandler) Tap(w http.ResponseWriter, r *http.Request) {
	roundID := r.PathValue("id")
	if roundID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "round id is required")
		return
	}
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	result, err := h.engine.ProcessTap(r.Context(), roundID, user.ID, user.Role)
	if err != nil {
		writeGameError(w, err, "Failed to record tap")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, result)
}

// writeGameError maps game errors to HTTP statuses. Unknown errors are
// logged and reported as 500 with fallback as the message.
func writeGameError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, game.ErrRoundNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Round not found")
	case errors.Is(err, game.ErrRoundNotActive):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Round is not active")
	case errors.Is(err, game.ErrStartInPast):
		middleware.ErrorResponse(w, http.StatusBadRequest, "startTime must not be in the past")
	case errors.Is(err, game.ErrStartTooFar):
		middleware.ErrorResponse(w, http.StatusBadRequest, "startTime is too far in the future")
	case errors.Is(err, game.ErrRateLimited):
		middleware.ErrorResponse(w, http.StatusTooManyRequests, "Too many taps, slow down")
	case errors.Is(err, game.ErrConflict):
		middleware.ErrorResponse(w, http.StatusConflict, "Tap conflicted with another request, retry")
	default:
		slog.Error(fallback, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, fallback)
	}
}
