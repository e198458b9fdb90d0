// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/goose-tap/auth"
	"github.com/danielhkuo/goose-tap/middleware"
	"github.com/danielhkuo/goose-tap/models"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{auth: svc}
}

// Login handles POST /auth/login
// Signs an existing user in, or registers the username on first use
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidUsername), errors.Is(err, auth.ErrInvalidPassword):
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrInvalidCredentials):
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid username or password")
		default:
			slog.Error("failed to log in", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		}
		return
	}

	slog.Info("user logged in", "user_id", resp.User.ID, "role", resp.User.Role)
	middleware.JSONResponse(w, http.StatusOK, resp)
}
