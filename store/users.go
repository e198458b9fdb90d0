// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/goose-tap/auth"
	"github.com/danielhkuo/goose-tap/models"
)

// GetUserByUsername implements auth.UserStore.
func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.getUser(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM app_user
		WHERE username = $1
	`, username)
}

// GetUserByID implements auth.UserStore.
func (s *SQLStore) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return s.getUser(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM app_user
		WHERE id = $1
	`, id)
}

func (s *SQLStore) getUser(ctx context.Context, query string, arg string) (models.User, error) {
	var u models.User
	var role string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	u.Role = models.Role(role)
	return u, nil
}

// CreateUser implements auth.UserStore. A duplicate username yields
// auth.ErrUsernameTaken.
func (s *SQLStore) CreateUser(ctx context.Context, u models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_user (id, username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Username, u.PasswordHash, string(u.Role), u.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return auth.ErrUsernameTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}
