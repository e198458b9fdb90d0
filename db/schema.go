// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database types
const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// Open connects to the database of the given type and verifies the
// connection.
//
// SQLite gets a single pooled connection so every transaction runs
// exclusively; foreign keys and a busy timeout are enabled on it.
func Open(dbType, url string) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch dbType {
	case TypePostgres:
		conn, err = sql.Open("postgres", url)
	case TypeSQLite:
		conn, err = sql.Open("sqlite", sqliteDSN(url))
		if err == nil {
			conn.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// sqliteDSN appends the pragmas the store relies on unless the caller
// already set some.
func sqliteDSN(url string) string {
	if strings.Contains(url, "_pragma=") {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The DDL is valid for both PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

const schema = `
-- Participants
CREATE TABLE IF NOT EXISTS app_user (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'player' CHECK (role IN ('player', 'ghost', 'admin')),
    created_at TIMESTAMP NOT NULL
);

-- Rounds (status is derived from start_time/end_time, never stored)
CREATE TABLE IF NOT EXISTS round (
    id TEXT PRIMARY KEY,
    start_time TIMESTAMP NOT NULL,
    end_time TIMESTAMP NOT NULL,
    total_taps BIGINT NOT NULL DEFAULT 0 CHECK (total_taps >= 0),
    total_points BIGINT NOT NULL DEFAULT 0 CHECK (total_points >= 0),
    created_at TIMESTAMP NOT NULL,
    CHECK (start_time < end_time)
);

CREATE INDEX IF NOT EXISTS idx_round_start_time ON round(start_time);

-- Per-participant round statistics
CREATE TABLE IF NOT EXISTS round_stat (
    round_id TEXT NOT NULL REFERENCES round(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    taps BIGINT NOT NULL DEFAULT 0 CHECK (taps >= 0),
    points BIGINT NOT NULL DEFAULT 0 CHECK (points >= 0),
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (round_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_round_stat_user_id ON round_stat(user_id);
`
