// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Goose Tap API server.

Goose Tap is a timed tap contest. Admins schedule rounds; while a round is
active, authenticated participants tap as fast as the rate limiter allows.
Every tap scores one point, every 11th tap of a round (counted across all
participants) scores ten. Ghost participants tap but never score.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=file:goose.db JWT_SECRET=dev go run .

Or against PostgreSQL:

	go run . -t postgres -d "postgres://..." -jwt-secret dev

A .env file in the working directory is loaded first.

# Configuration

Required settings:

  - DATABASE_URL (-d): database connection string
  - JWT_SECRET (-jwt-secret): token signing secret

Optional settings include PORT (default 3000), DATABASE_TYPE (sqlite or
postgres), the game rules, and a TOML config file (-c). See package
cliparse for the full list. LOG_FORMAT=json switches to JSON logs and
LOG_LEVEL sets the level.

# Architecture

  - handlers: HTTP request handlers (auth, rounds, taps, health)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, auth, rate limiting, JSON helpers
  - game: Round status, tap scoring and winner resolution
  - store: SQL persistence and the atomic tap transaction
  - ratelimit: Fixed-window per-participant limiter
  - metrics: Prometheus collectors served at /metrics
  - models: Request/response and domain types
  - auth: Login, bcrypt passwords and JWT access tokens
  - db: Connection setup and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
