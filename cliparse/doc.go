// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Each value is resolved in this order: CLI flag, environment variable,
optional TOML config file, built-in default. LoadEnvFile reads a .env
file into the environment first without overriding variables that are
already set.

# CLI Flags and Environment Variables

	-p                PORT                        3000
	-d                DATABASE_URL                (required)
	-t                DATABASE_TYPE               sqlite
	-c                CONFIG_FILE                 (none)
	-frontend-url     FRONTEND_URL                http://localhost:5173
	-jwt-secret       JWT_SECRET                  (required)
	-token-ttl        JWT_TTL                     24h
	-admin-username   ADMIN_USERNAME              admin
	-ghost-usernames  GHOST_USERNAMES             Никита
	-round-duration   ROUND_DURATION              60 (seconds)
	-bonus-divisor    BONUS_TAP_DIVISOR           11
	-bonus-points     BONUS_POINTS                10
	-regular-points   REGULAR_POINTS              1
	-grace-ms         GRACE_PERIOD_MS             1000
	-taps-per-second  RATE_LIMIT_TAPS_PER_SECOND  10
	-max-ahead        MAX_SCHEDULE_AHEAD          24h

# Config File

	[server]
	port = 3000
	frontend_url = "http://localhost:5173"

	[database]
	url = "file:goose.db"
	type = "sqlite"

	[auth]
	token_ttl = "24h"
	ghost_usernames = ["Никита"]

	[game]
	round_duration = 60
	bonus_divisor = 11

The JWT secret is never read from the file.

# Validation

ParseFlags returns an error when the database URL or JWT secret is
missing, when a number or duration does not parse, and when a game rule
is out of range (non-positive duration, divisor or rate; negative points
or grace period).

Config.Rules and Config.Auth convert the flat config into the settings
the game and auth packages take.
*/
package cliparse
