// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connections

Open connects to PostgreSQL (lib/pq) or SQLite (modernc.org/sqlite):

	conn, err := db.Open(db.TypeSQLite, "file:goose.db")

SQLite connections are limited to one open connection, with foreign keys
on and a 5s busy timeout.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - app_user: Participants with role and bcrypt hash
  - round: Time bounds and running tap/point totals
  - round_stat: Taps and points per participant per round

# Relationships

	round 1──* round_stat
	app_user 1──* round_stat
*/
package db
