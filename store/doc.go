// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package store persists users, rounds and round stats with database/sql.
// SQLStore implements both game.Store and auth.UserStore against either
// PostgreSQL or SQLite. Lock and serialization failures surface as
// game.ErrConflict.
package store
