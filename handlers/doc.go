// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Goose Tap API.

# Handler Types

Each handler is a struct holding the services it calls:

  - AuthHandler: Login and first-use registration
  - RoundHandler: Round scheduling, listing, detail and taps
  - HealthHandler: Health, liveness and readiness probes

Handlers are created via constructor functions:

	roundHandler := handlers.NewRoundHandler(roundService, engine)

Handlers that need the caller read it with middleware.CurrentUser; the
router puts them behind middleware.RequireAuth.

# Round Lifecycle

A round's status is derived from its bounds at request time:

	cooldown  → now < start
	active    → start ≤ now < end
	completed → now ≥ end

	POST /rounds          → CreateRound (admin, 201)
	GET  /rounds          → ListRounds (active, cooldown, completed)
	GET  /rounds/{id}     → GetRound (myStats, winner once completed)
	POST /rounds/{id}/tap → Tap

Taps are accepted until one grace period past the end, so taps sent in
the last instant of a round still count.

# Error Mapping

Game errors map to statuses in one place:

	game.ErrRoundNotFound  → 404
	game.ErrRoundNotActive → 400
	game.ErrStartInPast    → 400
	game.ErrStartTooFar    → 400
	game.ErrRateLimited    → 429
	game.ErrConflict       → 409

Anything else is logged and answered with 500; internal error text never
reaches the client.
*/
package handlers
