// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

JSON field names are camelCase to match the web client.

# Request Types

  - LoginRequest: username, password
  - CreateRoundRequest: startTime (RFC 3339)

# Response Types

  - LoginResponse: accessToken, user
  - RoundView: one round as seen by the caller, with myStats and,
    for completed rounds only, winner (null when nobody is eligible)
  - RoundsResponse: rounds
  - TapResult: taps, points, earnedPoints, isBonus
  - HealthResponse, DetailedHealthResponse, ProbeResponse
  - ErrorResponse: error, message

# Domain Types

  - User: participant with bcrypt hash and role
  - Round: time bounds and running totals
  - ParticipantStat: one participant's taps and points in one round
  - TapRecord: what one committed tap changed

# Constants

Round status (derived, never stored):

	StatusCooldown  = "cooldown"
	StatusActive    = "active"
	StatusCompleted = "completed"

Roles:

	RolePlayer = "player"
	RoleGhost  = "ghost"
	RoleAdmin  = "admin"
*/
package models
