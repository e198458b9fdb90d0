// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"time"

	"github.com/danielhkuo/goose-tap/models"
)

// ResolveStatus maps a round's time bounds to its phase at now.
// The active interval is [start, end).
func ResolveStatus(start, end, now time.Time) models.RoundStatus {
	if now.Before(start) {
		return models.StatusCooldown
	}
	if now.Before(end) {
		return models.StatusActive
	}
	return models.StatusCompleted
}

// statusRank orders statuses for listing: active, cooldown, completed.
func statusRank(s models.RoundStatus) int {
	switch s {
	case models.StatusActive:
		return 0
	case models.StatusCooldown:
		return 1
	default:
		return 2
	}
}
