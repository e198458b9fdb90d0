// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"sort"

	"github.com/danielhkuo/goose-tap/models"
)

// ResolveWinner picks the winner of a completed round from its full set of
// participant stats. Ghosts are never eligible. Returns nil when nobody is.
//
// Ranking: points descending, then taps ascending (fewer taps for the same
// score wins), then the earliest stat row. User ID is the last resort so
// the order stays total when two rows share a timestamp.
func ResolveWinner(stats []models.ParticipantStat) *models.Winner {
	eligible := make([]models.ParticipantStat, 0, len(stats))
	for _, s := range stats {
		if s.Role == models.RoleGhost {
			continue
		}
		eligible = append(eligible, s)
	}

	if len(eligible) == 0 {
		return nil
	}

	sort.Slice(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Taps != b.Taps {
			return a.Taps < b.Taps
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.UserID < b.UserID
	})

	return &models.Winner{
		Username: eligible[0].Username,
		Points:   eligible[0].Points,
	}
}
