// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"testing"
	"time"

	"github.com/danielhkuo/goose-tap/models"
)

func stat(user string, role models.Role, taps, points int64, joined time.Duration) models.ParticipantStat {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return models.ParticipantStat{
		RoundID:   "r1",
		UserID:    "id-" + user,
		Username:  user,
		Role:      role,
		Taps:      taps,
		Points:    points,
		CreatedAt: base.Add(joined),
	}
}

func TestResolveWinner(t *testing.T) {
	tests := []struct {
		name  string
		stats []models.ParticipantStat
		want  string // empty means no winner
	}{
		{"no participants", nil, ""},
		{
			"most points wins",
			[]models.ParticipantStat{
				stat("alice", models.RolePlayer, 20, 20, 0),
				stat("bob", models.RolePlayer, 25, 34, time.Second),
			},
			"bob",
		},
		{
			"fewer taps breaks a points tie",
			[]models.ParticipantStat{
				stat("alice", models.RolePlayer, 20, 29, 0),
				stat("bob", models.RolePlayer, 11, 29, time.Second),
			},
			"bob",
		},
		{
			"earlier participation breaks a full tie",
			[]models.ParticipantStat{
				stat("bob", models.RolePlayer, 10, 10, time.Second),
				stat("alice", models.RolePlayer, 10, 10, 0),
			},
			"alice",
		},
		{
			"user id is the last resort",
			[]models.ParticipantStat{
				stat("zed", models.RolePlayer, 10, 10, 0),
				stat("amy", models.RolePlayer, 10, 10, 0),
			},
			"amy",
		},
		{
			"ghost never wins",
			[]models.ParticipantStat{
				stat("Никита", models.RoleGhost, 500, 0, 0),
				stat("alice", models.RolePlayer, 1, 1, time.Second),
			},
			"alice",
		},
		{
			"only ghosts",
			[]models.ParticipantStat{stat("Никита", models.RoleGhost, 50, 0, 0)},
			"",
		},
		{
			"admin can win",
			[]models.ParticipantStat{
				stat("admin", models.RoleAdmin, 30, 30, 0),
				stat("alice", models.RolePlayer, 3, 3, 0),
			},
			"admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveWinner(tt.stats)
			if tt.want == "" {
				if got != nil {
					t.Errorf("ResolveWinner() = %+v, want nil", got)
				}
				return
			}
			if got == nil || got.Username != tt.want {
				t.Errorf("ResolveWinner() = %+v, want %s", got, tt.want)
			}
		})
	}
}

func TestResolveWinner_DoesNotReorderInput(t *testing.T) {
	stats := []models.ParticipantStat{
		stat("alice", models.RolePlayer, 1, 1, 0),
		stat("bob", models.RolePlayer, 5, 5, 0),
	}
	ResolveWinner(stats)
	if stats[0].Username != "alice" {
		t.Error("ResolveWinner() reordered its input")
	}
}
