// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"testing"
	"time"

	"github.com/danielhkuo/goose-tap/models"
)

func TestResolveStatus(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Minute)

	tests := []struct {
		name string
		now  time.Time
		want models.RoundStatus
	}{
		{"well before start", start.Add(-time.Hour), models.StatusCooldown},
		{"just before start", start.Add(-time.Millisecond), models.StatusCooldown},
		{"at start", start, models.StatusActive},
		{"mid round", start.Add(30 * time.Second), models.StatusActive},
		{"just before end", end.Add(-time.Millisecond), models.StatusActive},
		{"at end", end, models.StatusCompleted},
		{"after end", end.Add(time.Hour), models.StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveStatus(start, end, tt.now); got != tt.want {
				t.Errorf("ResolveStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStatusRank(t *testing.T) {
	if !(statusRank(models.StatusActive) < statusRank(models.StatusCooldown) &&
		statusRank(models.StatusCooldown) < statusRank(models.StatusCompleted)) {
		t.Error("expected active < cooldown < completed")
	}
}
