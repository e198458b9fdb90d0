// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/goose-tap/game"
	"github.com/danielhkuo/goose-tap/middleware"
	"github.com/danielhkuo/goose-tap/models"
	"github.com/danielhkuo/goose-tap/store"
	"github.com/danielhkuo/goose-tap/testutil"
)

func newRoundHandler(t *testing.T) (*RoundHandler, *sql.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	st := store.New(db)
	return NewRoundHandler(game.NewService(st, cfg.Rules()), game.NewEngine(st, cfg.Rules())), db
}

// serveAs runs h with user already authenticated
func serveAs(h http.HandlerFunc, user models.User, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, req.WithContext(middleware.WithUser(req.Context(), user)))
	return w
}

func tapRequest(roundID string) *http.Request {
	req := httptest.NewRequest("POST", "/rounds/"+roundID+"/tap", nil)
	req.SetPathValue("id", roundID)
	return req
}

func TestCreateRound(t *testing.T) {
	h, db := newRoundHandler(t)
	admin := testutil.CreateTestUser(t, db, "admin", models.RoleAdmin)

	start := time.Now().Add(30 * time.Second).UTC().Truncate(time.Millisecond)
	req := testutil.MakeRequest("POST", "/rounds", models.CreateRoundRequest{StartTime: start}, nil)
	w := serveAs(h.CreateRound, admin, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var view models.RoundView
	testutil.AssertJSON(t, w, &view)
	if view.ID == "" {
		t.Fatal("Expected round id")
	}
	if view.Status != models.StatusCooldown {
		t.Errorf("Expected cooldown, got %s", view.Status)
	}
	if !view.EndTime.Equal(start.Add(60 * time.Second)) {
		t.Errorf("Expected end %v, got %v", start.Add(60*time.Second), view.EndTime)
	}
}

func TestCreateRound_Validation(t *testing.T) {
	h, db := newRoundHandler(t)
	admin := testutil.CreateTestUser(t, db, "admin", models.RoleAdmin)

	testCases := []struct {
		name string
		body interface{}
	}{
		{"past start", models.CreateRoundRequest{StartTime: time.Now().Add(-time.Minute)}},
		{"too far ahead", models.CreateRoundRequest{StartTime: time.Now().Add(48 * time.Hour)}},
		{"missing start", map[string]string{}},
		{"bad timestamp", map[string]string{"startTime": "tomorrow"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/rounds", tc.body, nil)
			w := serveAs(h.CreateRound, admin, req)
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestListRounds_Ordering(t *testing.T) {
	h, db := newRoundHandler(t)
	user := testutil.CreateTestUser(t, db, "player1", models.RolePlayer)
	now := time.Now()

	completed := testutil.CreateTestRound(t, db, now.Add(-5*time.Minute), now.Add(-4*time.Minute))
	cooldown := testutil.CreateTestRound(t, db, now.Add(time.Minute), now.Add(2*time.Minute))
	active := testutil.CreateTestRound(t, db, now.Add(-10*time.Second), now.Add(50*time.Second))

	w := serveAs(h.ListRounds, user, httptest.NewRequest("GET", "/rounds", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.RoundsResponse
	testutil.AssertJSON(t, w, &resp)

	want := []string{active, cooldown, completed}
	if len(resp.Rounds) != len(want) {
		t.Fatalf("Expected %d rounds, got %d", len(want), len(resp.Rounds))
	}
	for i, id := range want {
		if resp.Rounds[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s (%s)", i, id, resp.Rounds[i].ID, resp.Rounds[i].Status)
		}
	}
}

func TestListRounds_Empty(t *testing.T) {
	h, db := newRoundHandler(t)
	user := testutil.CreateTestUser(t, db, "player1", models.RolePlayer)

	w := serveAs(h.ListRounds, user, httptest.NewRequest("GET", "/rounds", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	if body := w.Body.String(); body != "{\"rounds\":[]}\n" {
		t.Errorf("Expected empty rounds array, got %s", body)
	}
}

func TestGetRound_NotFound(t *testing.T) {
	h, db := newRoundHandler(t)
	user := testutil.CreateTestUser(t, db, "player1", models.RolePlayer)

	req := httptest.NewRequest("GET", "/rounds/missing", nil)
	req.SetPathValue("id", "missing")
	w := serveAs(h.GetRound, user, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestGetRound_WinnerOnlyWhenCompleted(t *testing.T) {
	h, db := newRoundHandler(t)
	user := testutil.CreateTestUser(t, db, "player1", models.RolePlayer)
	now := time.Now()

	active := testutil.CreateTestRound(t, db, now.Add(-time.Second), now.Add(time.Minute))
	done := testutil.CreateTestRound(t, db, now.Add(-2*time.Minute), now.Add(-time.Minute))

	for _, tc := range []struct {
		id         string
		wantWinner bool
	}{{active, false}, {done, true}} {
		req := httptest.NewRequest("GET", "/rounds/"+tc.id, nil)
		req.SetPathValue("id", tc.id)
		w := serveAs(h.GetRound, user, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var raw map[string]json.RawMessage
		testutil.AssertJSON(t, w, &raw)
		winner, ok := raw["winner"]
		if ok != tc.wantWinner {
			t.Errorf("round %s: winner present = %v, want %v", tc.id, ok, tc.wantWinner)
		}
		// Nobody tapped, so a completed round has a null winner
		if ok && string(winner) != "null" {
			t.Errorf("Expected null winner, got %s", winner)
		}
	}
}

func TestTap_Flow(t *testing.T) {
	h, db := newRoundHandler(t)
	user := testutil.CreateTestUser(t, db, "player1", models.RolePlayer)
	now := time.Now()
	roundID := testutil.CreateTestRound(t, db, now.Add(-time.Second), now.Add(time.Minute))

	var last models.TapResult
	for i := 1; i <= 11; i++ {
		w := serveAs(h.Tap, user, tapRequest(roundID))
		testutil.AssertStatus(t, w, http.StatusOK)
		testutil.AssertJSON(t, w, &last)

		if i < 11 && last.IsBonus {
			t.Errorf("tap %d should not be a bonus", i)
		}
	}

	if !last.IsBonus || last.EarnedPoints != 10 {
		t.Errorf("Expected 11th tap to earn a 10-point bonus, got %+v", last)
	}
	if last.Taps != 11 || last.Points != 20 {
		t.Errorf("Expected 11 taps and 20 points, got %+v", last)
	}

	// Caller stats show up on the round view
	req := httptest.NewRequest("GET", "/rounds/"+roundID, nil)
	req.SetPathValue("id", roundID)
	w := serveAs(h.GetRound, user, req)
	var view models.RoundView
	testutil.AssertJSON(t, w, &view)
	if view.MyStats == nil || view.MyStats.Points != 20 {
		t.Errorf("Expected myStats with 20 points, got %+v", view.MyStats)
	}
	if view.TotalTaps != 11 || view.TotalPoints != 20 {
		t.Errorf("Expected round totals 11/20, got %d/%d", view.TotalTaps, view.TotalPoints)
	}
}

func TestTap_Errors(t *testing.T) {
	h, db := newRoundHandler(t)
	user := testutil.CreateTestUser(t, db, "player1", models.RolePlayer)
	now := time.Now()

	cooldown := testutil.CreateTestRound(t, db, now.Add(time.Minute), now.Add(2*time.Minute))
	expired := testutil.CreateTestRound(t, db, now.Add(-2*time.Minute), now.Add(-time.Minute))

	testCases := []struct {
		name    string
		roundID string
		status  int
	}{
		{"unknown round", "missing", http.StatusNotFound},
		{"not started", cooldown, http.StatusBadRequest},
		{"past grace", expired, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serveAs(h.Tap, user, tapRequest(tc.roundID))
			testutil.AssertStatus(t, w, tc.status)
		})
	}
}

func TestTap_Ghost(t *testing.T) {
	h, db := newRoundHandler(t)
	ghost := testutil.CreateTestUser(t, db, "Никита", models.RoleGhost)
	now := time.Now()
	roundID := testutil.CreateTestRound(t, db, now.Add(-time.Second), now.Add(time.Minute))

	var last models.TapResult
	for i := 0; i < 11; i++ {
		w := serveAs(h.Tap, ghost, tapRequest(roundID))
		testutil.AssertStatus(t, w, http.StatusOK)
		testutil.AssertJSON(t, w, &last)
	}

	if !last.IsBonus {
		t.Error("Ghost's 11th tap should still be flagged as a bonus")
	}
	if last.Points != 0 || last.EarnedPoints != 0 || last.Taps != 11 {
		t.Errorf("Ghost should tap without scoring, got %+v", last)
	}
}

// TestConcurrentTaps verifies that simultaneous taps from different
// participants neither lose increments nor share sequence numbers
func TestConcurrentTaps(t *testing.T) {
	h, db := newRoundHandler(t)
	now := time.Now()
	roundID := testutil.CreateTestRound(t, db, now.Add(-time.Second), now.Add(time.Minute))

	const numTaps = 100
	users := make([]models.User, numTaps)
	for i := range users {
		users[i] = testutil.CreateTestUser(t, db, fmt.Sprintf("player%d", i), models.RolePlayer)
	}

	var okCount, bonusCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numTaps; i++ {
		wg.Add(1)
		go func(user models.User) {
			defer wg.Done()

			w := serveAs(h.Tap, user, tapRequest(roundID))
			if w.Code != http.StatusOK {
				return
			}
			okCount.Add(1)

			var res models.TapResult
			if err := json.NewDecoder(w.Body).Decode(&res); err == nil && res.IsBonus {
				bonusCount.Add(1)
			}
		}(users[i])
	}

	wg.Wait()

	if okCount.Load() != numTaps {
		t.Fatalf("Expected %d successful taps, got %d", numTaps, okCount.Load())
	}
	if bonusCount.Load() != numTaps/11 {
		t.Errorf("Expected %d bonus taps, got %d", numTaps/11, bonusCount.Load())
	}

	var totalTaps, totalPoints, sumPoints int64
	err := db.QueryRow(`SELECT total_taps, total_points FROM round WHERE id = $1`, roundID).Scan(&totalTaps, &totalPoints)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow(`SELECT SUM(points) FROM round_stat WHERE round_id = $1`, roundID).Scan(&sumPoints); err != nil {
		t.Fatal(err)
	}

	if totalTaps != numTaps {
		t.Errorf("Expected %d total taps, got %d", numTaps, totalTaps)
	}
	wantPoints := int64(numTaps - numTaps/11 + 10*(numTaps/11))
	if totalPoints != wantPoints || sumPoints != wantPoints {
		t.Errorf("Expected %d points in total and in stats, got %d and %d", wantPoints, totalPoints, sumPoints)
	}
}
