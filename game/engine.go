// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/goose-tap/models"
)

// Tap outcomes reported to the Recorder
const (
	OutcomeAccepted  = "accepted"
	OutcomeBonus     = "bonus"
	OutcomeNotFound  = "not_found"
	OutcomeNotActive = "not_active"
	OutcomeConflict  = "conflict"
	OutcomeError     = "error"
)

// Store is the persistence contract the game needs.
//
// Error semantics:
//   - ErrRoundNotFound: GetRound/RecordTap on an unknown id
//   - ErrConflict: RecordTap could not commit because of contention
//   - anything else: infrastructure failure
type Store interface {
	CreateRound(ctx context.Context, round models.Round) error
	GetRound(ctx context.Context, id string) (models.Round, error)
	ListRounds(ctx context.Context) ([]models.Round, error)
	ListStats(ctx context.Context, roundID string) ([]models.ParticipantStat, error)
	ListAllStats(ctx context.Context) (map[string][]models.ParticipantStat, error)

	// RecordTap runs one tap as a single atomic unit: it advances the round's
	// tap counter, passes the new counter value (the tap's global sequence
	// number) to award, and adds the returned points to both the caller's
	// stat row and the round total. No other tap on the same round can
	// observe or advance the counter until the unit commits.
	RecordTap(ctx context.Context, roundID, userID string, at time.Time, award func(seq int64) int64) (models.TapRecord, error)
}

// Recorder receives tap and round events, typically for metrics.
type Recorder interface {
	TapProcessed(outcome string)
	RoundCreated()
}

type nopRecorder struct{}

func (nopRecorder) TapProcessed(string) {}
func (nopRecorder) RoundCreated()       {}

// Rules holds the scoring and timing constants of a contest.
type Rules struct {
	RoundDuration    time.Duration
	BonusDivisor     int64
	BonusPoints      int64
	RegularPoints    int64
	GracePeriod      time.Duration
	MaxScheduleAhead time.Duration // zero disables the check
}

// DefaultRules returns the stock contest settings.
func DefaultRules() Rules {
	return Rules{
		RoundDuration:    60 * time.Second,
		BonusDivisor:     11,
		BonusPoints:      10,
		RegularPoints:    1,
		GracePeriod:      time.Second,
		MaxScheduleAhead: 24 * time.Hour,
	}
}

// Award returns the points earned by the tap with global sequence number seq
// and whether it is a bonus tap.
func (r Rules) Award(seq int64) (int64, bool) {
	if r.BonusDivisor > 0 && seq%r.BonusDivisor == 0 {
		return r.BonusPoints, true
	}
	return r.RegularPoints, false
}

// Tappable reports whether a tap at now is admitted: [start, end+grace).
func (r Rules) Tappable(round models.Round, now time.Time) bool {
	if now.Before(round.StartTime) {
		return false
	}
	return now.Before(round.EndTime.Add(r.GracePeriod))
}

// Option configures an Engine or a Service.
type Option func(*options)

type options struct {
	now func() time.Time
	rec Recorder
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRecorder reports outcomes to rec.
func WithRecorder(rec Recorder) Option {
	return func(o *options) {
		if rec != nil {
			o.rec = rec
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, rec: nopRecorder{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Engine ingests taps.
type Engine struct {
	store Store
	rules Rules
	now   func() time.Time
	rec   Recorder
}

func NewEngine(store Store, rules Rules, opts ...Option) *Engine {
	o := buildOptions(opts)
	return &Engine{store: store, rules: rules, now: o.now, rec: o.rec}
}

// ProcessTap records one tap by userID on roundID.
//
// Fails with ErrRoundNotFound for an unknown round, ErrRoundNotActive outside
// [start, end+grace), and ErrConflict when the store could not commit.
// Taps are not idempotent; a resubmitted tap is a new tap.
func (e *Engine) ProcessTap(ctx context.Context, roundID, userID string, role models.Role) (models.TapResult, error) {
	round, err := e.store.GetRound(ctx, roundID)
	if err != nil {
		if errors.Is(err, ErrRoundNotFound) {
			e.rec.TapProcessed(OutcomeNotFound)
			return models.TapResult{}, err
		}
		e.rec.TapProcessed(OutcomeError)
		return models.TapResult{}, fmt.Errorf("failed to load round: %w", err)
	}

	now := e.now()
	if !e.rules.Tappable(round, now) {
		e.rec.TapProcessed(OutcomeNotActive)
		return models.TapResult{}, ErrRoundNotActive
	}

	rec, err := e.store.RecordTap(ctx, roundID, userID, now, func(seq int64) int64 {
		if role == models.RoleGhost {
			return 0
		}
		points, _ := e.rules.Award(seq)
		return points
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrRoundNotFound):
			e.rec.TapProcessed(OutcomeNotFound)
			return models.TapResult{}, err
		case errors.Is(err, ErrConflict):
			e.rec.TapProcessed(OutcomeConflict)
			return models.TapResult{}, err
		}
		e.rec.TapProcessed(OutcomeError)
		return models.TapResult{}, fmt.Errorf("failed to record tap: %w", err)
	}

	_, bonus := e.rules.Award(rec.Seq)
	if bonus {
		e.rec.TapProcessed(OutcomeBonus)
		slog.Info("bonus tap", "round_id", roundID, "user_id", userID, "seq", rec.Seq, "earned", rec.Added)
	} else {
		e.rec.TapProcessed(OutcomeAccepted)
		slog.Debug("tap recorded", "round_id", roundID, "user_id", userID, "seq", rec.Seq)
	}

	return models.TapResult{
		Taps:         rec.Taps,
		Points:       rec.Points,
		EarnedPoints: rec.Added,
		IsBonus:      bonus,
	}, nil
}
