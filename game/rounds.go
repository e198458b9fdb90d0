// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/goose-tap/models"
)

// Service creates rounds and assembles the per-caller round views.
type Service struct {
	store Store
	rules Rules
	now   func() time.Time
	rec   Recorder
}

func NewService(store Store, rules Rules, opts ...Option) *Service {
	o := buildOptions(opts)
	return &Service{store: store, rules: rules, now: o.now, rec: o.rec}
}

// Rules returns the contest settings the service was built with.
func (s *Service) Rules() Rules {
	return s.rules
}

// CreateRound schedules a round starting at start.
func (s *Service) CreateRound(ctx context.Context, start time.Time) (models.RoundView, error) {
	now := s.now()
	start = start.UTC().Truncate(time.Millisecond)

	if start.Before(now.Truncate(time.Millisecond)) {
		return models.RoundView{}, ErrStartInPast
	}
	if s.rules.MaxScheduleAhead > 0 && start.After(now.Add(s.rules.MaxScheduleAhead)) {
		return models.RoundView{}, ErrStartTooFar
	}

	round := models.Round{
		ID:        uuid.NewString(),
		StartTime: start,
		EndTime:   start.Add(s.rules.RoundDuration),
		CreatedAt: now.UTC(),
	}
	if err := s.store.CreateRound(ctx, round); err != nil {
		return models.RoundView{}, fmt.Errorf("failed to create round: %w", err)
	}
	s.rec.RoundCreated()

	slog.Info("round created", "round_id", round.ID, "start_time", round.StartTime, "end_time", round.EndTime)

	return s.view(round, nil, "", now), nil
}

// ListRounds returns every round as seen by callerID: active first, then
// cooldown, then completed; newest start first within a status.
func (s *Service) ListRounds(ctx context.Context, callerID string) ([]models.RoundView, error) {
	rounds, err := s.store.ListRounds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	stats, err := s.store.ListAllStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list round stats: %w", err)
	}

	now := s.now()
	views := make([]models.RoundView, 0, len(rounds))
	for _, r := range rounds {
		views = append(views, s.view(r, stats[r.ID], callerID, now))
	}

	sort.SliceStable(views, func(i, j int) bool {
		ri, rj := statusRank(views[i].Status), statusRank(views[j].Status)
		if ri != rj {
			return ri < rj
		}
		return views[i].StartTime.After(views[j].StartTime)
	})

	return views, nil
}

// GetRound returns one round as seen by callerID.
func (s *Service) GetRound(ctx context.Context, id, callerID string) (models.RoundView, error) {
	round, err := s.store.GetRound(ctx, id)
	if err != nil {
		return models.RoundView{}, err
	}
	stats, err := s.store.ListStats(ctx, id)
	if err != nil {
		return models.RoundView{}, fmt.Errorf("failed to list round stats: %w", err)
	}
	return s.view(round, stats, callerID, s.now()), nil
}

func (s *Service) view(r models.Round, stats []models.ParticipantStat, callerID string, now time.Time) models.RoundView {
	v := models.RoundView{
		ID:          r.ID,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Status:      ResolveStatus(r.StartTime, r.EndTime, now),
		TotalTaps:   r.TotalTaps,
		TotalPoints: r.TotalPoints,
		CreatedAt:   r.CreatedAt,
	}

	for _, st := range stats {
		if st.UserID == callerID {
			v.MyStats = &models.MyStats{Taps: st.Taps, Points: st.Points}
			break
		}
	}

	if v.Status == models.StatusCompleted {
		v.Winner = ResolveWinner(stats)
	}
	return v
}
