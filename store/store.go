// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/goose-tap/auth"
	"github.com/danielhkuo/goose-tap/game"
	"github.com/danielhkuo/goose-tap/models"
)

// SQLStore implements game.Store and auth.UserStore on database/sql.
// Queries stick to the SQL subset shared by PostgreSQL and SQLite.
type SQLStore struct {
	db *sql.DB
}

var (
	_ game.Store     = (*SQLStore)(nil)
	_ auth.UserStore = (*SQLStore)(nil)
)

func New(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// CreateRound inserts a new round with zero totals.
func (s *SQLStore) CreateRound(ctx context.Context, r models.Round) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO round (id, start_time, end_time, total_taps, total_points, created_at)
		VALUES ($1, $2, $3, 0, 0, $4)
	`, r.ID, r.StartTime, r.EndTime, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert round: %w", err)
	}
	return nil
}

// GetRound loads one round or returns game.ErrRoundNotFound.
func (s *SQLStore) GetRound(ctx context.Context, id string) (models.Round, error) {
	var r models.Round
	err := s.db.QueryRowContext(ctx, `
		SELECT id, start_time, end_time, total_taps, total_points, created_at
		FROM round
		WHERE id = $1
	`, id).Scan(&r.ID, &r.StartTime, &r.EndTime, &r.TotalTaps, &r.TotalPoints, &r.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Round{}, game.ErrRoundNotFound
	}
	if err != nil {
		return models.Round{}, fmt.Errorf("failed to query round: %w", err)
	}
	return r, nil
}

// ListRounds returns all rounds, newest start first.
func (s *SQLStore) ListRounds(ctx context.Context) ([]models.Round, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, start_time, end_time, total_taps, total_points, created_at
		FROM round
		ORDER BY start_time DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}
	defer rows.Close()

	rounds := []models.Round{}
	for rows.Next() {
		var r models.Round
		if err := rows.Scan(&r.ID, &r.StartTime, &r.EndTime, &r.TotalTaps, &r.TotalPoints, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rounds: %w", err)
	}
	return rounds, nil
}

const statColumns = `
		SELECT s.round_id, s.user_id, u.username, u.role, s.taps, s.points, s.created_at
		FROM round_stat s
		JOIN app_user u ON u.id = s.user_id
`

// ListStats returns every participant stat row of one round.
func (s *SQLStore) ListStats(ctx context.Context, roundID string) ([]models.ParticipantStat, error) {
	rows, err := s.db.QueryContext(ctx, statColumns+`
		WHERE s.round_id = $1
		ORDER BY s.created_at
	`, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query round stats: %w", err)
	}
	defer rows.Close()

	stats := []models.ParticipantStat{}
	for rows.Next() {
		st, err := scanStat(rows)
		if err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate round stats: %w", err)
	}
	return stats, nil
}

// ListAllStats returns participant stats grouped by round ID.
func (s *SQLStore) ListAllStats(ctx context.Context) (map[string][]models.ParticipantStat, error) {
	rows, err := s.db.QueryContext(ctx, statColumns+`
		ORDER BY s.round_id, s.created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query round stats: %w", err)
	}
	defer rows.Close()

	byRound := make(map[string][]models.ParticipantStat)
	for rows.Next() {
		st, err := scanStat(rows)
		if err != nil {
			return nil, err
		}
		byRound[st.RoundID] = append(byRound[st.RoundID], st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate round stats: %w", err)
	}
	return byRound, nil
}

func scanStat(rows *sql.Rows) (models.ParticipantStat, error) {
	var st models.ParticipantStat
	var role string
	if err := rows.Scan(&st.RoundID, &st.UserID, &st.Username, &role, &st.Taps, &st.Points, &st.CreatedAt); err != nil {
		return models.ParticipantStat{}, fmt.Errorf("failed to scan round stat: %w", err)
	}
	st.Role = models.Role(role)
	return st, nil
}

// RecordTap implements game.Store.
//
// The counter increment comes first: the UPDATE locks the round row (row
// lock on PostgreSQL, the whole database on SQLite) until commit, so the
// RETURNING value is a sequence number no concurrent tap can also see.
// Every tap touches round then round_stat in the same order.
func (s *SQLStore) RecordTap(ctx context.Context, roundID, userID string, at time.Time, award func(seq int64) int64) (models.TapRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.TapRecord{}, classify("begin transaction", err)
	}
	defer tx.Rollback()

	var rec models.TapRecord
	err = tx.QueryRowContext(ctx, `
		UPDATE round
		SET total_taps = total_taps + 1
		WHERE id = $1
		RETURNING total_taps
	`, roundID).Scan(&rec.Seq)
	if err == sql.ErrNoRows {
		return models.TapRecord{}, game.ErrRoundNotFound
	}
	if err != nil {
		return models.TapRecord{}, classify("increment round taps", err)
	}

	rec.Added = award(rec.Seq)

	err = tx.QueryRowContext(ctx, `
		INSERT INTO round_stat (round_id, user_id, taps, points, created_at)
		VALUES ($1, $2, 1, $3, $4)
		ON CONFLICT (round_id, user_id) DO UPDATE
		SET taps = round_stat.taps + 1, points = round_stat.points + excluded.points
		RETURNING taps, points
	`, roundID, userID, rec.Added, at.UTC()).Scan(&rec.Taps, &rec.Points)
	if err != nil {
		return models.TapRecord{}, classify("upsert round stat", err)
	}

	if rec.Added != 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE round SET total_points = total_points + $1 WHERE id = $2
		`, rec.Added, roundID)
		if err != nil {
			return models.TapRecord{}, classify("add round points", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.TapRecord{}, classify("commit tap", err)
	}
	return rec, nil
}

// classify wraps err, turning contention failures into game.ErrConflict.
func classify(op string, err error) error {
	if isTransient(err) {
		return fmt.Errorf("failed to %s: %w: %v", op, game.ErrConflict, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// isTransient reports whether err is a contention failure that a caller
// may retry: serialization failure, deadlock or lock timeout on
// PostgreSQL, busy or locked on SQLite.
func isTransient(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
		return false
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
	}
	return false
}
