// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"time"
)

// RoundStatus is derived from a round's time bounds and is never stored.
type RoundStatus string

// Round status constants
const (
	StatusCooldown  RoundStatus = "cooldown"
	StatusActive    RoundStatus = "active"
	StatusCompleted RoundStatus = "completed"
)

// Role is the participant role tag.
type Role string

// Role constants
const (
	RolePlayer Role = "player"
	RoleGhost  Role = "ghost" // taps count, points never do
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePlayer, RoleGhost, RoleAdmin:
		return true
	}
	return false
}

// Request types

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateRoundRequest struct {
	StartTime time.Time `json:"startTime"`
}

// Response types

type LoginResponse struct {
	AccessToken string   `json:"accessToken"`
	User        UserInfo `json:"user"`
}

type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

type TapResult struct {
	Taps         int64 `json:"taps"`
	Points       int64 `json:"points"`
	EarnedPoints int64 `json:"earnedPoints"`
	IsBonus      bool  `json:"isBonus"`
}

type MyStats struct {
	Taps   int64 `json:"taps"`
	Points int64 `json:"points"`
}

type Winner struct {
	Username string `json:"username"`
	Points   int64  `json:"points"`
}

// RoundView is a round as seen by one caller at one instant.
// Winner is only present for completed rounds; it is null when nobody
// eligible tapped.
type RoundView struct {
	ID          string      `json:"id"`
	StartTime   time.Time   `json:"startTime"`
	EndTime     time.Time   `json:"endTime"`
	Status      RoundStatus `json:"status"`
	TotalTaps   int64       `json:"totalTaps"`
	TotalPoints int64       `json:"totalPoints"`
	CreatedAt   time.Time   `json:"createdAt"`
	MyStats     *MyStats    `json:"myStats"`
	Winner      *Winner     `json:"-"`
}

// MarshalJSON emits "winner" only for completed rounds, as null when there
// is no eligible winner.
func (v RoundView) MarshalJSON() ([]byte, error) {
	type plain RoundView
	if v.Status != StatusCompleted {
		return json.Marshal(plain(v))
	}
	return json.Marshal(struct {
		plain
		Winner *Winner `json:"winner"`
	}{plain(v), v.Winner})
}

func (v *RoundView) UnmarshalJSON(data []byte) error {
	type plain RoundView
	aux := struct {
		*plain
		Winner *Winner `json:"winner"`
	}{plain: (*plain)(v)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	v.Winner = aux.Winner
	return nil
}

type RoundsResponse struct {
	Rounds []RoundView `json:"rounds"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type DetailedHealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
	Uptime    string    `json:"uptime"`
	HeapUsed  string    `json:"heapUsed"`
	HeapTotal string    `json:"heapTotal"`
}

type ProbeResponse struct {
	Status string `json:"status"`
}

// Domain types

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Round struct {
	ID          string
	StartTime   time.Time
	EndTime     time.Time
	TotalTaps   int64
	TotalPoints int64
	CreatedAt   time.Time
}

// ParticipantStat is one round_stat row joined with its user.
type ParticipantStat struct {
	RoundID   string
	UserID    string
	Username  string
	Role      Role
	Taps      int64
	Points    int64
	CreatedAt time.Time
}

// TapRecord is what the store reports back from one atomic tap.
type TapRecord struct {
	Seq    int64 // global sequence number of this tap within the round
	Taps   int64
	Points int64
	Added  int64
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
