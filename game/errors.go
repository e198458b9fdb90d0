// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import "errors"

var (
	// ErrRoundNotFound indicates a round does not exist.
	ErrRoundNotFound = errors.New("round not found")

	// ErrRoundNotActive indicates the round is outside its tap window.
	ErrRoundNotActive = errors.New("round is not active")

	// ErrStartInPast indicates a round was scheduled before now.
	ErrStartInPast = errors.New("start time is in the past")

	// ErrStartTooFar indicates a round was scheduled beyond the allowed horizon.
	ErrStartTooFar = errors.New("start time is too far ahead")

	// ErrRateLimited indicates the caller exceeded its tap rate.
	ErrRateLimited = errors.New("too many taps")

	// ErrConflict indicates the store could not commit because of contention.
	// The tap was not recorded and may be resubmitted.
	ErrConflict = errors.New("tap conflicted with a concurrent write")
)
