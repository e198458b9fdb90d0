// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package game holds the contest rules: round status, tap scoring and
winner resolution.

# Status

ResolveStatus derives a round's phase from its bounds; nothing stores it.

# Taps

Engine.ProcessTap admits a tap while start ≤ now < end + grace and asks
the Store to record it atomically. The store advances the round's tap
counter first and the new value is the tap's global sequence number:

	seq % BonusDivisor == 0 → BonusPoints (bonus tap)
	otherwise               → RegularPoints

The sequence is shared by everyone in the round, so the 11th tap is a
bonus no matter who sends it. Ghost taps advance the counter and are
flagged as bonus when they land on one, but earn nothing.

# Rounds

Service creates rounds and builds RoundView values for one caller. A
completed round gets its winner from ResolveWinner: most points, then
fewest taps, then earliest participation. Ghosts never win.

Both Engine and Service take a Recorder (see package metrics) and a
clock through Options.
*/
package game
