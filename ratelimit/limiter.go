// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limiter admits at most limit calls per key per fixed window.
//
// Windows are fixed, not sliding: a key's window opens on its first call
// after the previous one expired. Bursts straddling a window edge can
// therefore admit up to twice the limit within one window's length.
type Limiter struct {
	mu         sync.Mutex
	entries    map[string]*window
	limit      int
	window     time.Duration
	sweepEvery time.Duration
	now        func() time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

type Option func(*Limiter)

// WithWindow sets the window length (default 1s).
func WithWindow(d time.Duration) Option {
	return func(l *Limiter) { l.window = d }
}

// WithSweepEvery sets how often Run drops expired entries (default 1s).
func WithSweepEvery(d time.Duration) Option {
	return func(l *Limiter) { l.sweepEvery = d }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func New(limit int, opts ...Option) *Limiter {
	l := &Limiter{
		entries:    make(map[string]*window),
		limit:      limit,
		window:     time.Second,
		sweepEvery: time.Second,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) Limit() int {
	return l.limit
}

func (l *Limiter) Window() time.Duration {
	return l.window
}

// Allow reports whether key may proceed, consuming one slot if so.
func (l *Limiter) Allow(key string) bool {
	ok, _ := l.Reserve(key)
	return ok
}

// Reserve is Allow that also reports how long until key's window resets
// when the call is rejected.
func (l *Limiter) Reserve(key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.entries[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.window)}
		l.entries[key] = w
	}

	if w.count >= l.limit {
		return false, w.resetAt.Sub(now)
	}
	w.count++
	return true, 0
}

// Sweep drops entries whose window has expired and returns how many it
// removed.
func (l *Limiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for k, w := range l.entries {
		if !now.Before(w.resetAt) {
			delete(l.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Run sweeps expired entries on a ticker until ctx is done.
// A failing sweep is logged and skipped; it never takes the process down.
func (l *Limiter) Run(ctx context.Context) {
	if l.sweepEvery <= 0 {
		return
	}

	t := time.NewTicker(l.sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.safeSweep()
		}
	}
}

func (l *Limiter) safeSweep() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("rate limiter sweep failed", "panic", r)
		}
	}()
	if n := l.Sweep(); n > 0 {
		slog.Debug("rate limiter swept", "removed", n, "remaining", l.Len())
	}
}
