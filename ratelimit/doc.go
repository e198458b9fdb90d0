// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ratelimit provides a fixed-window, per-key rate limiter.

	l := ratelimit.New(10) // 10 per second per key
	go l.Run(ctx)          // sweeps expired keys until ctx is done

	if ok, retry := l.Reserve(userID); !ok {
		// reject, retry after `retry`
	}

A burst straddling two windows can admit up to twice the limit. That is
accepted.
*/
package ratelimit
