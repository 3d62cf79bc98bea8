/*
 *
 * pageflow - page-object UI automation for content management screens
 * Copyright (C) 2026 pageflow authors
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as
 * published by the Free Software Foundation, either version 3 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package common

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// PollOptions bound a Poll.
type PollOptions struct {
	// Timeout is the overall budget. Zero or less checks the condition once.
	Timeout time.Duration
	// Delay is the minimum pause between two checks, DefaultPollDelay if unset.
	Delay time.Duration
	// HandleErrors treats a condition error as "not yet" instead of aborting.
	HandleErrors bool
}

// Condition is polled until it returns true.
type Condition func(ctx context.Context) (bool, error)

// Poll checks cond until it holds or the timeout elapses. It returns true on
// success and false on timeout; the error is only set when cond failed (and
// HandleErrors is off) or ctx itself was cancelled. Call sites decide whether
// a timeout is a failure.
func Poll(ctx context.Context, opts PollOptions, cond Condition) (bool, error) {
	ok, _, err := poll(ctx, opts, cond)
	return ok, err
}

// WaitFor is Poll for call sites that treat a timeout as a failure: it
// returns a *TimeoutError naming what was awaited.
func WaitFor(ctx context.Context, what string, opts PollOptions, cond Condition) error {
	ok, last, err := poll(ctx, opts, cond)
	if err != nil {
		return err
	}
	if !ok {
		return &TimeoutError{What: what, Timeout: opts.Timeout, Last: last}
	}
	return nil
}

func poll(ctx context.Context, opts PollOptions, cond Condition) (ok bool, last error, err error) {
	delay := opts.Delay
	if delay <= 0 {
		delay = DefaultPollDelay
	}

	pctx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	limiter := rate.NewLimiter(rate.Every(delay), 1)
	for {
		if werr := limiter.Wait(pctx); werr != nil {
			// either the deadline passed or the next check would land after it
			if ctx.Err() != nil {
				return false, last, ctx.Err()
			}
			return false, last, nil
		}

		ok, cerr := cond(pctx)
		switch {
		case cerr == nil && ok:
			return true, nil, nil
		case cerr != nil && !opts.HandleErrors:
			return false, cerr, cerr
		case cerr != nil:
			last = cerr
		}

		if opts.Timeout <= 0 {
			return false, last, nil
		}
	}
}
