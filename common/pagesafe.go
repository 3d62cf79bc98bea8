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
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// pageSafeScript reports the loading state of the page: the document ready
// state plus the number of pending jQuery and Angular requests.
const pageSafeScript = `(() => {
	const res = {readyState: document.readyState, jquery: 0, angular: 0};
	if (window.jQuery) { res.jquery = window.jQuery.active; }
	if (window.angular) {
		try {
			const injector = window.angular.element(document.body).injector();
			if (injector) { res.angular = injector.get('$http').pendingRequests.length; }
		} catch (e) {}
	}
	return res;
})()`

// PageState is the decoded result of the page safety probe.
type PageState struct {
	ReadyState     string
	PendingJQuery  int64
	PendingAngular int64
}

// Safe reports whether the page finished loading and has no pending requests.
func (s PageState) Safe() bool {
	return s.ReadyState == "complete" && s.PendingJQuery == 0 && s.PendingAngular == 0
}

// ProbePage evaluates the page safety probe once.
func ProbePage(ctx context.Context, b Browser) (PageState, error) {
	raw, err := b.Evaluate(ctx, pageSafeScript)
	if err != nil {
		return PageState{}, fmt.Errorf("probing page state: %w", err)
	}
	res := gjson.ParseBytes(raw)
	return PageState{
		ReadyState:     res.Get("readyState").String(),
		PendingJQuery:  res.Get("jquery").Int(),
		PendingAngular: res.Get("angular").Int(),
	}, nil
}

// EnsurePageSafe waits until the document is complete and no XHR requests
// are in flight. It returns an error wrapping ErrPageNotSafe on timeout.
func EnsurePageSafe(ctx context.Context, b Browser, timeout time.Duration) error {
	var state PageState
	ok, err := Poll(ctx, PollOptions{Timeout: timeout, Delay: 100 * time.Millisecond, HandleErrors: true},
		func(ctx context.Context) (bool, error) {
			var err error
			state, err = ProbePage(ctx, b)
			return err == nil && state.Safe(), err
		})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: readyState %q, %d jQuery and %d Angular requests pending after %s",
			ErrPageNotSafe, state.ReadyState, state.PendingJQuery, state.PendingAngular, timeout)
	}
	return nil
}
