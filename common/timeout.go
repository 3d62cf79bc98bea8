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

import "time"

// TimeoutSettings holds information on timeout settings.
// Unset values fall back to the parent settings, and finally to the package defaults.
type TimeoutSettings struct {
	parent                   *TimeoutSettings
	defaultTimeout           *time.Duration
	defaultNavigationTimeout *time.Duration
	defaultPageSafeTimeout   *time.Duration
}

// NewTimeoutSettings creates a new timeout settings object.
func NewTimeoutSettings(parent *TimeoutSettings) *TimeoutSettings {
	return &TimeoutSettings{parent: parent}
}

// SetDefaultTimeout sets the timeout used by element waits.
func (t *TimeoutSettings) SetDefaultTimeout(timeout time.Duration) {
	t.defaultTimeout = &timeout
}

// SetDefaultNavigationTimeout sets the timeout used for waiting on a
// destination's readiness.
func (t *TimeoutSettings) SetDefaultNavigationTimeout(timeout time.Duration) {
	t.defaultNavigationTimeout = &timeout
}

// SetDefaultPageSafeTimeout sets the timeout of EnsurePageSafe.
func (t *TimeoutSettings) SetDefaultPageSafeTimeout(timeout time.Duration) {
	t.defaultPageSafeTimeout = &timeout
}

// NavigationTimeout returns the readiness timeout for navigations.
func (t *TimeoutSettings) NavigationTimeout() time.Duration {
	if t.defaultNavigationTimeout != nil {
		return *t.defaultNavigationTimeout
	}
	if t.defaultTimeout != nil {
		return *t.defaultTimeout
	}
	if t.parent != nil {
		return t.parent.NavigationTimeout()
	}
	return DefaultNavigationTimeout
}

// Timeout returns the timeout for element waits.
func (t *TimeoutSettings) Timeout() time.Duration {
	if t.defaultTimeout != nil {
		return *t.defaultTimeout
	}
	if t.parent != nil {
		return t.parent.Timeout()
	}
	return DefaultTimeout
}

// PageSafeTimeout returns the timeout for page stability waits.
func (t *TimeoutSettings) PageSafeTimeout() time.Duration {
	if t.defaultPageSafeTimeout != nil {
		return *t.defaultPageSafeTimeout
	}
	if t.parent != nil {
		return t.parent.PageSafeTimeout()
	}
	return DefaultPageSafeTimeout
}
