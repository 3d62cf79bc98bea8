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
	"errors"
	"fmt"
	"time"

	"github.com/liuxd6825/pageflow/errext"
	"github.com/liuxd6825/pageflow/errext/exitcodes"
)

var (
	// ErrElementNotFound is returned when a selector matched nothing.
	ErrElementNotFound = errors.New("element not found")
	// ErrNotInteractable is returned when an element exists but is hidden or disabled.
	ErrNotInteractable = errors.New("element not interactable")
	// ErrStaleElement is returned when the page re-rendered under an action.
	ErrStaleElement = errors.New("stale element")
	// ErrPageNotSafe is returned when the page kept loading past the page-safe timeout.
	ErrPageNotSafe = errors.New("page is not safe")
)

// TimeoutError is returned by WaitFor when the condition did not hold in time.
type TimeoutError struct {
	What    string
	Timeout time.Duration
	// Last is the last error the condition returned, if any.
	Last error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %s waiting for %s", e.Timeout, e.What)
	if e.Last != nil {
		msg += ": " + e.Last.Error()
	}
	return msg
}

// Unwrap returns the last error seen while polling.
func (e *TimeoutError) Unwrap() error { return e.Last }

// ExitCode implements errext.HasExitCode.
func (e *TimeoutError) ExitCode() exitcodes.ExitCode { return exitcodes.GenericTimeout }

// NavigationError is returned when a destination could not be reached.
type NavigationError struct {
	Entity      string
	Destination string
	// Attempts is how many times the step ran; 0 when a prerequisite failed.
	Attempts int
	Err      error
}

func (e *NavigationError) Error() string {
	if e.Attempts == 0 {
		return fmt.Sprintf("navigating to %s.%s: %s", e.Entity, e.Destination, e.Err)
	}
	return fmt.Sprintf("navigating to %s.%s failed after %d attempt(s): %s",
		e.Entity, e.Destination, e.Attempts, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// ExitCode implements errext.HasExitCode.
func (e *NavigationError) ExitCode() exitcodes.ExitCode { return exitcodes.NavigationFailed }

// Fields implements errext.HasFields.
func (e *NavigationError) Fields() map[string]interface{} {
	return map[string]interface{}{"destination": e.Entity + "." + e.Destination, "attempts": e.Attempts}
}

// DisplayTimeoutError is returned when a view never became ready.
type DisplayTimeoutError struct {
	View    string
	Timeout time.Duration
	Err     error
}

func (e *DisplayTimeoutError) Error() string {
	return fmt.Sprintf("view %s was not displayed within %s", e.View, e.Timeout)
}

func (e *DisplayTimeoutError) Unwrap() error { return e.Err }

// ExitCode implements errext.HasExitCode.
func (e *DisplayTimeoutError) ExitCode() exitcodes.ExitCode { return exitcodes.DisplayTimeout }

// Fields implements errext.HasFields.
func (e *DisplayTimeoutError) Fields() map[string]interface{} {
	return map[string]interface{}{"view": e.View, "timeout": e.Timeout.String()}
}

// Hint implements errext.HasHint.
func (e *DisplayTimeoutError) Hint() string {
	return "the screen may have changed; check the view's readiness locators or raise the navigation timeout"
}

// NotFoundError is returned when an expected row or element is absent.
type NotFoundError struct {
	What  string
	Query string
}

func (e *NotFoundError) Error() string {
	if e.Query == "" {
		return e.What + " not found"
	}
	return fmt.Sprintf("%s not found for %q", e.What, e.Query)
}

// Is makes errors.Is(err, ErrElementNotFound) hold for NotFoundError.
func (e *NotFoundError) Is(target error) bool { return target == ErrElementNotFound }

// ExitCode implements errext.HasExitCode.
func (e *NotFoundError) ExitCode() exitcodes.ExitCode { return exitcodes.ElementNotFound }

var (
	_ errext.HasExitCode = (*TimeoutError)(nil)
	_ errext.HasExitCode = (*NavigationError)(nil)
	_ errext.HasFields   = (*NavigationError)(nil)
	_ errext.HasExitCode = (*DisplayTimeoutError)(nil)
	_ errext.HasFields   = (*DisplayTimeoutError)(nil)
	_ errext.HasHint     = (*DisplayTimeoutError)(nil)
	_ errext.HasExitCode = (*NotFoundError)(nil)
)

// IsTransient reports whether err is worth retrying a navigation step for:
// the element was not there yet, not interactable yet, went stale or the
// page was still loading.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var terr *TimeoutError
	return errors.Is(err, ErrElementNotFound) ||
		errors.Is(err, ErrNotInteractable) ||
		errors.Is(err, ErrStaleElement) ||
		errors.Is(err, ErrPageNotSafe) ||
		errors.As(err, &terr)
}
