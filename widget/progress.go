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

package widget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/liuxd6825/pageflow/common"
)

// ProgressBar is a PatternFly progress bar tracking a background task.
type ProgressBar struct{ base }

var _ Readable = &ProgressBar{}

// ErrTaskFailed is returned by WaitForResult when the bar turned red.
var ErrTaskFailed = errors.New("task failed")

// NewPF4ProgressBar binds the progress bar of the parent.
func NewPF4ProgressBar(parent Parent) *ProgressBar {
	return NewProgressBar(parent, ".//div[contains(@class, 'pf-c-progress') and not(contains(@class, 'pf-c-progress__'))]")
}

// NewProgressBar binds a progress bar to loc.
func NewProgressBar(parent Parent, loc string) *ProgressBar {
	return &ProgressBar{newBase(parent, loc)}
}

// BarLocator returns the locator of the element carrying the progress value.
func (p *ProgressBar) BarLocator() string { return p.sub(".//*[@role='progressbar']") }

// Progress returns the completion percentage.
func (p *ProgressBar) Progress(ctx context.Context) (int, error) {
	if err := p.activate(ctx); err != nil {
		return 0, err
	}
	v, err := p.browser().Attribute(ctx, p.BarLocator(), "aria-valuenow")
	if err != nil {
		return 0, err
	}
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid progress value %q: %w", v, err)
	}
	return int(f), nil
}

// Failed reports whether the bar shows the danger state.
func (p *ProgressBar) Failed(ctx context.Context) (bool, error) {
	classes, err := p.browser().Classes(ctx, p.Locator())
	if err != nil {
		return false, err
	}
	for _, c := range classes {
		if c == "pf-m-danger" {
			return true, nil
		}
	}
	return false, nil
}

// Status returns the status text shown next to the bar.
func (p *ProgressBar) Status(ctx context.Context) (string, error) {
	loc := p.sub(".//*[contains(@class, 'pf-c-progress__description') or contains(@class, 'pf-c-progress__status')]")
	present, err := p.browser().IsPresent(ctx, loc)
	if err != nil || !present {
		return "", err
	}
	return p.text(ctx, loc)
}

// Read returns the completion percentage.
func (p *ProgressBar) Read(ctx context.Context) (any, error) {
	return p.Progress(ctx)
}

// WaitForResult polls until the bar reaches 100% and returns its status text.
// A failed task ends the wait with ErrTaskFailed.
func (p *ProgressBar) WaitForResult(ctx context.Context, timeout, delay time.Duration) (string, error) {
	var failure error
	err := common.WaitFor(ctx, "progress of "+p.Locator(),
		common.PollOptions{Timeout: timeout, Delay: delay, HandleErrors: true},
		func(ctx context.Context) (bool, error) {
			failed, err := p.Failed(ctx)
			if err != nil {
				return false, err
			}
			if failed {
				status, _ := p.Status(ctx)
				failure = fmt.Errorf("%w: %s", ErrTaskFailed, strings.TrimSpace(status))
				return true, nil
			}
			progress, err := p.Progress(ctx)
			return progress >= 100, err
		})
	if err != nil {
		return "", err
	}
	if failure != nil {
		return "", failure
	}
	return p.Status(ctx)
}
