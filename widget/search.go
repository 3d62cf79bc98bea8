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
)

// Search is a search box: an input plus a submit button and an optional
// reset button.
type Search struct {
	base
	input  string
	submit string
	reset  string
}

var (
	_ Fillable = &Search{}
	_ Readable = &Search{}
)

// NewPF4Search binds the PatternFly 4 search input of the parent.
func NewPF4Search(parent Parent) *Search {
	return &Search{
		base:   newBase(parent, ".//div[contains(@class, 'pf-c-search-input') or contains(@class, 'pf-c-input-group')]"),
		input:  ".//input[contains(@aria-label, 'input') or contains(@class, 'pf-c-search-input__text-input')]",
		submit: ".//button[@aria-label='Search']",
		reset:  ".//button[@aria-label='Reset']",
	}
}

// NewSearch binds the legacy search box of the parent.
func NewSearch(parent Parent) *Search {
	return &Search{
		base:   newBase(parent, ".//div[input[@ng-model='table.searchTerm' or contains(@class, 'search-input') or @id='search']]"),
		input:  "./input",
		submit: ".//button[contains(@ng-click, 'search') or @type='submit']",
		reset:  ".//button[contains(@ng-click, 'clear') or contains(@class, 'clear')]",
	}
}

// InputLocator returns the locator of the query input.
func (s *Search) InputLocator() string { return s.sub(s.input) }

// SubmitLocator returns the locator of the submit button.
func (s *Search) SubmitLocator() string { return s.sub(s.submit) }

// Clear empties the search box, using the reset button when shown.
func (s *Search) Clear(ctx context.Context) error {
	if err := s.activate(ctx); err != nil {
		return err
	}
	b := s.browser()
	shown, err := b.IsDisplayed(ctx, s.sub(s.reset))
	if err != nil {
		return err
	}
	if shown {
		return b.Click(ctx, s.sub(s.reset))
	}
	return b.Clear(ctx, s.sub(s.input))
}

// Search submits query.
func (s *Search) Search(ctx context.Context, query string) error {
	if err := s.Clear(ctx); err != nil {
		return err
	}
	b := s.browser()
	if err := b.SendKeys(ctx, s.sub(s.input), query); err != nil {
		return err
	}
	shown, err := b.IsDisplayed(ctx, s.sub(s.submit))
	if err != nil {
		return err
	}
	if shown {
		return b.Click(ctx, s.sub(s.submit))
	}
	return b.SendKeys(ctx, s.sub(s.input), "\r")
}

// Fill searches for value.
func (s *Search) Fill(ctx context.Context, value any) (bool, error) {
	q, err := asString(value)
	if err != nil {
		return false, err
	}
	if err := s.Search(ctx, q); err != nil {
		return false, err
	}
	return true, nil
}

// Read returns the current query.
func (s *Search) Read(ctx context.Context) (any, error) {
	if err := s.activate(ctx); err != nil {
		return nil, err
	}
	return s.browser().Value(ctx, s.sub(s.input))
}
