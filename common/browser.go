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

// Package common holds the browser session abstraction and the primitives
// every other package builds on: bounded polling, timeout settings, page
// stability checks, locator helpers and the error taxonomy.
package common

import "context"

// Browser is the session abstraction the widgets and views drive.
// Selectors are XPath expressions. Methods acting on a single element use the
// first match and fail with an error wrapping ErrElementNotFound when there
// is none; predicates report false instead.
//
// A Browser drives one page and is not safe for concurrent use.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)

	IsPresent(ctx context.Context, sel string) (bool, error)
	IsDisplayed(ctx context.Context, sel string) (bool, error)
	IsEnabled(ctx context.Context, sel string) (bool, error)
	IsSelected(ctx context.Context, sel string) (bool, error)
	Count(ctx context.Context, sel string) (int, error)

	Click(ctx context.Context, sel string) error
	Clear(ctx context.Context, sel string) error
	SendKeys(ctx context.Context, sel string, text string) error

	Text(ctx context.Context, sel string) (string, error)
	// Texts returns the text of every element matching sel, in document order.
	Texts(ctx context.Context, sel string) ([]string, error)
	Value(ctx context.Context, sel string) (string, error)
	Attribute(ctx context.Context, sel string, name string) (string, error)
	Classes(ctx context.Context, sel string) ([]string, error)
	OuterHTML(ctx context.Context, sel string) (string, error)

	// Evaluate runs script in the page and returns its JSON encoded result.
	Evaluate(ctx context.Context, script string) ([]byte, error)
	Screenshot(ctx context.Context) ([]byte, error)

	Close() error
}
