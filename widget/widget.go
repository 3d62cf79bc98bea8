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

// Package widget implements the page-object layer: widgets bound to XPath
// locators and Views composing them into screens.
//
// Every widget implements Widget. What else it can do is expressed by the
// capability interfaces Fillable, Readable and Clickable; a View records its
// widgets as Fields tagged with those capabilities.
package widget

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/liuxd6825/pageflow/common"
)

// Parent is what a widget is bound to: a View, a table cell or anything
// else owning a root locator.
type Parent interface {
	Browser() common.Browser
	// Locator is the root the widget locators are relative to; "" is the page.
	Locator() string
	// Activate makes the parent usable, e.g. selects the tab it lives on.
	Activate(ctx context.Context) error
}

// Widget is the common part of every widget.
type Widget interface {
	Locator() string
	IsDisplayed(ctx context.Context) (bool, error)
}

// Fillable widgets accept a value. Fill reports whether anything changed.
type Fillable interface {
	Widget
	Fill(ctx context.Context, value any) (bool, error)
}

// Readable widgets produce a value.
type Readable interface {
	Widget
	Read(ctx context.Context) (any, error)
}

// Clickable widgets can be clicked.
type Clickable interface {
	Widget
	Click(ctx context.Context) error
}

// base carries the parent binding shared by all widgets.
type base struct {
	parent Parent
	loc    string
}

func newBase(parent Parent, loc string) base {
	return base{parent: parent, loc: loc}
}

// Locator returns the absolute locator of the widget.
func (w base) Locator() string {
	return common.JoinLocator(w.parent.Locator(), w.loc)
}

func (w base) browser() common.Browser {
	return w.parent.Browser()
}

// sub resolves a locator relative to the widget.
func (w base) sub(loc string) string {
	return common.JoinLocator(w.Locator(), loc)
}

// IsDisplayed reports whether the widget is visible. The parent is not
// activated, so widgets on an inactive tab report false.
func (w base) IsDisplayed(ctx context.Context) (bool, error) {
	return w.browser().IsDisplayed(ctx, w.Locator())
}

// WaitDisplayed waits until the widget is visible.
func (w base) WaitDisplayed(ctx context.Context, timeout time.Duration) error {
	return common.WaitFor(ctx, w.Locator(),
		common.PollOptions{Timeout: timeout, HandleErrors: true},
		w.IsDisplayed)
}

func (w base) activate(ctx context.Context) error {
	return w.parent.Activate(ctx)
}

func (w base) click(ctx context.Context, loc string) error {
	if err := w.activate(ctx); err != nil {
		return err
	}
	return w.browser().Click(ctx, loc)
}

func (w base) text(ctx context.Context, loc string) (string, error) {
	if err := w.activate(ctx); err != nil {
		return "", err
	}
	txt, err := w.browser().Text(ctx, loc)
	return strings.TrimSpace(txt), err
}

// typeValue replaces the content of the input at loc.
func (w base) typeValue(ctx context.Context, loc, value string) (bool, error) {
	if err := w.activate(ctx); err != nil {
		return false, err
	}
	b := w.browser()
	current, err := b.Value(ctx, loc)
	if err != nil {
		return false, err
	}
	if current == value {
		return false, nil
	}
	if err := b.Clear(ctx, loc); err != nil {
		return false, err
	}
	if err := b.SendKeys(ctx, loc, value); err != nil {
		return false, err
	}
	return true, nil
}

// setSelected clicks clickLoc once unless the state read from stateLoc already equals want.
func (w base) setSelected(ctx context.Context, stateLoc, clickLoc string, want bool) (bool, error) {
	if err := w.activate(ctx); err != nil {
		return false, err
	}
	b := w.browser()
	selected, err := b.IsSelected(ctx, stateLoc)
	if err != nil {
		return false, err
	}
	if selected == want {
		return false, nil
	}
	if err := b.Click(ctx, clickLoc); err != nil {
		return false, err
	}
	return true, nil
}

func asString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case int, int64, float64, bool:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("expected a string value, got %T", value)
	}
}

func asBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(v) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0", "":
			return false, nil
		}
	}
	return false, fmt.Errorf("expected a boolean value, got %T(%v)", value, value)
}

// Attributize turns a column or label name into a field key:
// "Errata ID" becomes "errata_id".
func Attributize(name string) string {
	var sb strings.Builder
	lastUnderscore := true
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
		case !lastUnderscore:
			sb.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(sb.String(), "_")
}
