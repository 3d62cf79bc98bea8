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
	"fmt"

	"github.com/liuxd6825/pageflow/common"
)

// Button is a clickable button. Clicking a disabled button fails with
// common.ErrNotInteractable.
type Button struct{ base }

var (
	_ Clickable = &Button{}
	_ Readable  = &Button{}
)

// NewButton binds a Button to loc.
func NewButton(parent Parent, loc string) *Button {
	return &Button{newBase(parent, loc)}
}

// NewButtonByText binds a Button to the button showing text.
func NewButtonByText(parent Parent, text string) *Button {
	return NewButton(parent, ".//button[normalize-space(.)="+common.XPathLiteral(text)+"]")
}

// NewOUIAButton binds a Button to its OUIA component id.
func NewOUIAButton(parent Parent, id string) *Button {
	return NewButton(parent, ".//button[@data-ouia-component-id="+common.XPathLiteral(id)+"]")
}

// IsEnabled reports whether the button can be clicked.
func (b *Button) IsEnabled(ctx context.Context) (bool, error) {
	if err := b.activate(ctx); err != nil {
		return false, err
	}
	return b.browser().IsEnabled(ctx, b.Locator())
}

// Click clicks the button.
func (b *Button) Click(ctx context.Context) error {
	enabled, err := b.IsEnabled(ctx)
	if err != nil {
		return err
	}
	if !enabled {
		return fmt.Errorf("%w: button %s is disabled", common.ErrNotInteractable, b.Locator())
	}
	return b.browser().Click(ctx, b.Locator())
}

// Read returns the button label.
func (b *Button) Read(ctx context.Context) (any, error) {
	return b.text(ctx, b.Locator())
}

// Switch is a PatternFly switch: a label wrapping a checkbox input.
type Switch struct{ base }

var (
	_ Fillable  = &Switch{}
	_ Readable  = &Switch{}
	_ Clickable = &Switch{}
)

// NewSwitch binds a Switch to its OUIA component id.
func NewSwitch(parent Parent, id string) *Switch {
	return &Switch{newBase(parent, ".//label[@data-ouia-component-id="+common.XPathLiteral(id)+"]")}
}

// InputLocator returns the locator of the checkbox input holding the state.
func (s *Switch) InputLocator() string { return s.sub(".//input") }

// Fill turns the switch on or off.
func (s *Switch) Fill(ctx context.Context, value any) (bool, error) {
	want, err := asBool(value)
	if err != nil {
		return false, err
	}
	return s.setSelected(ctx, s.InputLocator(), s.Locator(), want)
}

// Read returns whether the switch is on.
func (s *Switch) Read(ctx context.Context) (any, error) {
	if err := s.activate(ctx); err != nil {
		return nil, err
	}
	return s.browser().IsSelected(ctx, s.InputLocator())
}

// Click flips the switch.
func (s *Switch) Click(ctx context.Context) error {
	return s.click(ctx, s.Locator())
}
