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
	"strings"

	"github.com/liuxd6825/pageflow/common"
)

// Dropdown is a PatternFly dropdown: a toggle opening a menu of items.
type Dropdown struct {
	base
	toggle string
	item   string
}

var (
	_ Fillable = &Dropdown{}
	_ Readable = &Dropdown{}
)

const (
	dropdownToggle = ".//button[contains(@class, 'pf-c-dropdown__toggle')]"
	dropdownItems  = ".//*[contains(@class, 'pf-c-dropdown__menu-item')]"
)

// NewDropdown binds a Dropdown to loc.
func NewDropdown(parent Parent, loc string) *Dropdown {
	return &Dropdown{base: newBase(parent, loc), toggle: dropdownToggle, item: dropdownItems}
}

// ToggleLocator returns the locator of the toggle opening the menu.
func (d *Dropdown) ToggleLocator() string { return d.sub(d.toggle) }

// ItemLocator returns the locator of the named item.
func (d *Dropdown) ItemLocator(name string) string {
	return d.sub(d.item + "[normalize-space(.)=" + common.XPathLiteral(name) + "]")
}

// IsOpen reports whether the menu is expanded.
func (d *Dropdown) IsOpen(ctx context.Context) (bool, error) {
	v, err := d.browser().Attribute(ctx, d.sub(d.toggle), "aria-expanded")
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// Open expands the menu unless it already is.
func (d *Dropdown) Open(ctx context.Context) error {
	if err := d.activate(ctx); err != nil {
		return err
	}
	open, err := d.IsOpen(ctx)
	if err != nil || open {
		return err
	}
	return d.browser().Click(ctx, d.sub(d.toggle))
}

// Items returns the labels of the menu items.
func (d *Dropdown) Items(ctx context.Context) ([]string, error) {
	if err := d.Open(ctx); err != nil {
		return nil, err
	}
	items, err := d.browser().Texts(ctx, d.sub(d.item))
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	return items, nil
}

// ItemSelect opens the menu and clicks the named item.
func (d *Dropdown) ItemSelect(ctx context.Context, name string) error {
	if err := d.Open(ctx); err != nil {
		return err
	}
	loc := d.ItemLocator(name)
	present, err := d.browser().IsPresent(ctx, loc)
	if err != nil {
		return err
	}
	if !present {
		return &common.NotFoundError{What: "dropdown item", Query: name}
	}
	return d.browser().Click(ctx, loc)
}

// Fill selects the item named by value.
func (d *Dropdown) Fill(ctx context.Context, value any) (bool, error) {
	s, err := asString(value)
	if err != nil {
		return false, err
	}
	current, err := d.text(ctx, d.sub(d.toggle))
	if err == nil && current == s {
		return false, nil
	}
	if err := d.ItemSelect(ctx, s); err != nil {
		return false, err
	}
	return true, nil
}

// Read returns the toggle label, which is the selected item for select-like dropdowns.
func (d *Dropdown) Read(ctx context.Context) (any, error) {
	return d.text(ctx, d.sub(d.toggle))
}

// ActionsDropdown is a split button: a default action plus a kebab toggle
// with further actions.
type ActionsDropdown struct {
	*Dropdown
}

// NewActionsDropdown binds an ActionsDropdown to loc.
func NewActionsDropdown(parent Parent, loc string) *ActionsDropdown {
	d := NewDropdown(parent, loc)
	d.toggle = ".//button[contains(@class, 'pf-c-dropdown__toggle-button') or @aria-label='Actions' or @aria-label='Select']"
	return &ActionsDropdown{d}
}

// Fill triggers the named action.
func (a *ActionsDropdown) Fill(ctx context.Context, value any) (bool, error) {
	s, err := asString(value)
	if err != nil {
		return false, err
	}
	if err := a.ItemSelect(ctx, s); err != nil {
		return false, err
	}
	return true, nil
}

// Select is a native <select>.
type Select struct{ base }

var (
	_ Fillable = &Select{}
	_ Readable = &Select{}
)

// NewSelect binds a Select to loc.
func NewSelect(parent Parent, loc string) *Select {
	return &Select{newBase(parent, loc)}
}

// Options returns the option labels.
func (s *Select) Options(ctx context.Context) ([]string, error) {
	if err := s.activate(ctx); err != nil {
		return nil, err
	}
	opts, err := s.browser().Texts(ctx, s.sub("./option"))
	if err != nil {
		return nil, err
	}
	for i := range opts {
		opts[i] = strings.TrimSpace(opts[i])
	}
	return opts, nil
}

// Fill selects the option with the given label.
func (s *Select) Fill(ctx context.Context, value any) (bool, error) {
	label, err := asString(value)
	if err != nil {
		return false, err
	}
	current, err := s.Read(ctx)
	if err == nil && current == label {
		return false, nil
	}
	loc := s.sub("./option[normalize-space(.)=" + common.XPathLiteral(label) + "]")
	present, err := s.browser().IsPresent(ctx, loc)
	if err != nil {
		return false, err
	}
	if !present {
		return false, &common.NotFoundError{What: "select option", Query: label}
	}
	if err := s.browser().Click(ctx, loc); err != nil {
		return false, err
	}
	return true, nil
}

// Read returns the label of the selected option.
func (s *Select) Read(ctx context.Context) (any, error) {
	opts, err := s.Options(ctx)
	if err != nil {
		return nil, err
	}
	for i, label := range opts {
		selected, err := s.browser().IsSelected(ctx, common.Nth(s.sub("./option"), i+1))
		if err != nil {
			return nil, err
		}
		if selected {
			return label, nil
		}
	}
	return nil, fmt.Errorf("%w: no option selected in %s", common.ErrElementNotFound, s.Locator())
}
