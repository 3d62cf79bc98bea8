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
	"strings"

	"github.com/liuxd6825/pageflow/common"
)

// NavMenu is the vertical navigation of the application.
type NavMenu struct{ base }

var _ Readable = &NavMenu{}

// NewNavMenu binds the main navigation.
func NewNavMenu(parent Parent) *NavMenu {
	return &NavMenu{newBase(parent, "//nav[contains(@class, 'pf-c-nav')]")}
}

// ItemLocator returns the locator of a menu entry.
func (m *NavMenu) ItemLocator(name string) string {
	return m.sub(".//*[(self::a or self::button or self::h2) and normalize-space(.)=" + common.XPathLiteral(name) + "]")
}

// Select walks path: collapsed groups are expanded and the last entry is clicked.
func (m *NavMenu) Select(ctx context.Context, path ...string) error {
	if err := m.activate(ctx); err != nil {
		return err
	}
	b := m.browser()
	for i, name := range path {
		loc := m.ItemLocator(name)
		present, err := b.IsPresent(ctx, loc)
		if err != nil {
			return err
		}
		if !present {
			return &common.NotFoundError{What: "menu item", Query: strings.Join(path[:i+1], " > ")}
		}
		if i == len(path)-1 {
			return b.Click(ctx, loc)
		}
		expanded, err := b.Attribute(ctx, loc, "aria-expanded")
		if err != nil {
			return err
		}
		if expanded == "false" {
			if err := b.Click(ctx, loc); err != nil {
				return err
			}
		}
	}
	return nil
}

// Read returns the label of the current entry.
func (m *NavMenu) Read(ctx context.Context) (any, error) {
	return m.text(ctx, m.sub(".//a[contains(@class, 'pf-m-current')]"))
}
