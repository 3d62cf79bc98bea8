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

	"github.com/liuxd6825/pageflow/common"
)

// TabLocator returns the locator of the tab labelled name.
func TabLocator(name string) string {
	return ".//*[(self::a or self::button) and ancestor::*[contains(@class, 'pf-c-tabs') or contains(@class, 'nav-tabs')]" +
		" and normalize-space(.)=" + common.XPathLiteral(name) + "]"
}

// NewTab creates a tab of parent. tabLoc locates the tab handle; the tab
// content shares the parent root. Accessing any widget of the tab selects it
// first, unless it already is the current one.
func NewTab(parent *View, name, tabLoc string) *View {
	return NewTabWithRoot(parent, name, "", tabLoc)
}

// NewTabWithRoot is NewTab for tabs whose content lives under its own root.
func NewTabWithRoot(parent *View, name, root, tabLoc string) *View {
	tab := parent.Nested(name, root)
	tab.OnActivate(func(ctx context.Context) error {
		b := parent.Browser()
		loc := common.JoinLocator(parent.Locator(), tabLoc)
		item := loc + "/ancestor::li[1]"
		if present, err := b.IsPresent(ctx, item); err != nil {
			return err
		} else if present {
			classes, err := b.Classes(ctx, item)
			if err != nil {
				return err
			}
			for _, c := range classes {
				if c == "pf-m-current" || c == "active" {
					return nil
				}
			}
		} else if selected, _ := b.Attribute(ctx, loc, "aria-selected"); selected == "true" {
			return nil
		}
		return b.Click(ctx, loc)
	})
	tab.SetDisplayed(func(ctx context.Context) (bool, error) {
		return parent.Browser().IsDisplayed(ctx, common.JoinLocator(parent.Locator(), tabLoc))
	})
	return tab
}

// NewNamedTab is NewTab locating the handle by its label.
func NewNamedTab(parent *View, name, label string) *View {
	return NewTab(parent, name, TabLocator(label))
}
