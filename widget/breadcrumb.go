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

// BreadCrumb is the breadcrumb trail at the top of a screen.
type BreadCrumb struct{ base }

var _ Readable = &BreadCrumb{}

const breadCrumbLocator = ".//*[self::ol[contains(@class, 'breadcrumb')] or self::nav[contains(@class, 'pf-c-breadcrumb')]]"

// NewBreadCrumb binds the breadcrumb of the parent.
func NewBreadCrumb(parent Parent) *BreadCrumb {
	return &BreadCrumb{newBase(parent, breadCrumbLocator)}
}

// NewOUIABreadCrumb binds a breadcrumb by OUIA component id.
func NewOUIABreadCrumb(parent Parent, id string) *BreadCrumb {
	return &BreadCrumb{newBase(parent, ".//nav[@data-ouia-component-id="+common.XPathLiteral(id)+"]")}
}

// ItemsLocator returns the locator matching every breadcrumb entry.
func (b *BreadCrumb) ItemsLocator() string { return b.sub(".//li") }

// Locations returns the breadcrumb entries, root first.
func (b *BreadCrumb) Locations(ctx context.Context) ([]string, error) {
	if err := b.activate(ctx); err != nil {
		return nil, err
	}
	locs, err := b.browser().Texts(ctx, b.ItemsLocator())
	if err != nil {
		return nil, err
	}
	for i := range locs {
		locs[i] = strings.TrimSpace(locs[i])
	}
	return locs, nil
}

// Read returns the last breadcrumb entry, i.e. the current screen.
func (b *BreadCrumb) Read(ctx context.Context) (any, error) {
	return b.Current(ctx)
}

// Current is Read with a concrete type.
func (b *BreadCrumb) Current(ctx context.Context) (string, error) {
	locs, err := b.Locations(ctx)
	if err != nil || len(locs) == 0 {
		return "", err
	}
	return locs[len(locs)-1], nil
}

// Trail is a snapshot of a breadcrumb used by readiness predicates.
type Trail []string

// Trail reads the breadcrumb once; a missing breadcrumb gives an empty trail.
func (b *BreadCrumb) Trail(ctx context.Context) (Trail, error) {
	shown, err := b.IsDisplayed(ctx)
	if err != nil || !shown {
		return nil, err
	}
	locs, err := b.Locations(ctx)
	return Trail(locs), err
}

// At returns the i-th location or "".
func (t Trail) At(i int) string {
	if i < 0 || i >= len(t) {
		return ""
	}
	return t[i]
}

// Last returns the current location or "".
func (t Trail) Last() string {
	return t.At(len(t) - 1)
}
