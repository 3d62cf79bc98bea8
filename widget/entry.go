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

	"github.com/PuerkitoBio/goquery"

	"github.com/liuxd6825/pageflow/common"
)

func entryLocator(name string) string {
	return ".//dt[normalize-space(.)=" + common.XPathLiteral(name) + "]/following-sibling::dd[1]"
}

// ReadOnlyEntry is the value of a description list entry.
type ReadOnlyEntry struct{ base }

var _ Readable = &ReadOnlyEntry{}

// NewReadOnlyEntry binds the entry labelled name.
func NewReadOnlyEntry(parent Parent, name string) *ReadOnlyEntry {
	return &ReadOnlyEntry{newBase(parent, entryLocator(name))}
}

// Read returns the entry value.
func (e *ReadOnlyEntry) Read(ctx context.Context) (any, error) {
	return e.text(ctx, e.Locator())
}

// EditableEntry is an inline-editable description list entry: an edit
// button swaps the value for an input with save and cancel buttons.
type EditableEntry struct{ base }

var (
	_ Fillable = &EditableEntry{}
	_ Readable = &EditableEntry{}
)

// NewEditableEntry binds the entry labelled name.
func NewEditableEntry(parent Parent, name string) *EditableEntry {
	return &EditableEntry{newBase(parent, entryLocator(name))}
}

// Read returns the entry value.
func (e *EditableEntry) Read(ctx context.Context) (any, error) {
	return e.text(ctx, e.Locator())
}

// Fill edits the entry and saves it.
func (e *EditableEntry) Fill(ctx context.Context, value any) (bool, error) {
	s, err := asString(value)
	if err != nil {
		return false, err
	}
	current, err := e.text(ctx, e.Locator())
	if err != nil {
		return false, err
	}
	if current == s {
		return false, nil
	}
	b := e.browser()
	if err := b.Click(ctx, e.sub(".//button[contains(@aria-label, 'edit')]")); err != nil {
		return false, err
	}
	input := e.sub(".//*[self::input or self::textarea]")
	if err := b.Clear(ctx, input); err != nil {
		return false, err
	}
	if err := b.SendKeys(ctx, input, s); err != nil {
		return false, err
	}
	if err := b.Click(ctx, e.sub(".//button[contains(@aria-label, 'submit') or contains(@aria-label, 'save')]")); err != nil {
		return false, err
	}
	return true, nil
}

// DescriptionList reads a PatternFly description list, like the details
// card of a host, into a map keyed by the attributized labels.
type DescriptionList struct{ base }

var _ Readable = &DescriptionList{}

// NewDescriptionList binds a description list to loc.
func NewDescriptionList(parent Parent, loc string) *DescriptionList {
	return &DescriptionList{newBase(parent, loc)}
}

// Read implements Readable.
func (d *DescriptionList) Read(ctx context.Context) (any, error) {
	return d.Items(ctx)
}

// Items returns the label/value pairs.
func (d *DescriptionList) Items(ctx context.Context) (map[string]string, error) {
	if err := d.activate(ctx); err != nil {
		return nil, err
	}
	html, err := d.browser().OuterHTML(ctx, d.Locator())
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing description list: %w", err)
	}

	items := make(map[string]string)
	var mismatch error
	doc.Find(".pf-c-description-list__group").Each(func(_ int, g *goquery.Selection) {
		dt, dd := g.Find("dt"), g.Find("dd")
		if dt.Length() != dd.Length() {
			mismatch = fmt.Errorf("description list group has %d labels and %d values", dt.Length(), dd.Length())
			return
		}
		dt.Each(func(i int, s *goquery.Selection) {
			items[Attributize(s.Text())] = strings.TrimSpace(dd.Eq(i).Text())
		})
	})
	if mismatch != nil {
		return nil, mismatch
	}
	return items, nil
}
