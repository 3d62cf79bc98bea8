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
)

// Capability is a bit set of what a field can do.
type Capability uint8

// Field capabilities.
const (
	CanFill Capability = 1 << iota
	CanRead
	CanClick
)

func (c Capability) String() string {
	s := ""
	for _, n := range []struct {
		c    Capability
		name string
	}{{CanFill, "fill"}, {CanRead, "read"}, {CanClick, "click"}} {
		if c&n.c != 0 {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	if s == "" {
		return "none"
	}
	return s
}

// Field is a named widget of a View, tagged with its capabilities.
type Field struct {
	Name   string
	Caps   Capability
	Widget Widget
}

// NewField inspects w and tags it with the capabilities it implements.
func NewField(name string, w Widget) Field {
	f := Field{Name: name, Widget: w}
	if _, ok := w.(Fillable); ok {
		f.Caps |= CanFill
	}
	if _, ok := w.(Readable); ok {
		f.Caps |= CanRead
	}
	if _, ok := w.(Clickable); ok {
		f.Caps |= CanClick
	}
	return f
}

// Can reports whether the field has all of caps.
func (f Field) Can(caps Capability) bool {
	return f.Caps&caps == caps
}

// Fill fills the field, failing if it is not fillable.
func (f Field) Fill(ctx context.Context, value any) (bool, error) {
	if !f.Can(CanFill) {
		return false, fmt.Errorf("field %q can not be filled (%s)", f.Name, f.Caps)
	}
	changed, err := f.Widget.(Fillable).Fill(ctx, value)
	if err != nil {
		return changed, fmt.Errorf("filling %q: %w", f.Name, err)
	}
	return changed, nil
}

// Read reads the field, failing if it is not readable.
func (f Field) Read(ctx context.Context) (any, error) {
	if !f.Can(CanRead) {
		return nil, fmt.Errorf("field %q can not be read (%s)", f.Name, f.Caps)
	}
	v, err := f.Widget.(Readable).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", f.Name, err)
	}
	return v, nil
}

// Click clicks the field, failing if it is not clickable.
func (f Field) Click(ctx context.Context) error {
	if !f.Can(CanClick) {
		return fmt.Errorf("field %q can not be clicked (%s)", f.Name, f.Caps)
	}
	return f.Widget.(Clickable).Click(ctx)
}
