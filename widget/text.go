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
	"errors"

	"github.com/liuxd6825/pageflow/common"
)

// Text is a read-only piece of text that can also be clicked, like a link.
type Text struct{ base }

var (
	_ Readable  = &Text{}
	_ Clickable = &Text{}
)

// NewText binds a Text to loc.
func NewText(parent Parent, loc string) *Text {
	return &Text{newBase(parent, loc)}
}

// Read returns the trimmed text.
func (t *Text) Read(ctx context.Context) (any, error) {
	return t.Text(ctx)
}

// Text is Read with a concrete type.
func (t *Text) Text(ctx context.Context) (string, error) {
	return t.text(ctx, t.Locator())
}

// Click clicks the text.
func (t *Text) Click(ctx context.Context) error {
	return t.click(ctx, t.Locator())
}

// TextInput is an <input> or <textarea>.
type TextInput struct{ base }

var (
	_ Fillable = &TextInput{}
	_ Readable = &TextInput{}
)

// NewTextInput binds a TextInput to loc.
func NewTextInput(parent Parent, loc string) *TextInput {
	return &TextInput{newBase(parent, loc)}
}

// NewTextInputByID binds a TextInput to the input with the given id.
func NewTextInputByID(parent Parent, id string) *TextInput {
	return NewTextInput(parent,
		".//*[(self::input or self::textarea) and @id="+common.XPathLiteral(id)+"]")
}

// NewTextInputByName binds a TextInput to the input with the given name attribute.
func NewTextInputByName(parent Parent, name string) *TextInput {
	return NewTextInput(parent,
		".//*[(self::input or self::textarea) and @name="+common.XPathLiteral(name)+"]")
}

// Fill replaces the input value. It is a no-op when the value is already set.
func (t *TextInput) Fill(ctx context.Context, value any) (bool, error) {
	s, err := asString(value)
	if err != nil {
		return false, err
	}
	return t.typeValue(ctx, t.Locator(), s)
}

// Read returns the current input value.
func (t *TextInput) Read(ctx context.Context) (any, error) {
	if err := t.activate(ctx); err != nil {
		return nil, err
	}
	return t.browser().Value(ctx, t.Locator())
}

// Checkbox is a checkbox input.
type Checkbox struct{ base }

var (
	_ Fillable  = &Checkbox{}
	_ Readable  = &Checkbox{}
	_ Clickable = &Checkbox{}
)

// NewCheckbox binds a Checkbox to loc.
func NewCheckbox(parent Parent, loc string) *Checkbox {
	return &Checkbox{newBase(parent, loc)}
}

// NewCheckboxByID binds a Checkbox to the input with the given id.
func NewCheckboxByID(parent Parent, id string) *Checkbox {
	return NewCheckbox(parent, ".//input[@type='checkbox' and @id="+common.XPathLiteral(id)+"]")
}

// Fill checks or unchecks the box.
func (c *Checkbox) Fill(ctx context.Context, value any) (bool, error) {
	want, err := asBool(value)
	if err != nil {
		return false, err
	}
	return c.setSelected(ctx, c.Locator(), c.Locator(), want)
}

// Read returns whether the box is checked.
func (c *Checkbox) Read(ctx context.Context) (any, error) {
	if err := c.activate(ctx); err != nil {
		return nil, err
	}
	return c.browser().IsSelected(ctx, c.Locator())
}

// Click toggles the box.
func (c *Checkbox) Click(ctx context.Context) error {
	return c.click(ctx, c.Locator())
}

// Radio is a single radio button. It can only be selected.
type Radio struct{ base }

var _ Fillable = &Radio{}

// NewRadio binds a Radio to loc.
func NewRadio(parent Parent, loc string) *Radio {
	return &Radio{newBase(parent, loc)}
}

// NewRadioByID binds a Radio to the input with the given id.
func NewRadioByID(parent Parent, id string) *Radio {
	return NewRadio(parent, ".//input[@type='radio' and @id="+common.XPathLiteral(id)+"]")
}

// Fill selects the radio for a true value; false is rejected since a radio
// is unselected by choosing another one.
func (r *Radio) Fill(ctx context.Context, value any) (bool, error) {
	want, err := asBool(value)
	if err != nil {
		return false, err
	}
	if !want {
		return false, errRadioUnselect
	}
	return r.setSelected(ctx, r.Locator(), r.Locator(), true)
}

// Read returns whether the radio is selected.
func (r *Radio) Read(ctx context.Context) (any, error) {
	if err := r.activate(ctx); err != nil {
		return nil, err
	}
	return r.browser().IsSelected(ctx, r.Locator())
}

var errRadioUnselect = errors.New("a radio button can not be unselected directly")
