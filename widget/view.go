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
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/liuxd6825/pageflow/common"
)

// View is a screen or a region of a screen: an ordered set of fields with
// a readiness predicate. Nested views (tabs, tiles, dialogs) have a parent
// and are activated before any of their widgets is touched.
type View struct {
	name    string
	browser common.Browser
	parent  Parent
	root    string

	fields []Field
	index  map[string]int

	displayed  func(ctx context.Context) (bool, error)
	onActivate func(ctx context.Context) error
	beforeFill func(ctx context.Context, values map[string]any) error
	afterFill  func(ctx context.Context, changed bool) error
}

var (
	_ Parent   = &View{}
	_ Fillable = &View{}
	_ Readable = &View{}
)

// NewView creates a top level view. root may be empty for a whole page.
func NewView(name string, b common.Browser, root string) *View {
	return &View{name: name, browser: b, root: root, index: make(map[string]int)}
}

// Nested creates a child view rooted at root (relative to v) and registers
// it as field name of v.
func (v *View) Nested(name, root string) *View {
	child := &View{name: name, browser: v.browser, parent: v, root: root, index: make(map[string]int)}
	v.Add(name, child)
	return child
}

// Name returns the view name used in logs and errors.
func (v *View) Name() string { return v.name }

// Browser implements Parent.
func (v *View) Browser() common.Browser { return v.browser }

// Locator implements Parent and Widget.
func (v *View) Locator() string {
	if v.parent == nil {
		return v.root
	}
	return common.JoinLocator(v.parent.Locator(), v.root)
}

// Activate activates the parent chain and then runs the view's own
// activation hook.
func (v *View) Activate(ctx context.Context) error {
	if v.parent != nil {
		if err := v.parent.Activate(ctx); err != nil {
			return err
		}
	}
	if v.onActivate != nil {
		if err := v.onActivate(ctx); err != nil {
			return fmt.Errorf("activating %s: %w", v.name, err)
		}
	}
	return nil
}

// Add registers w under name. Fields keep their registration order for Fill and Read.
func (v *View) Add(name string, w Widget) {
	if i, ok := v.index[name]; ok {
		v.fields[i] = NewField(name, w)
		return
	}
	v.index[name] = len(v.fields)
	v.fields = append(v.fields, NewField(name, w))
}

// Field returns the named field.
func (v *View) Field(name string) (Field, bool) {
	i, ok := v.index[name]
	if !ok {
		return Field{}, false
	}
	return v.fields[i], true
}

// Fields returns the fields in registration order.
func (v *View) Fields() []Field {
	return append([]Field(nil), v.fields...)
}

// SetDisplayed sets the readiness predicate.
func (v *View) SetDisplayed(fn func(ctx context.Context) (bool, error)) { v.displayed = fn }

// OnActivate sets the hook run before the view's widgets are accessed.
func (v *View) OnActivate(fn func(ctx context.Context) error) { v.onActivate = fn }

// BeforeFill sets the hook run before Fill touches any field.
func (v *View) BeforeFill(fn func(ctx context.Context, values map[string]any) error) { v.beforeFill = fn }

// AfterFill sets the hook run after Fill completed.
func (v *View) AfterFill(fn func(ctx context.Context, changed bool) error) { v.afterFill = fn }

// IsDisplayed runs the readiness predicate. Without one, a rooted view is
// displayed when its root is visible and a page view always is.
func (v *View) IsDisplayed(ctx context.Context) (bool, error) {
	if v.displayed != nil {
		return v.displayed(ctx)
	}
	if loc := v.Locator(); loc != "" {
		return v.browser.IsDisplayed(ctx, loc)
	}
	return true, nil
}

// WaitDisplayed polls the readiness predicate until it holds.
func (v *View) WaitDisplayed(ctx context.Context, timeout time.Duration) error {
	err := common.WaitFor(ctx, v.name,
		common.PollOptions{Timeout: timeout, HandleErrors: true},
		v.IsDisplayed)
	var terr *common.TimeoutError
	if asTimeout(err, &terr) {
		return &common.DisplayTimeoutError{View: v.name, Timeout: timeout, Err: err}
	}
	return err
}

// Fill fills the fields named in values, in field order. values must be a
// map[string]any; nested views take nested maps.
func (v *View) Fill(ctx context.Context, values any) (bool, error) {
	m, ok := values.(map[string]any)
	if !ok {
		return false, fmt.Errorf("%s: fill expects map[string]any, got %T", v.name, values)
	}
	var unknown []string
	for k := range m {
		if _, ok := v.index[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return false, fmt.Errorf("%s has no fields named %s", v.name, strings.Join(unknown, ", "))
	}

	if err := v.Activate(ctx); err != nil {
		return false, err
	}
	if v.beforeFill != nil {
		if err := v.beforeFill(ctx, m); err != nil {
			return false, fmt.Errorf("%s before fill: %w", v.name, err)
		}
	}

	changed := false
	for _, f := range v.fields {
		value, ok := m[f.Name]
		if !ok || value == nil {
			continue
		}
		c, err := f.Fill(ctx, value)
		if err != nil {
			return changed, fmt.Errorf("%s: %w", v.name, err)
		}
		changed = changed || c
	}

	if v.afterFill != nil {
		if err := v.afterFill(ctx, changed); err != nil {
			return changed, fmt.Errorf("%s after fill: %w", v.name, err)
		}
	}
	return changed, nil
}

// Read implements Readable by reading every readable field.
func (v *View) Read(ctx context.Context) (any, error) {
	return v.ReadFields(ctx)
}

// ReadFields reads the named fields, or every readable field when no names
// are given. Fields that are not displayed are skipped in the latter case.
func (v *View) ReadFields(ctx context.Context, names ...string) (map[string]any, error) {
	if err := v.Activate(ctx); err != nil {
		return nil, err
	}

	res := make(map[string]any)
	if len(names) > 0 {
		for _, name := range names {
			f, ok := v.Field(name)
			if !ok {
				return nil, fmt.Errorf("%s has no field named %s", v.name, name)
			}
			val, err := f.Read(ctx)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", v.name, err)
			}
			res[name] = val
		}
		return res, nil
	}

	for _, f := range v.fields {
		if !f.Can(CanRead) {
			continue
		}
		if _, nested := f.Widget.(*View); !nested {
			shown, err := f.Widget.IsDisplayed(ctx)
			if err != nil || !shown {
				continue
			}
		}
		val, err := f.Read(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.name, err)
		}
		res[f.Name] = val
	}
	return res, nil
}

func asTimeout(err error, target **common.TimeoutError) bool {
	return err != nil && errors.As(err, target)
}
