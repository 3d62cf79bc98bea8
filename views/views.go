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

// Package views holds the page objects of the application screens. A view
// binds widgets to locators and carries the readiness predicate the
// navigator waits on before a screen is used.
package views

import (
	"context"

	"github.com/liuxd6825/pageflow/common"
	"github.com/liuxd6825/pageflow/widget"
)

const accountDropdown = ".//div[@data-ouia-component-id='user-info-dropdown' or @id='account_menu']"

// BaseLoggedInView is the frame every screen shares once logged in: the
// navigation menu and the account dropdown.
type BaseLoggedInView struct {
	*widget.View
	Menu    *widget.NavMenu
	Account *widget.Dropdown
}

func newBaseLoggedInView(name string, b common.Browser) *BaseLoggedInView {
	v := widget.NewView(name, b, "")
	return &BaseLoggedInView{
		View:    v,
		Menu:    widget.NewNavMenu(v),
		Account: widget.NewDropdown(v, accountDropdown),
	}
}

// NewBaseLoggedInView binds the frame alone. It is displayed when the menu is.
func NewBaseLoggedInView(b common.Browser) *BaseLoggedInView {
	v := newBaseLoggedInView("BaseLoggedInView", b)
	v.SetDisplayed(v.Menu.IsDisplayed)
	return v
}

// Logout signs the current user out.
func (v *BaseLoggedInView) Logout(ctx context.Context) error {
	return v.Account.ItemSelect(ctx, "Log Out")
}

// LoginView is the login form.
type LoginView struct {
	*widget.View
	Username *widget.TextInput
	Password *widget.TextInput
	Submit   *widget.Button
}

// NewLoginView binds the login form.
func NewLoginView(b common.Browser) *LoginView {
	v := &LoginView{View: widget.NewView("LoginView", b, "")}
	v.Username = widget.NewTextInputByID(v, "login_login")
	v.Password = widget.NewTextInputByID(v, "login_password")
	v.Submit = widget.NewButton(v, ".//button[@type='submit']")
	v.Add("username", v.Username)
	v.Add("password", v.Password)
	v.Add("submit", v.Submit)
	v.SetDisplayed(v.Username.IsDisplayed)
	return v
}

// Login fills the credentials and submits the form.
func (v *LoginView) Login(ctx context.Context, username, password string) error {
	if _, err := v.Fill(ctx, map[string]any{"username": username, "password": password}); err != nil {
		return err
	}
	return v.Submit.Click(ctx)
}

// Searchable is a search box over a table, as found on list screens.
type Searchable struct {
	Searchbox *widget.Search
	Table     *widget.Table
	browser   common.Browser
}

func newSearchable(v *widget.View, search *widget.Search, table *widget.Table) Searchable {
	v.Add("searchbox", search)
	v.Add("table", table)
	return Searchable{Searchbox: search, Table: table, browser: v.Browser()}
}

// Search submits query and returns the matching rows once the page settled.
func (s Searchable) Search(ctx context.Context, query string) ([]map[string]string, error) {
	if err := s.Searchbox.Search(ctx, query); err != nil {
		return nil, err
	}
	if err := common.EnsurePageSafe(ctx, s.browser, common.DefaultPageSafeTimeout); err != nil {
		return nil, err
	}
	return s.Table.ReadRows(ctx)
}

func textCell(loc string) widget.CellWidget {
	return func(cell widget.Parent) widget.Widget { return widget.NewText(cell, loc) }
}

func checkboxCell(loc string) widget.CellWidget {
	return func(cell widget.Parent) widget.Widget { return widget.NewCheckbox(cell, loc) }
}

func dropdownCell(loc string) widget.CellWidget {
	return func(cell widget.Parent) widget.Widget { return widget.NewDropdown(cell, loc) }
}

const (
	cellCheckbox = ".//input[@type='checkbox']"
	cellDropdown = ".//div[contains(@class, 'pf-c-dropdown')]"
)

// trailReady turns a breadcrumb check into a readiness predicate. A
// missing or empty breadcrumb is never ready.
func trailReady(bc *widget.BreadCrumb, ok func(widget.Trail) bool) func(context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		trail, err := bc.Trail(ctx)
		if err != nil || len(trail) == 0 {
			return false, err
		}
		return ok(trail), nil
	}
}

// allDisplayed is a readiness predicate holding when every widget is shown.
func allDisplayed(ws ...widget.Widget) func(context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		for _, w := range ws {
			shown, err := w.IsDisplayed(ctx)
			if err != nil || !shown {
				return false, err
			}
		}
		return true, nil
	}
}
