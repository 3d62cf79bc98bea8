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

package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liuxd6825/pageflow/common"
	"github.com/liuxd6825/pageflow/widget"
)

// editDepth is the breadcrumb depth of the content view details screen;
// deeper trails belong to version screens.
const editDepth = 3

// NormalizeVersionQuery rewrites a version label into a query the search
// index understands: "Version 1.0" becomes "version = 1". Other queries,
// normalized ones included, are returned unchanged.
func NormalizeVersionQuery(query string) string {
	if !strings.HasPrefix(query, "V") || !strings.Contains(query, ".") {
		return query
	}
	fields := strings.Fields(query)
	if len(fields) < 2 {
		return query
	}
	major, _, _ := strings.Cut(fields[1], ".")
	return "version = " + major
}

// ContentViewTableView lists the content views.
type ContentViewTableView struct {
	*BaseLoggedInView
	Searchable
	Title             *widget.Text
	CreateContentView *widget.Button
}

// NewContentViewTableView binds the content views list.
func NewContentViewTableView(b common.Browser) *ContentViewTableView {
	base := newBaseLoggedInView("ContentViewTableView", b)
	v := &ContentViewTableView{
		BaseLoggedInView:  base,
		Title:             widget.NewText(base.View, `.//h1[@data-ouia-component-id="cvPageHeaderText"]`),
		CreateContentView: widget.NewOUIAButton(base.View, "create-content-view"),
	}
	v.Add("title", v.Title)
	v.Searchable = newSearchable(base.View, widget.NewPF4Search(base.View),
		widget.NewExpandableTable(base.View, "content-views-table").
			WithColumn("Name", textCell("./a")).
			WithColumn("Last task", textCell(".//a")).
			WithColumn("Latest version", textCell(".//a")))
	v.SetDisplayed(v.CreateContentView.IsDisplayed)
	return v
}

// ContentViewTile is one of the type tiles of the create dialog. Touching
// any of its widgets selects the tile first.
type ContentViewTile struct {
	*widget.View
	Tile *widget.Text
}

func newContentViewTile(parent *widget.View, name, tileLoc string) *ContentViewTile {
	t := &ContentViewTile{View: parent.Nested(name, "")}
	t.Tile = widget.NewText(parent, tileLoc)
	t.OnActivate(t.Tile.Click)
	return t
}

// ContentViewCreateView is the create content view dialog.
type ContentViewCreateView struct {
	*BaseLoggedInView
	Title       *widget.Text
	Name        *widget.TextInput
	Label       *widget.TextInput
	Description *widget.TextInput
	Submit      *widget.Button
	Cancel      *widget.Button

	Component         *ContentViewTile
	SolveDependencies *widget.Checkbox
	ImportOnly        *widget.Checkbox

	Composite   *ContentViewTile
	AutoPublish *widget.Checkbox
}

// NewContentViewCreateView binds the create dialog.
func NewContentViewCreateView(b common.Browser) *ContentViewCreateView {
	base := newBaseLoggedInView("ContentViewCreateView", b)
	p := base.View
	v := &ContentViewCreateView{
		BaseLoggedInView: base,
		Title:            widget.NewText(p, `.//div[@data-ouia-component-id="create-content-view-modal"]`),
		Name:             widget.NewTextInputByID(p, "name"),
		Label:            widget.NewTextInputByID(p, "label"),
		Description:      widget.NewTextInputByID(p, "description"),
		Submit:           widget.NewOUIAButton(p, "create-content-view-form-submit"),
		Cancel:           widget.NewOUIAButton(p, "create-content-view-form-cancel"),
	}
	v.Add("title", v.Title)
	v.Add("name", v.Name)
	v.Add("label", v.Label)
	v.Add("description", v.Description)
	v.Add("submit", v.Submit)
	v.Add("cancel", v.Cancel)

	v.Component = newContentViewTile(p, "component", `//div[contains(@id, "component")]`)
	v.SolveDependencies = widget.NewCheckboxByID(v.Component, "dependencies")
	v.ImportOnly = widget.NewCheckboxByID(v.Component, "importOnly")
	v.Component.Add("solve_dependencies", v.SolveDependencies)
	v.Component.Add("import_only", v.ImportOnly)

	v.Composite = newContentViewTile(p, "composite", `//div[contains(@id, "composite")]`)
	v.AutoPublish = widget.NewCheckboxByID(v.Composite, "autoPublish")
	v.Composite.Add("auto_publish", v.AutoPublish)

	v.SetDisplayed(allDisplayed(v.Title, v.Label))
	// the submit button is only rendered once the required fields are set
	v.AfterFill(func(ctx context.Context, _ bool) error {
		return v.Submit.WaitDisplayed(ctx, common.DefaultTimeout)
	})
	return v
}

// ContentViewDetailsTab is the details tab of a content view.
type ContentViewDetailsTab struct {
	*widget.View
	Name              *widget.EditableEntry
	Label             *widget.ReadOnlyEntry
	Type              *widget.ReadOnlyEntry
	Description       *widget.EditableEntry
	SolveDependencies *widget.Switch
	ImportOnly        *widget.Switch
}

// ContentViewVersionsTab lists the versions of a content view.
type ContentViewVersionsTab struct {
	*widget.View
	Searchbox     *widget.Search
	Table         *widget.Table
	PublishButton *widget.Button
}

// Search looks a version up. The search box only knows version numbers, so
// labels like "Version 1.0" are normalized first.
func (t *ContentViewVersionsTab) Search(ctx context.Context, version string) ([]map[string]string, error) {
	if err := t.Searchbox.Search(ctx, NormalizeVersionQuery(version)); err != nil {
		return nil, err
	}
	return t.Table.ReadRows(ctx)
}

// ResourcesTab lists the resources (repositories, component views)
// attached to a content view and adds or removes them.
type ResourcesTab struct {
	*widget.View
	Searchbox    *widget.Search
	Table        *widget.Table
	AddButton    *widget.Button
	RemoveButton *widget.Button
}

func newResourcesTab(parent *widget.View, name, label, tableID string) *ResourcesTab {
	t := &ResourcesTab{View: widget.NewNamedTab(parent, name, label)}
	t.Searchbox = widget.NewPF4Search(t)
	t.Table = widget.NewOUIATable(t, tableID).
		WithColumn("0", checkboxCell(cellCheckbox)).
		WithColumn("Name", textCell("./a"))
	t.AddButton = widget.NewButtonByText(t, "Add")
	t.RemoveButton = widget.NewButtonByText(t, "Remove")
	t.Add("searchbox", t.Searchbox)
	t.Add("table", t.Table)
	return t
}

// Search filters the resources by query and returns the rows.
func (t *ResourcesTab) Search(ctx context.Context, query string) ([]map[string]string, error) {
	if err := t.Searchbox.Search(ctx, query); err != nil {
		return nil, err
	}
	return t.Table.ReadRows(ctx)
}

// AddResource selects the resource called name and adds it.
func (t *ResourcesTab) AddResource(ctx context.Context, name string) error {
	return t.toggle(ctx, name, t.AddButton)
}

// RemoveResource selects the resource called name and removes it.
func (t *ResourcesTab) RemoveResource(ctx context.Context, name string) error {
	return t.toggle(ctx, name, t.RemoveButton)
}

func (t *ResourcesTab) toggle(ctx context.Context, name string, button *widget.Button) error {
	if err := t.Searchbox.Search(ctx, name); err != nil {
		return err
	}
	row, err := t.Table.Row(ctx, map[string]string{"Name": name})
	if err != nil {
		return err
	}
	cell, err := row.Cell("0")
	if err != nil {
		return err
	}
	if _, err := cell.Fill(ctx, true); err != nil {
		return err
	}
	return button.Click(ctx)
}

// ContentViewFiltersTab lists the filters of a content view.
type ContentViewFiltersTab struct {
	*widget.View
	NewFilter *widget.Button
	Searchbox *widget.Search
	Table     *widget.Table
}

// Search filters the filter table by query and returns the rows.
func (t *ContentViewFiltersTab) Search(ctx context.Context, query string) ([]map[string]string, error) {
	if err := t.Searchbox.Search(ctx, query); err != nil {
		return nil, err
	}
	return t.Table.ReadRows(ctx)
}

// ContentViewEditView is the details screen of a content view.
type ContentViewEditView struct {
	*BaseLoggedInView
	Breadcrumb *widget.BreadCrumb
	Searchbox  *widget.Search
	Title      *widget.Text
	Actions    *widget.ActionsDropdown
	Publish    *widget.Button
	Dialog     *widget.ConfirmationDialog

	Details      *ContentViewDetailsTab
	Versions     *ContentViewVersionsTab
	ContentViews *ResourcesTab
	Repositories *ResourcesTab
	Filters      *ContentViewFiltersTab
}

// NewContentViewEditView binds the details screen. It is ready once the
// breadcrumb leads from "Content Views" to an existing view and the publish
// button is shown.
func NewContentViewEditView(b common.Browser) *ContentViewEditView {
	base := newBaseLoggedInView("ContentViewEditView", b)
	p := base.View
	v := &ContentViewEditView{
		BaseLoggedInView: base,
		Breadcrumb:       widget.NewBreadCrumb(p),
		Searchbox:        widget.NewPF4Search(p),
		Title:            widget.NewText(p, "//h2[contains(., 'Publish') or contains(@id, 'pf-wizard-title-0')]"),
		Actions:          widget.NewActionsDropdown(p, "//div[contains(@data-ouia-component-id, 'OUIA-Generated-Dropdown-2')]"),
		Publish:          widget.NewOUIAButton(p, "cv-details-publish-button"),
		Dialog:           widget.NewConfirmationDialog(b),
	}
	v.Add("breadcrumb", v.Breadcrumb)

	details := &ContentViewDetailsTab{View: widget.NewTab(p, "details", `//a[contains(@href, "#/details")]`)}
	details.Name = widget.NewEditableEntry(details, "Name")
	details.Label = widget.NewReadOnlyEntry(details, "Label")
	details.Type = widget.NewReadOnlyEntry(details, "Composite?")
	details.Description = widget.NewEditableEntry(details, "Description")
	details.SolveDependencies = widget.NewSwitch(details, "solve_dependencies switch")
	details.ImportOnly = widget.NewSwitch(details, "import_only_switch")
	details.Add("name", details.Name)
	details.Add("label", details.Label)
	details.Add("type", details.Type)
	details.Add("description", details.Description)
	details.Add("solve_dependencies", details.SolveDependencies)
	details.Add("import_only", details.ImportOnly)
	v.Details = details

	versions := &ContentViewVersionsTab{View: widget.NewTab(p, "versions", `//a[contains(@href, "#/versions")]`)}
	versions.Searchbox = widget.NewPF4Search(versions)
	versions.Table = widget.NewOUIATable(versions, "content-view-versions-table").
		WithColumn("0", checkboxCell(cellCheckbox)).
		WithColumn("Version", textCell(".//a")).
		WithColumn("Environments", textCell(".//a")).
		WithColumn("Packages", textCell(".//a")).
		WithColumn("Errata", textCell(".//a")).
		WithColumn("Additional content", textCell(".//a")).
		WithColumn("Description", textCell(".//a")).
		WithColumn("7", dropdownCell(cellDropdown))
	versions.PublishButton = widget.NewOUIAButton(versions, "cv-details-publish-button")
	versions.Add("searchbox", versions.Searchbox)
	versions.Add("table", versions.Table)
	v.Versions = versions

	v.ContentViews = newResourcesTab(p, "content_views", "Content views", "content-view-components-table")
	v.Repositories = newResourcesTab(p, "repositories", "Repositories", "content-view-repositories-table")

	filters := &ContentViewFiltersTab{View: widget.NewTab(p, "filters", `//a[contains(@href, "#/filters")]`)}
	filters.NewFilter = widget.NewButton(filters,
		".//button[@ui-sref='content-view.yum.filters.new' or @data-ouia-component-id='create-filter-button']")
	filters.Searchbox = widget.NewPF4Search(filters)
	filters.Table = widget.NewOUIATable(filters, "content-view-filters-table").
		WithColumn("0", checkboxCell(cellCheckbox)).
		WithColumn("Name", textCell(".//a")).
		WithColumn("6", dropdownCell(cellDropdown))
	filters.Add("searchbox", filters.Searchbox)
	filters.Add("table", filters.Table)
	v.Filters = filters

	v.SetDisplayed(func(ctx context.Context) (bool, error) {
		ready, err := trailReady(v.Breadcrumb, func(t widget.Trail) bool {
			return len(t) <= editDepth && t.At(0) == "Content Views" && t.Last() != "New Content View"
		})(ctx)
		if err != nil || !ready {
			return false, err
		}
		return v.Publish.IsDisplayed(ctx)
	})
	return v
}

// EnvironmentSelector picks lifecycle environments of a promotion path by
// ticking the checkbox labelled with each name.
type EnvironmentSelector struct {
	parent widget.Parent
	loc    string
}

var (
	_ widget.Parent   = &EnvironmentSelector{}
	_ widget.Fillable = &EnvironmentSelector{}
)

// NewEnvironmentSelector binds the environment path selector at loc.
func NewEnvironmentSelector(parent widget.Parent, loc string) *EnvironmentSelector {
	return &EnvironmentSelector{parent: parent, loc: loc}
}

// Browser implements widget.Parent.
func (e *EnvironmentSelector) Browser() common.Browser { return e.parent.Browser() }

// Locator implements widget.Widget.
func (e *EnvironmentSelector) Locator() string { return common.JoinLocator(e.parent.Locator(), e.loc) }

// Activate implements widget.Parent.
func (e *EnvironmentSelector) Activate(ctx context.Context) error { return e.parent.Activate(ctx) }

// IsDisplayed implements widget.Widget.
func (e *EnvironmentSelector) IsDisplayed(ctx context.Context) (bool, error) {
	return e.Browser().IsDisplayed(ctx, e.Locator())
}

// Environment returns the checkbox of the environment called name.
func (e *EnvironmentSelector) Environment(name string) *widget.Checkbox {
	return widget.NewCheckbox(e, ".//input[@type='checkbox'][following-sibling::label[1][normalize-space(.)="+
		common.XPathLiteral(name)+"]]")
}

// Fill ticks the named environments. value is a name or a list of names.
func (e *EnvironmentSelector) Fill(ctx context.Context, value any) (bool, error) {
	var names []string
	switch v := value.(type) {
	case string:
		names = []string{v}
	case []string:
		names = v
	case []any:
		for _, n := range v {
			s, ok := n.(string)
			if !ok {
				return false, fmt.Errorf("environment names must be strings, got %T", n)
			}
			names = append(names, s)
		}
	default:
		return false, fmt.Errorf("expected an environment name or a list of names, got %T", value)
	}
	changed := false
	for _, name := range names {
		c, err := e.Environment(name).Fill(ctx, true)
		if err != nil {
			return changed, err
		}
		changed = changed || c
	}
	return changed, nil
}

// ContentViewVersionPublishView is the publish wizard. Its widgets live in
// the wizard modal, the breadcrumb on the page behind it.
type ContentViewVersionPublishView struct {
	*BaseLoggedInView
	Breadcrumb  *widget.BreadCrumb
	Wizard      *widget.View
	Title       *widget.Text
	Description *widget.TextInput
	Promote     *widget.Switch
	LCE         *EnvironmentSelector

	Next        *widget.Button
	Finish      *widget.Button
	Back        *widget.Button
	Cancel      *widget.Button
	CloseButton *widget.Button
	Progressbar *widget.ProgressBar
}

// NewContentViewVersionPublishView binds the publish wizard.
func NewContentViewVersionPublishView(b common.Browser) *ContentViewVersionPublishView {
	base := newBaseLoggedInView("ContentViewVersionPublishView", b)
	wizard := widget.NewView("ContentViewVersionPublishView.wizard", b, `.//div[contains(@class, "pf-c-wizard")]`)
	v := &ContentViewVersionPublishView{
		BaseLoggedInView: base,
		Breadcrumb:       widget.NewBreadCrumb(base.View),
		Wizard:           wizard,
		Title:            widget.NewText(wizard, "//h2[contains(., 'Publish') or contains(@id, 'pf-wizard-title-0')]"),
		Description:      widget.NewTextInputByID(wizard, "description"),
		Promote:          widget.NewSwitch(wizard, "promote-switch"),
		LCE:              NewEnvironmentSelector(wizard, ".//div[contains(@class, 'env-path') or @data-ouia-component-id='env-path-selector']"),
		Next:             widget.NewButtonByText(wizard, "Next"),
		Finish:           widget.NewButtonByText(wizard, "Finish"),
		Back:             widget.NewButtonByText(wizard, "Back"),
		Cancel:           widget.NewButtonByText(wizard, "Cancel"),
		CloseButton:      widget.NewButtonByText(wizard, "Close"),
		Progressbar:      widget.NewPF4ProgressBar(wizard),
	}
	v.Add("description", v.Description)
	v.Add("lce", v.LCE)

	v.SetDisplayed(trailReady(v.Breadcrumb, func(t widget.Trail) bool {
		return t.At(0) == "Content Views" && t.Last() == "Versions"
	}))
	// environments are only listed once promotion is switched on
	v.BeforeFill(func(ctx context.Context, values map[string]any) error {
		if _, ok := values["lce"]; !ok {
			return nil
		}
		if _, err := v.Promote.Fill(ctx, true); err != nil {
			return err
		}
		return common.WaitFor(ctx, "environment path selector",
			common.PollOptions{Timeout: 30 * time.Second, Delay: time.Second, HandleErrors: true},
			v.LCE.IsDisplayed)
	})
	return v
}

// ContentViewVersionDetailsView is the details screen of one version.
type ContentViewVersionDetailsView struct {
	*BaseLoggedInView
	Breadcrumb *widget.BreadCrumb
}

// NewContentViewVersionDetailsView binds the version details screen.
func NewContentViewVersionDetailsView(b common.Browser) *ContentViewVersionDetailsView {
	base := newBaseLoggedInView("ContentViewVersionDetailsView", b)
	v := &ContentViewVersionDetailsView{BaseLoggedInView: base, Breadcrumb: widget.NewBreadCrumb(base.View)}
	v.Add("breadcrumb", v.Breadcrumb)
	v.SetDisplayed(trailReady(v.Breadcrumb, func(t widget.Trail) bool {
		return len(t) > editDepth && t.At(0) == "Content Views" && t.At(2) == "Versions"
	}))
	return v
}

// CreateFilterView is the new filter dialog of a content view.
type CreateFilterView struct {
	*widget.View
	Name          *widget.TextInput
	FilterType    *widget.Dropdown
	IncludeFilter *widget.Radio
	ExcludeFilter *widget.Radio
	Description   *widget.TextInput
	Create        *widget.Button
	Cancel        *widget.Button
}

// NewCreateFilterView binds the new filter dialog.
func NewCreateFilterView(b common.Browser) *CreateFilterView {
	v := &CreateFilterView{View: widget.NewView("CreateFilterView", b,
		"//div[@role='dialog' and .//button[normalize-space(.)='Create filter']]")}
	v.Name = widget.NewTextInputByID(v, "name")
	v.FilterType = widget.NewDropdown(v, ".//div[@data-ouia-component-id='content_type' or contains(@class, 'pf-c-select')]")
	v.IncludeFilter = widget.NewRadioByID(v, "include")
	v.ExcludeFilter = widget.NewRadioByID(v, "exclude")
	v.Description = widget.NewTextInputByID(v, "description")
	v.Create = widget.NewButtonByText(v, "Create filter")
	v.Cancel = widget.NewButtonByText(v, "Cancel")
	v.Add("name", v.Name)
	v.Add("filter_type", v.FilterType)
	v.Add("include_filter", v.IncludeFilter)
	v.Add("exclude_filter", v.ExcludeFilter)
	v.Add("description", v.Description)
	v.SetDisplayed(v.Name.IsDisplayed)
	return v
}
