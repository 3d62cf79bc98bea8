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
	"github.com/liuxd6825/pageflow/common"
	"github.com/liuxd6825/pageflow/widget"
)

// AllHostsTableView lists the hosts.
type AllHostsTableView struct {
	*BaseLoggedInView
	Searchable
	Title       *widget.Text
	SelectAll   *widget.Checkbox
	BulkActions *widget.Dropdown
}

// NewAllHostsTableView binds the hosts list.
func NewAllHostsTableView(b common.Browser) *AllHostsTableView {
	base := newBaseLoggedInView("AllHostsTableView", b)
	p := base.View
	v := &AllHostsTableView{
		BaseLoggedInView: base,
		Title:            widget.NewText(p, "//h1[normalize-space(.)='Hosts']"),
		SelectAll: widget.NewCheckbox(p,
			`.//input[@data-ouia-component-id="select-all-checkbox-dropdown-toggle-checkbox"]`),
		BulkActions: widget.NewDropdown(p, `.//div[@data-ouia-component-id="action-buttons-dropdown"]`),
	}
	v.Add("title", v.Title)
	v.Searchable = newSearchable(p, widget.NewPF4Search(p),
		widget.NewOUIATable(p, "table").
			WithColumn("0", checkboxCell(cellCheckbox)).
			WithColumn("Name", textCell("./a")).
			WithColumn("2", dropdownCell(cellDropdown)))
	v.SetDisplayed(v.Table.IsDisplayed)
	return v
}

// HostDeleteDialog confirms the deletion of one host.
type HostDeleteDialog struct {
	*widget.ConfirmationDialog
	Title *widget.Text
}

// NewHostDeleteDialog binds the host deletion dialog.
func NewHostDeleteDialog(b common.Browser) *HostDeleteDialog {
	d := widget.NewCustomDialog(b, "HostDeleteDialog", `.//div[@data-ouia-component-id="delete-modal"]`,
		`.//button[@data-ouia-component-id="confirm-delete"]`, `.//button[@data-ouia-component-id="cancel-delete"]`)
	v := &HostDeleteDialog{ConfirmationDialog: d, Title: widget.NewText(d.View, "//span[normalize-space(.)='Confirm Deletion']")}
	v.SetDisplayed(v.Title.IsDisplayed)
	return v
}

// BulkHostDeleteDialog confirms the deletion of several hosts, or of hosts
// backed by a compute resource.
type BulkHostDeleteDialog struct {
	*widget.ConfirmationDialog
	Title           *widget.Text
	ConfirmCheckbox *widget.Checkbox
}

// NewBulkHostDeleteDialog binds the bulk deletion dialog.
func NewBulkHostDeleteDialog(b common.Browser) *BulkHostDeleteDialog {
	d := widget.NewCustomDialog(b, "BulkHostDeleteDialog", `.//div[@data-ouia-component-id="bulk-delete-hosts-modal"]`,
		`.//button[@data-ouia-component-id="btn-modal-confirm"]`, `.//button[@data-ouia-component-id="btn-modal-cancel"]`)
	v := &BulkHostDeleteDialog{
		ConfirmationDialog: d,
		Title:              widget.NewText(d.View, "//span[normalize-space(.)='Delete hosts?']"),
		ConfirmCheckbox:    widget.NewCheckbox(d.View, `.//input[@data-ouia-component-id="dire-warning-checkbox" or @id="dire-warning-checkbox"]`),
	}
	v.Add("confirm_checkbox", v.ConfirmCheckbox)
	v.SetDisplayed(v.Title.IsDisplayed)
	return v
}

// HostDetailsCard is a card of the host overview: a titled article.
type HostDetailsCard struct {
	*widget.View
	Title *widget.Text
}

func newCard(parent *widget.View, name, root string) *HostDetailsCard {
	c := &HostDetailsCard{View: parent.Nested(name, root)}
	c.Title = widget.NewText(c, `.//div[@class="pf-c-card__title"]`)
	return c
}

// HostOverviewTab is the overview tab of a host.
type HostOverviewTab struct {
	*widget.View
	Details *HostDetailsCard
	// DetailsList reads the details card into attributized keys.
	DetailsList *widget.DescriptionList

	HostStatus     *HostDetailsCard
	Status         *widget.Text
	StatusSuccess  *widget.Text
	StatusWarning  *widget.Text
	StatusError    *widget.Text
	StatusDisabled *widget.Text

	InstallableErrata *HostDetailsCard
	SecurityAdvisory  *widget.Text
	BugFixes          *widget.Text
	Enhancements      *widget.Text

	TotalRisks *HostDetailsCard
	Low        *widget.Text
	Moderate   *widget.Text
	Important  *widget.Text
	Critical   *widget.Text
}

// HostContentTab is the content tab of a host with its package and errata
// sub tabs.
type HostContentTab struct {
	*widget.View
	Packages *HostSearchableTab
	Errata   *HostSearchableTab
}

// HostSearchableTab is a host content sub tab: a search bar over a table.
type HostSearchableTab struct {
	*widget.View
	SelectAll *widget.Checkbox
	Searchbar *widget.TextInput
	Table     *widget.Table
}

func newHostSearchableTab(
	parent *widget.View, name, label, root string,
	newTable func(widget.Parent, string) *widget.Table, tableID, first string,
) *HostSearchableTab {
	t := &HostSearchableTab{View: widget.NewTabWithRoot(parent, name, root, widget.TabLocator(label))}
	t.SelectAll = widget.NewCheckbox(t, `.//div[@id="selection-checkbox"]/div/label`)
	t.Searchbar = widget.NewTextInput(t, `.//input[contains(@class, "pf-m-search")]`)
	t.Table = newTable(t, tableID).
		WithColumn("0", checkboxCell(cellCheckbox)).
		WithColumn(first, textCell("./parent::td"))
	t.Add("searchbar", t.Searchbar)
	t.Add("table", t.Table)
	return t
}

// NewHostDetailsView is the redesigned host details screen.
type NewHostDetailsView struct {
	*BaseLoggedInView
	Breadcrumb  *widget.BreadCrumb
	Edit        *widget.Button
	Dropdown    *widget.Dropdown
	ScheduleJob *widget.ActionsDropdown
	Overview    *HostOverviewTab
	Content     *HostContentTab
}

// NewNewHostDetailsView binds the host details screen.
func NewNewHostDetailsView(b common.Browser) *NewHostDetailsView {
	base := newBaseLoggedInView("NewHostDetailsView", b)
	p := base.View
	v := &NewHostDetailsView{
		BaseLoggedInView: base,
		Breadcrumb:       widget.NewOUIABreadCrumb(p, "breadcrumbs-list"),
		Edit:             widget.NewOUIAButton(p, "OUIA-Generated-Button-secondary-1"),
		Dropdown:         widget.NewDropdown(p, `//button[@id="hostdetails-kebab"]/..`),
		ScheduleJob:      widget.NewActionsDropdown(p, `.//div[div/button[@aria-label="Select"]]`),
	}
	v.Add("breadcrumb", v.Breadcrumb)

	o := &HostOverviewTab{View: widget.NewTabWithRoot(p, "overview",
		`.//div[contains(@class, "host-details-tab-item")]`, widget.TabLocator("Overview"))}
	o.Details = newCard(o.View, "details", `.//article[.//div[text()="Details"]]`)
	o.DetailsList = widget.NewDescriptionList(o.Details, ".")
	o.Details.Add("details", o.DetailsList)

	o.HostStatus = newCard(o.View, "host_status", `.//article[.//span[text()="Host status"]]`)
	o.Status = widget.NewText(o.HostStatus, `.//h4[contains(@data-ouia-component-id, "global-state-title")]`)
	o.StatusSuccess = widget.NewText(o.HostStatus, `.//a[span[@class="status-success"]]`)
	o.StatusWarning = widget.NewText(o.HostStatus, `.//a[span[@class="status-warning"]]`)
	o.StatusError = widget.NewText(o.HostStatus, `.//a[span[@class="status-error"]]`)
	o.StatusDisabled = widget.NewText(o.HostStatus, `.//a[span[@class="disabled"]]`)
	o.HostStatus.Add("status", o.Status)
	o.HostStatus.Add("status_success", o.StatusSuccess)
	o.HostStatus.Add("status_warning", o.StatusWarning)
	o.HostStatus.Add("status_error", o.StatusError)
	o.HostStatus.Add("status_disabled", o.StatusDisabled)

	o.InstallableErrata = newCard(o.View, "installable_errata", `.//article[.//div[text()="Installable errata"]]`)
	o.SecurityAdvisory = widget.NewText(o.InstallableErrata, `.//a[contains(@href, "type=security")]`)
	o.BugFixes = widget.NewText(o.InstallableErrata, `.//a[contains(@href, "type=bugfix")]`)
	o.Enhancements = widget.NewText(o.InstallableErrata, `.//a[contains(@href, "type=enhancement")]`)
	o.InstallableErrata.Add("security_advisory", o.SecurityAdvisory)
	o.InstallableErrata.Add("bug_fixes", o.BugFixes)
	o.InstallableErrata.Add("enhancements", o.Enhancements)

	o.TotalRisks = newCard(o.View, "total_risks", `.//article[.//div[text()="Total risks"]]`)
	o.Low = widget.NewText(o.TotalRisks, `.//*[@id="legend-labels-0"]/*`)
	o.Moderate = widget.NewText(o.TotalRisks, `.//*[@id="legend-labels-1"]/*`)
	o.Important = widget.NewText(o.TotalRisks, `.//*[@id="legend-labels-2"]/*`)
	o.Critical = widget.NewText(o.TotalRisks, `.//*[@id="legend-labels-3"]/*`)
	o.TotalRisks.Add("low", o.Low)
	o.TotalRisks.Add("moderate", o.Moderate)
	o.TotalRisks.Add("important", o.Important)
	o.TotalRisks.Add("critical", o.Critical)
	v.Overview = o

	c := &HostContentTab{View: widget.NewTabWithRoot(p, "content", ".//div", widget.TabLocator("Content"))}
	c.Packages = newHostSearchableTab(c.View, "packages", "Packages", `.//div[@id="packages-tab"]`, widget.NewOUIATable, "host-packages-table", "Package")
	c.Errata = newHostSearchableTab(c.View, "errata", "Errata", `.//div[@id="errata-tab"]`, widget.NewExpandableTable, "host-errata-table", "Errata")
	v.Content = c

	v.SetDisplayed(trailReady(v.Breadcrumb, func(t widget.Trail) bool {
		return t.At(0) == "Hosts"
	}))
	return v
}
