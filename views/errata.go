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
	"time"

	"github.com/liuxd6825/pageflow/common"
	"github.com/liuxd6825/pageflow/widget"
)

// ErratumView lists the errata.
type ErratumView struct {
	*BaseLoggedInView
	Searchable
	Title             *widget.Text
	RepoFilter        *widget.Select
	ApplicableFilter  *widget.Checkbox
	InstallableFilter *widget.Checkbox
}

// NewErratumView binds the errata list.
func NewErratumView(b common.Browser) *ErratumView {
	base := newBaseLoggedInView("ErratumView", b)
	p := base.View
	v := &ErratumView{
		BaseLoggedInView:  base,
		Title:             widget.NewText(p, "//h2[contains(., 'Errata')]"),
		RepoFilter:        widget.NewSelect(p, ".//select[@ng-model='repository']"),
		ApplicableFilter:  widget.NewCheckbox(p, ".//input[@ng-model='showApplicable']"),
		InstallableFilter: widget.NewCheckbox(p, ".//input[@ng-model='showInstallable']"),
	}
	v.Add("title", v.Title)
	v.Searchable = newSearchable(p, widget.NewSearch(p),
		widget.NewTable(p, ".//table").
			WithColumn("0", checkboxCell(cellCheckbox)).
			WithColumn("Errata ID", textCell("./a")))
	v.SetDisplayed(v.Title.IsDisplayed)
	return v
}

// Search applies the filters and searches the errata list.
func (v *ErratumView) Search(ctx context.Context, query string, applicable, installable bool, repo string) ([]map[string]string, error) {
	if _, err := v.InstallableFilter.Fill(ctx, installable); err != nil {
		return nil, err
	}
	if _, err := v.ApplicableFilter.Fill(ctx, applicable); err != nil {
		return nil, err
	}
	if repo != "" {
		if _, err := v.RepoFilter.Fill(ctx, repo); err != nil {
			return nil, err
		}
	}
	return v.Searchable.Search(ctx, query)
}

// ErrataDetailsTab holds the advisory fields of an erratum.
type ErrataDetailsTab struct {
	*widget.View
	Advisory        *widget.ReadOnlyEntry
	CVEs            *widget.ReadOnlyEntry
	Type            *widget.ReadOnlyEntry
	Severity        *widget.ReadOnlyEntry
	Issued          *widget.ReadOnlyEntry
	LastUpdatedOn   *widget.ReadOnlyEntry
	RebootSuggested *widget.ReadOnlyEntry
	Topic           *widget.ReadOnlyEntry
	Description     *widget.ReadOnlyEntry
	Solution        *widget.ReadOnlyEntry
}

// ContentHostsTab lists the content hosts an erratum applies to.
type ContentHostsTab struct {
	*widget.View
	EnvironmentFilter *widget.Select
	Searchbox         *widget.Search
	Apply             *widget.Button
	Table             *widget.Table
}

// Search filters the hosts by environment and query and returns the rows.
func (t *ContentHostsTab) Search(ctx context.Context, query, environment string) ([]map[string]string, error) {
	if environment != "" {
		if _, err := t.EnvironmentFilter.Fill(ctx, environment); err != nil {
			return nil, err
		}
	}
	if err := t.Searchbox.Search(ctx, query); err != nil {
		return nil, err
	}
	return t.Table.ReadRows(ctx)
}

// ErrataRepositoriesTab lists the repositories providing an erratum.
type ErrataRepositoriesTab struct {
	*widget.View
	LCEFilter *widget.Select
	CVFilter  *widget.Select
	Searchbox *widget.Search
	Table     *widget.Table
}

// ErrataDetailsView is the details screen of an erratum.
type ErrataDetailsView struct {
	*BaseLoggedInView
	Breadcrumb   *widget.BreadCrumb
	Details      *ErrataDetailsTab
	ContentHosts *ContentHostsTab
	Repositories *ErrataRepositoriesTab
}

// NewErrataDetailsView binds the erratum details screen.
func NewErrataDetailsView(b common.Browser) *ErrataDetailsView {
	base := newBaseLoggedInView("ErrataDetailsView", b)
	p := base.View
	v := &ErrataDetailsView{BaseLoggedInView: base, Breadcrumb: widget.NewBreadCrumb(p)}
	v.Add("breadcrumb", v.Breadcrumb)

	d := &ErrataDetailsTab{View: widget.NewNamedTab(p, "details", "Details")}
	entries := []struct {
		name, label string
		dst         **widget.ReadOnlyEntry
	}{
		{"advisory", "Advisory", &d.Advisory},
		{"cves", "CVEs", &d.CVEs},
		{"type", "Type", &d.Type},
		{"severity", "Severity", &d.Severity},
		{"issued", "Issued", &d.Issued},
		{"last_updated_on", "Last Updated On", &d.LastUpdatedOn},
		{"reboot_suggested", "Reboot Suggested", &d.RebootSuggested},
		{"topic", "Topic", &d.Topic},
		{"description", "Description", &d.Description},
		{"solution", "Solution", &d.Solution},
	}
	for _, e := range entries {
		*e.dst = widget.NewReadOnlyEntry(d, e.label)
		d.Add(e.name, *e.dst)
	}
	v.Details = d

	ch := &ContentHostsTab{View: widget.NewNamedTab(p, "content_hosts", "Content Hosts")}
	ch.EnvironmentFilter = widget.NewSelect(ch, ".//select[@ng-model='environmentFilter']")
	ch.Searchbox = widget.NewSearch(ch)
	ch.Apply = widget.NewButton(ch, ".//button[@ng-click='goToNextStep()']")
	ch.Table = widget.NewTable(ch, ".//table").
		WithColumn("0", checkboxCell(cellCheckbox)).
		WithColumn("Name", textCell("./a"))
	ch.Add("environment_filter", ch.EnvironmentFilter)
	ch.Add("searchbox", ch.Searchbox)
	ch.Add("table", ch.Table)
	v.ContentHosts = ch

	repos := &ErrataRepositoriesTab{View: widget.NewNamedTab(p, "repositories", "Repositories")}
	repos.LCEFilter = widget.NewSelect(repos, ".//select[@ng-model='environmentFilter']")
	repos.CVFilter = widget.NewSelect(repos, ".//select[@ng-model='contentViewFilter']")
	repos.Searchbox = widget.NewSearch(repos)
	repos.Table = widget.NewTable(repos, ".//table")
	repos.Add("lce_filter", repos.LCEFilter)
	repos.Add("cv_filter", repos.CVFilter)
	repos.Add("searchbox", repos.Searchbox)
	repos.Add("table", repos.Table)
	v.Repositories = repos

	v.SetDisplayed(trailReady(v.Breadcrumb, func(t widget.Trail) bool {
		return t.At(0) == "Errata" && len(t) > 1
	}))
	return v
}

// ErrataInstallationConfirmationView asks to confirm an errata installation.
type ErrataInstallationConfirmationView struct {
	*BaseLoggedInView
	Cancel  *widget.Button
	Confirm *widget.Button
}

// NewErrataInstallationConfirmationView binds the confirmation screen.
func NewErrataInstallationConfirmationView(b common.Browser) *ErrataInstallationConfirmationView {
	base := newBaseLoggedInView("ErrataInstallationConfirmationView", b)
	v := &ErrataInstallationConfirmationView{
		BaseLoggedInView: base,
		Cancel:           widget.NewButton(base.View, ".//button[@ng-click='transitionBack()']"),
		Confirm:          widget.NewButton(base.View, ".//button[@type='submit']"),
	}
	v.SetDisplayed(v.Confirm.IsDisplayed)
	return v
}

// ErrataTaskDetailsView follows the task installing errata.
type ErrataTaskDetailsView struct {
	*BaseLoggedInView
	Breadcrumb  *widget.BreadCrumb
	ActionType  *widget.ReadOnlyEntry
	User        *widget.ReadOnlyEntry
	StartedAt   *widget.ReadOnlyEntry
	FinishedAt  *widget.ReadOnlyEntry
	Parameters  *widget.ReadOnlyEntry
	State       *widget.ReadOnlyEntry
	Result      *widget.ReadOnlyEntry
	Progressbar *widget.ProgressBar
	Details     *widget.ReadOnlyEntry
}

// NewErrataTaskDetailsView binds the task details screen.
func NewErrataTaskDetailsView(b common.Browser) *ErrataTaskDetailsView {
	base := newBaseLoggedInView("ErrataTaskDetailsView", b)
	p := base.View
	v := &ErrataTaskDetailsView{
		BaseLoggedInView: base,
		Breadcrumb:       widget.NewBreadCrumb(p),
		ActionType:       widget.NewReadOnlyEntry(p, "Action Type"),
		User:             widget.NewReadOnlyEntry(p, "User"),
		StartedAt:        widget.NewReadOnlyEntry(p, "Started At"),
		FinishedAt:       widget.NewReadOnlyEntry(p, "Finished At"),
		Parameters:       widget.NewReadOnlyEntry(p, "Parameters"),
		State:            widget.NewReadOnlyEntry(p, "State"),
		Result:           widget.NewReadOnlyEntry(p, "Result"),
		Progressbar:      widget.NewProgressBar(p, `.//div[contains(@class, "progress-bar") or contains(@class, "pf-c-progress")]`),
		Details:          widget.NewReadOnlyEntry(p, "Details"),
	}
	v.Add("breadcrumb", v.Breadcrumb)
	v.Add("action_type", v.ActionType)
	v.Add("user", v.User)
	v.Add("started_at", v.StartedAt)
	v.Add("finished_at", v.FinishedAt)
	v.Add("parameters", v.Parameters)
	v.Add("state", v.State)
	v.Add("result", v.Result)
	v.Add("progressbar", v.Progressbar)
	v.Add("details", v.Details)
	v.SetDisplayed(trailReady(v.Breadcrumb, func(t widget.Trail) bool {
		return t.At(0) == "Tasks"
	}))
	return v
}

// JobInvocationOverview is the overview tab of a job invocation.
type JobInvocationOverview struct {
	*widget.View
	JobStatus         *widget.Text
	JobStatusProgress *widget.Text
	TotalHosts        *widget.Text
}

// JobInvocationStatusView follows a remote execution job.
type JobInvocationStatusView struct {
	*BaseLoggedInView
	Breadcrumb *widget.BreadCrumb
	Overview   *JobInvocationOverview
}

// NewJobInvocationStatusView binds the job invocation screen.
func NewJobInvocationStatusView(b common.Browser) *JobInvocationStatusView {
	base := newBaseLoggedInView("JobInvocationStatusView", b)
	p := base.View
	v := &JobInvocationStatusView{BaseLoggedInView: base, Breadcrumb: widget.NewBreadCrumb(p)}
	v.Add("breadcrumb", v.Breadcrumb)

	o := &JobInvocationOverview{View: widget.NewNamedTab(p, "overview", "Overview")}
	o.JobStatus = widget.NewText(o, ".//div[@id='status_chart']//*[name()='text'][1]")
	o.JobStatusProgress = widget.NewText(o, ".//div[@id='status_chart']//*[name()='text'][2]")
	o.TotalHosts = widget.NewText(o, ".//h4[contains(., 'Total hosts')]/span")
	o.Add("job_status", o.JobStatus)
	o.Add("job_status_progress", o.JobStatusProgress)
	o.Add("total_hosts", o.TotalHosts)
	v.Overview = o

	v.SetDisplayed(trailReady(v.Breadcrumb, func(t widget.Trail) bool {
		return t.At(0) == "Jobs" && t.Last() != "Run job"
	}))
	return v
}

// WaitForResult waits until the job reports 100% progress.
func (v *JobInvocationStatusView) WaitForResult(ctx context.Context, timeout, delay time.Duration) error {
	return common.WaitFor(ctx, "job invocation result",
		common.PollOptions{Timeout: timeout, Delay: delay, HandleErrors: true},
		func(ctx context.Context) (bool, error) {
			ready, err := v.IsDisplayed(ctx)
			if err != nil || !ready {
				return false, err
			}
			progress, err := v.Overview.JobStatusProgress.Text(ctx)
			if err != nil {
				return false, err
			}
			return progress == "100%", nil
		})
}
