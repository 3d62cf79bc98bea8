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
	"strconv"
	"strings"

	"github.com/liuxd6825/pageflow/common"
	"github.com/liuxd6825/pageflow/widget"
)

const (
	lcePaths   = "//div[@ng-repeat='path in paths']"
	lceLastEnv = lcePaths + "//table//th[last()]"
	infoBlocks = "//table[contains(@class, 'info-blocks')]"
)

// LCEView shows the lifecycle environment paths.
type LCEView struct {
	*BaseLoggedInView
	Title                  *widget.Text
	NewPath                *widget.Text
	EditParentEnv          *widget.Text
	ParentEnvCVsCount      *widget.Text
	ParentEnvProductsCount *widget.Text
	ParentEnvErrataCount   *widget.Text
}

// NewLCEView binds the environment paths screen.
func NewLCEView(b common.Browser) *LCEView {
	base := newBaseLoggedInView("LCEView", b)
	p := base.View
	v := &LCEView{
		BaseLoggedInView: base,
		Title:            widget.NewText(p, "//h2[contains(., 'Lifecycle Environment Paths')]"),
		NewPath: widget.NewText(p, "//a[contains(@href, '/lifecycle_environments') "+
			"and contains(@href, 'new') and contains(@class, 'btn-primary')]"),
		EditParentEnv:          widget.NewText(p, infoBlocks+"//a[contains(@ui-sref, 'environment.details')]"),
		ParentEnvCVsCount:      widget.NewText(p, infoBlocks+"//td[span[contains(., 'Content Views')]]/div"),
		ParentEnvProductsCount: widget.NewText(p, infoBlocks+"//td[span[contains(., 'Products')]]/div"),
		ParentEnvErrataCount:   widget.NewText(p, infoBlocks+"//td[span[contains(., 'Errata')]]/div"),
	}
	v.Add("title", v.Title)
	v.SetDisplayed(v.Title.IsDisplayed)
	return v
}

// LCEPath is the promotion path containing a given environment.
type LCEPath struct {
	*widget.View
	CurrentEnv *widget.Text
	EnvsTable  *widget.Table
	NewChild   *widget.Text
}

// Path returns the promotion path containing the environment lceName.
func (v *LCEView) Path(lceName string) *LCEPath {
	name := common.XPathLiteral(lceName)
	p := &LCEPath{View: widget.NewView("LCEPath("+lceName+")", v.Browser(),
		"."+lcePaths+"[table//th/a[normalize-space(.)="+name+"]]")}
	p.CurrentEnv = widget.NewText(p, ".//a[normalize-space(.)="+name+"]")
	p.EnvsTable = widget.NewTable(p, ".//table")
	p.NewChild = widget.NewText(p, ".//a[contains(@href, '/lifecycle_environments/')]")
	return p
}

// EnvLink returns the link of the environment called name on any path.
func (v *LCEView) EnvLink(name string) *widget.Text {
	return widget.NewText(v.View, lcePaths+"//table//th/a[normalize-space(.)="+common.XPathLiteral(name)+"]")
}

// Counts reads the path table as environment -> metric -> count, e.g.
// {"Library": {"Content Views": 1, "Content Hosts": 2}}.
func (p *LCEPath) Counts(ctx context.Context) (map[string]map[string]int, error) {
	headers, rows, err := p.EnvsTable.Matrix(ctx)
	if err != nil {
		return nil, err
	}
	res := make(map[string]map[string]int)
	for j := 1; j < len(headers); j++ {
		env := headers[j]
		res[env] = make(map[string]int, len(rows))
		for _, row := range rows {
			if len(row) <= j {
				continue
			}
			n, err := strconv.Atoi(strings.TrimSpace(row[j]))
			if err != nil {
				return nil, fmt.Errorf("%s: %s count of %s: %w", p.Name(), row[0], env, err)
			}
			res[env][row[0]] = n
		}
	}
	return res, nil
}

// Read implements widget.Readable.
func (p *LCEPath) Read(ctx context.Context) (any, error) {
	return p.Counts(ctx)
}

// ReadAll reads every promotion path, keyed by environment. The last
// environment of each path names the path.
func (v *LCEView) ReadAll(ctx context.Context) (map[string]map[string]int, error) {
	names, err := v.Browser().Texts(ctx, lceLastEnv)
	if err != nil {
		return nil, err
	}
	res := make(map[string]map[string]int)
	for _, name := range names {
		counts, err := v.Path(strings.TrimSpace(name)).Counts(ctx)
		if err != nil {
			return nil, err
		}
		for env, c := range counts {
			res[env] = c
		}
	}
	return res, nil
}

// LCECreateView is the new environment form.
type LCECreateView struct {
	*BaseLoggedInView
	Breadcrumb  *widget.BreadCrumb
	Name        *widget.TextInput
	Label       *widget.TextInput
	Description *widget.TextInput
	Submit      *widget.Button
}

// NewLCECreateView binds the new environment form.
func NewLCECreateView(b common.Browser) *LCECreateView {
	base := newBaseLoggedInView("LCECreateView", b)
	p := base.View
	v := &LCECreateView{
		BaseLoggedInView: base,
		Breadcrumb:       widget.NewBreadCrumb(p),
		Name:             widget.NewTextInputByID(p, "name"),
		Label:            widget.NewTextInputByID(p, "label"),
		Description:      widget.NewTextInputByID(p, "description"),
		Submit:           widget.NewButton(p, "//button[contains(@ng-click, 'handleSave')]"),
	}
	v.Add("name", v.Name)
	v.Add("label", v.Label)
	v.Add("description", v.Description)
	v.SetDisplayed(trailReady(v.Breadcrumb, func(t widget.Trail) bool {
		return t.At(0) == "Environments List" && t.Last() == "New Environment"
	}))
	return v
}

// LCEDetailsTab holds the environment attributes.
type LCEDetailsTab struct {
	*widget.View
	Name                *widget.EditableEntry
	Label               *widget.ReadOnlyEntry
	Description         *widget.EditableEntry
	UnauthenticatedPull *widget.ReadOnlyEntry
	RegistryNamePattern *widget.EditableEntry
}

// LCEContentViewsTab lists the content views promoted to an environment.
type LCEContentViewsTab struct {
	*widget.View
	Searchable
}

// LCEContentTab lists packages or module streams of an environment.
type LCEContentTab struct {
	*widget.View
	CVFilter   *widget.Select
	RepoFilter *widget.Select
	Searchbox  *widget.Search
	Table      *widget.Table
}

func newLCEContentTab(parent *widget.View, name, label string) *LCEContentTab {
	t := &LCEContentTab{View: widget.NewNamedTab(parent, name, label)}
	t.CVFilter = widget.NewSelect(t, ".//select[@ng-model='contentView']")
	t.RepoFilter = widget.NewSelect(t, ".//select[@ng-model='repository']")
	t.Searchbox = widget.NewSearch(t)
	t.Table = widget.NewTable(t, ".//table")
	t.Add("cv_filter", t.CVFilter)
	t.Add("repo_filter", t.RepoFilter)
	t.Add("searchbox", t.Searchbox)
	t.Add("table", t.Table)
	return t
}

// Search applies the optional content view and repository filters, then
// searches and returns the rows.
func (t *LCEContentTab) Search(ctx context.Context, query, cv, repo string) ([]map[string]string, error) {
	if cv != "" {
		if _, err := t.CVFilter.Fill(ctx, cv); err != nil {
			return nil, err
		}
	}
	if repo != "" {
		if _, err := t.RepoFilter.Fill(ctx, repo); err != nil {
			return nil, err
		}
	}
	if err := t.Searchbox.Search(ctx, query); err != nil {
		return nil, err
	}
	return t.Table.ReadRows(ctx)
}

// LCEEditView is the details screen of an environment.
type LCEEditView struct {
	*BaseLoggedInView
	Breadcrumb    *widget.BreadCrumb
	Remove        *widget.Button
	Details       *LCEDetailsTab
	ContentViews  *LCEContentViewsTab
	Packages      *LCEContentTab
	ModuleStreams *LCEContentTab
}

// NewLCEEditView binds the environment details screen.
func NewLCEEditView(b common.Browser) *LCEEditView {
	base := newBaseLoggedInView("LCEEditView", b)
	p := base.View
	v := &LCEEditView{
		BaseLoggedInView: base,
		Breadcrumb:       widget.NewBreadCrumb(p),
		Remove:           widget.NewButtonByText(p, "Remove Environment"),
	}
	v.Add("breadcrumb", v.Breadcrumb)

	d := &LCEDetailsTab{View: widget.NewNamedTab(p, "details", "Details")}
	d.Name = widget.NewEditableEntry(d, "Name")
	d.Label = widget.NewReadOnlyEntry(d, "Label")
	d.Description = widget.NewEditableEntry(d, "Description")
	d.UnauthenticatedPull = widget.NewReadOnlyEntry(d, "Unauthenticated Pull")
	d.RegistryNamePattern = widget.NewEditableEntry(d, "Registry Name Pattern")
	d.Add("name", d.Name)
	d.Add("label", d.Label)
	d.Add("description", d.Description)
	d.Add("unauthenticated_pull", d.UnauthenticatedPull)
	d.Add("registry_name_pattern", d.RegistryNamePattern)
	v.Details = d

	cvs := &LCEContentViewsTab{View: widget.NewNamedTab(p, "content_views", "Content Views")}
	cvs.Searchable = newSearchable(cvs.View, widget.NewSearch(cvs), widget.NewTable(cvs, ".//table"))
	v.ContentViews = cvs

	v.Packages = newLCEContentTab(p, "packages", "Packages")
	v.ModuleStreams = newLCEContentTab(p, "module_streams", "Module Streams")

	v.SetDisplayed(trailReady(v.Breadcrumb, func(t widget.Trail) bool {
		return t.At(0) == "Environments" && t.Last() != "New Environment"
	}))
	return v
}
