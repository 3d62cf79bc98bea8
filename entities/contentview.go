package entities

import (
	"context"
	"fmt"
	"time"

	"github.com/liuxd6825/pageflow/navigation"
	"github.com/liuxd6825/pageflow/views"
	"github.com/liuxd6825/pageflow/widget"
)

// publishPollDelay is the progress bar poll delay of a publish; the bar
// moves fast and the task may end between two slow polls.
const publishPollDelay = 10 * time.Millisecond

// ContentViewEntity manages content views.
type ContentViewEntity struct {
	base
}

// NewContentViewEntity returns the content view entity.
func NewContentViewEntity(env *Env) *ContentViewEntity {
	return &ContentViewEntity{base: newBase(env, &ContentViewEntity{})}
}

// Create opens the create dialog, fills values and submits.
func (e *ContentViewEntity) Create(ctx context.Context, values map[string]any) (err error) {
	ctx, end := e.operation(ctx, "create")
	defer end(&err)

	view, err := navigateTo[*views.ContentViewCreateView](ctx, e.base, "New", nil)
	if err != nil {
		return err
	}
	if err := e.settle(ctx, view); err != nil {
		return err
	}
	if _, err := view.Fill(ctx, values); err != nil {
		return err
	}
	return view.Submit.Click(ctx)
}

// Search returns the content views matching value.
func (e *ContentViewEntity) Search(ctx context.Context, value string) (_ []map[string]string, err error) {
	ctx, end := e.operation(ctx, "search")
	defer end(&err)

	view, err := navigateTo[*views.ContentViewTableView](ctx, e.base, "All", nil)
	if err != nil {
		return nil, err
	}
	if err := e.settle(ctx, view); err != nil {
		return nil, err
	}
	return view.Search(ctx, value)
}

// Read returns the fields of the content view details screen, all of them
// when widgetNames is empty.
func (e *ContentViewEntity) Read(ctx context.Context, name string, widgetNames ...string) (_ map[string]any, err error) {
	ctx, end := e.operation(ctx, "read")
	defer end(&err)

	view, err := navigateTo[*views.ContentViewEditView](ctx, e.base, "Edit", navigation.Args{"entity_name": name})
	if err != nil {
		return nil, err
	}
	if err := e.settle(ctx, view); err != nil {
		return nil, err
	}
	return view.ReadFields(ctx, widgetNames...)
}

// Publish publishes a new version of the content view, optionally filling
// the wizard (description, lce) first, and returns the versions table.
func (e *ContentViewEntity) Publish(ctx context.Context, name string, values map[string]any) (_ []map[string]string, err error) {
	ctx, end := e.operation(ctx, "publish")
	defer end(&err)

	wizard, err := navigateTo[*views.ContentViewVersionPublishView](ctx, e.base, "Publish",
		navigation.Args{"entity_name": name})
	if err != nil {
		return nil, err
	}
	if err := e.settle(ctx, wizard); err != nil {
		return nil, err
	}
	if len(values) > 0 {
		if _, err := wizard.Fill(ctx, values); err != nil {
			return nil, err
		}
	}
	if err := wizard.Next.Click(ctx); err != nil {
		return nil, err
	}
	if err := wizard.Finish.Click(ctx); err != nil {
		return nil, err
	}
	if _, err := wizard.Progressbar.WaitForResult(ctx, e.env.taskTimeout(), publishPollDelay); err != nil {
		return nil, fmt.Errorf("publishing content view %s: %w", name, err)
	}

	view, err := e.edit(ctx, name)
	if err != nil {
		return nil, err
	}
	return view.Versions.Table.ReadRows(ctx)
}

// SearchVersion searches the versions of a content view. Version labels
// such as "Version 1.0" are accepted.
func (e *ContentViewEntity) SearchVersion(ctx context.Context, name, version string) (_ []map[string]string, err error) {
	ctx, end := e.operation(ctx, "search_version")
	defer end(&err)

	view, err := e.edit(ctx, name)
	if err != nil {
		return nil, err
	}
	return view.Versions.Search(ctx, version)
}

// Filter inclusions accepted by CreateFilter.
const (
	FilterInclude = "include"
	FilterExclude = "exclude"
)

// CreateFilter adds a filter of filterType to the content view and
// returns the filters table. inclusion is FilterInclude or FilterExclude.
func (e *ContentViewEntity) CreateFilter(
	ctx context.Context, name, filterName, filterType, inclusion string,
) (_ []map[string]string, err error) {
	if inclusion != FilterInclude && inclusion != FilterExclude {
		return nil, fmt.Errorf("filter inclusion must be %q or %q, got %q", FilterInclude, FilterExclude, inclusion)
	}
	ctx, end := e.operation(ctx, "create_filter")
	defer end(&err)

	view, err := e.edit(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := view.Filters.NewFilter.Click(ctx); err != nil {
		return nil, err
	}
	dialog := views.NewCreateFilterView(e.browser())
	if err := e.waitDisplayed(ctx, dialog); err != nil {
		return nil, err
	}
	if _, err := dialog.Name.Fill(ctx, filterName); err != nil {
		return nil, err
	}
	if _, err := dialog.FilterType.Fill(ctx, filterType); err != nil {
		return nil, err
	}
	radio := dialog.IncludeFilter
	if inclusion == FilterExclude {
		radio = dialog.ExcludeFilter
	}
	if _, err := radio.Fill(ctx, true); err != nil {
		return nil, err
	}
	if err := dialog.Create.Click(ctx); err != nil {
		return nil, err
	}

	view, err = e.edit(ctx, name)
	if err != nil {
		return nil, err
	}
	return view.Filters.Table.ReadRows(ctx)
}

// DeleteFilter removes the filter called filterName. It reports whether
// the filter is gone, that is whether the filters table no longer lists it.
func (e *ContentViewEntity) DeleteFilter(ctx context.Context, name, filterName string) (_ bool, err error) {
	ctx, end := e.operation(ctx, "delete_filter")
	defer end(&err)

	view, err := e.edit(ctx, name)
	if err != nil {
		return false, err
	}
	if _, err := view.Filters.Search(ctx, filterName); err != nil {
		return false, err
	}
	row, err := view.Filters.Table.Row(ctx, map[string]string{"Name": filterName})
	if err != nil {
		return false, err
	}
	cell, err := row.Cell("6")
	if err != nil {
		return false, err
	}
	actions, ok := cell.Widget().(*widget.Dropdown)
	if !ok {
		return false, fmt.Errorf("filter %s has no actions menu", filterName)
	}
	if err := actions.ItemSelect(ctx, "Remove"); err != nil {
		return false, err
	}

	if shown, err := view.Filters.Table.IsDisplayed(ctx); err != nil || !shown {
		return err == nil, err
	}
	_, err = view.Filters.Table.Row(ctx, map[string]string{"Name": filterName})
	return err != nil, nil
}

// ReadFrenchLangCV reads the content views list reached through the
// French menu labels.
func (e *ContentViewEntity) ReadFrenchLangCV(ctx context.Context) (_ []map[string]string, err error) {
	ctx, end := e.operation(ctx, "read_french_lang_cv")
	defer end(&err)

	view, err := navigateTo[*views.ContentViewTableView](ctx, e.base, "French", nil)
	if err != nil {
		return nil, err
	}
	if err := e.settle(ctx, view); err != nil {
		return nil, err
	}
	return view.Table.ReadRows(ctx)
}

func (e *ContentViewEntity) edit(ctx context.Context, name string) (*views.ContentViewEditView, error) {
	view, err := navigateTo[*views.ContentViewEditView](ctx, e.base, "Edit", navigation.Args{"entity_name": name})
	if err != nil {
		return nil, err
	}
	return view, e.settle(ctx, view)
}

// Destinations implements Entity.
func (e *ContentViewEntity) Destinations() []navigation.Destination {
	menu := func(path ...string) func(ctx context.Context, sc *navigation.StepContext) error {
		return func(ctx context.Context, sc *navigation.StepContext) error {
			v, err := as[*views.ContentViewTableView](sc.View)
			if err != nil {
				return err
			}
			return v.Menu.Select(ctx, path...)
		}
	}
	return []navigation.Destination{
		{
			Entity: e.kind, Name: "All",
			View: viewOf(views.NewContentViewTableView),
			Step: menu("Content", "Lifecycle", "Content Views"),
		},
		{
			Entity: e.kind, Name: "French",
			View: viewOf(views.NewContentViewTableView),
			Step: menu("Contenu", "Lifecycle", "Content Views"),
		},
		{
			Entity: e.kind, Name: "New",
			View:         viewOf(views.NewContentViewCreateView),
			Prerequisite: navigation.ToSiblingWith("All"),
			Step: func(ctx context.Context, sc *navigation.StepContext) error {
				parent, err := as[*views.ContentViewTableView](sc.Parent)
				if err != nil {
					return err
				}
				return parent.CreateContentView.Click(ctx)
			},
		},
		{
			Entity: e.kind, Name: "Edit",
			View:         viewOf(views.NewContentViewEditView),
			Prerequisite: navigation.ToSiblingWith("All"),
			Step: func(ctx context.Context, sc *navigation.StepContext) error {
				name, err := entityName(sc)
				if err != nil {
					return err
				}
				parent, err := as[*views.ContentViewTableView](sc.Parent)
				if err != nil {
					return err
				}
				return openRow(ctx, parent.Searchable, name, map[string]string{"Name": name}, "Name")
			},
		},
		{
			Entity: e.kind, Name: "Publish",
			View:         viewOf(views.NewContentViewVersionPublishView),
			Prerequisite: navigation.ToSiblingWith("Edit", "entity_name"),
			Step: func(ctx context.Context, sc *navigation.StepContext) error {
				parent, err := as[*views.ContentViewEditView](sc.Parent)
				if err != nil {
					return err
				}
				return parent.Publish.Click(ctx)
			},
		},
	}
}

// Operations implements Entity.
func (e *ContentViewEntity) Operations() map[string]Operation {
	return map[string]Operation{
		"create": func(ctx context.Context, a navigation.Args) (any, error) {
			return nil, e.Create(ctx, a.Map("values"))
		},
		"search": func(ctx context.Context, a navigation.Args) (any, error) {
			return e.Search(ctx, a.String("value"))
		},
		"read": func(ctx context.Context, a navigation.Args) (any, error) {
			return e.Read(ctx, a.String("entity_name"), a.Strings("widget_names")...)
		},
		"publish": func(ctx context.Context, a navigation.Args) (any, error) {
			return e.Publish(ctx, a.String("entity_name"), a.Map("values"))
		},
		"search_version": func(ctx context.Context, a navigation.Args) (any, error) {
			return e.SearchVersion(ctx, a.String("entity_name"), a.String("version"))
		},
		"create_filter": func(ctx context.Context, a navigation.Args) (any, error) {
			return e.CreateFilter(ctx, a.String("entity_name"), a.String("filter_name"),
				a.String("filter_type"), a.String("filter_inclusion"))
		},
		"delete_filter": func(ctx context.Context, a navigation.Args) (any, error) {
			return e.DeleteFilter(ctx, a.String("entity_name"), a.String("filter_name"))
		},
		"read_french_lang_cv": func(ctx context.Context, _ navigation.Args) (any, error) {
			return e.ReadFrenchLangCV(ctx)
		},
	}
}
