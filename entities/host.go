package entities

import (
	"context"
	"fmt"
	"strings"

	"github.com/liuxd6825/pageflow/navigation"
	"github.com/liuxd6825/pageflow/views"
	"github.com/liuxd6825/pageflow/widget"
)

// HostEntity manages hosts through the all hosts screen.
type HostEntity struct {
	base
}

// NewHostEntity returns the host entity.
func NewHostEntity(env *Env) *HostEntity {
	return &HostEntity{base: newBase(env, &HostEntity{})}
}

// Search returns the hosts matching query.
func (e *HostEntity) Search(ctx context.Context, query string) (_ []map[string]string, err error) {
	ctx, end := e.operation(ctx, "search")
	defer end(&err)

	view, err := e.all(ctx)
	if err != nil {
		return nil, err
	}
	return view.Search(ctx, query)
}

// Read returns the fields of the host details screen.
func (e *HostEntity) Read(ctx context.Context, name string, widgetNames ...string) (_ map[string]any, err error) {
	ctx, end := e.operation(ctx, "read")
	defer end(&err)

	view, err := navigateTo[*views.NewHostDetailsView](ctx, e.base, "Details", navigation.Args{"entity_name": name})
	if err != nil {
		return nil, err
	}
	if err := e.settle(ctx, view); err != nil {
		return nil, err
	}
	return view.ReadFields(ctx, widgetNames...)
}

// Delete removes the host called name through its row actions.
func (e *HostEntity) Delete(ctx context.Context, name string) (err error) {
	ctx, end := e.operation(ctx, "delete")
	defer end(&err)

	view, err := e.all(ctx)
	if err != nil {
		return err
	}
	if _, err := view.Search(ctx, name); err != nil {
		return err
	}
	row, err := view.Table.Row(ctx, map[string]string{"Name": name})
	if err != nil {
		return err
	}
	cell, err := row.Cell("2")
	if err != nil {
		return err
	}
	actions, ok := cell.Widget().(*widget.Dropdown)
	if !ok {
		return fmt.Errorf("host %s has no actions menu", name)
	}
	if err := actions.ItemSelect(ctx, "Delete"); err != nil {
		return err
	}
	return views.NewHostDeleteDialog(e.browser()).Confirm(ctx, e.env.Timeouts.Timeout())
}

// BulkDelete selects every host in names and deletes them at once.
func (e *HostEntity) BulkDelete(ctx context.Context, names []string) (err error) {
	if len(names) == 0 {
		return fmt.Errorf("%w: hosts to delete", ErrMissingArgument)
	}
	ctx, end := e.operation(ctx, "bulk_delete")
	defer end(&err)

	view, err := e.all(ctx)
	if err != nil {
		return err
	}
	if _, err := view.Search(ctx, BulkQuery(names)); err != nil {
		return err
	}
	if _, err := view.SelectAll.Fill(ctx, true); err != nil {
		return err
	}
	if err := view.BulkActions.ItemSelect(ctx, "Delete"); err != nil {
		return err
	}
	dialog := views.NewBulkHostDeleteDialog(e.browser())
	if err := e.waitDisplayed(ctx, dialog); err != nil {
		return err
	}
	// only shown for hosts backed by a compute resource
	shown, err := dialog.ConfirmCheckbox.IsDisplayed(ctx)
	if err != nil {
		return err
	}
	if shown {
		if _, err := dialog.ConfirmCheckbox.Fill(ctx, true); err != nil {
			return err
		}
	}
	return dialog.ConfirmButton.Click(ctx)
}

// BulkQuery is the search query listing exactly the hosts in names.
func BulkQuery(names []string) string {
	if len(names) == 1 {
		return "name = " + names[0]
	}
	return "name ^ (" + strings.Join(names, ", ") + ")"
}

func (e *HostEntity) all(ctx context.Context) (*views.AllHostsTableView, error) {
	view, err := navigateTo[*views.AllHostsTableView](ctx, e.base, "All", nil)
	if err != nil {
		return nil, err
	}
	return view, e.settle(ctx, view)
}

// Destinations implements Entity.
func (e *HostEntity) Destinations() []navigation.Destination {
	return []navigation.Destination{
		{
			Entity: e.kind, Name: "All",
			View: viewOf(views.NewAllHostsTableView),
			Step: func(ctx context.Context, sc *navigation.StepContext) error {
				v, err := as[*views.AllHostsTableView](sc.View)
				if err != nil {
					return err
				}
				return v.Menu.Select(ctx, "Hosts", "All Hosts")
			},
		},
		{
			Entity: e.kind, Name: "Details",
			View:         viewOf(views.NewNewHostDetailsView),
			Prerequisite: navigation.ToSiblingWith("All"),
			Step: func(ctx context.Context, sc *navigation.StepContext) error {
				name, err := entityName(sc)
				if err != nil {
					return err
				}
				parent, err := as[*views.AllHostsTableView](sc.Parent)
				if err != nil {
					return err
				}
				return openRow(ctx, parent.Searchable, name, map[string]string{"Name": name}, "Name")
			},
		},
	}
}

// Operations implements Entity.
func (e *HostEntity) Operations() map[string]Operation {
	return map[string]Operation{
		"search": func(ctx context.Context, a navigation.Args) (any, error) {
			return e.Search(ctx, a.String("value"))
		},
		"read": func(ctx context.Context, a navigation.Args) (any, error) {
			return e.Read(ctx, a.String("entity_name"), a.Strings("widget_names")...)
		},
		"delete": func(ctx context.Context, a navigation.Args) (any, error) {
			return nil, e.Delete(ctx, a.String("entity_name"))
		},
		"bulk_delete": func(ctx context.Context, a navigation.Args) (any, error) {
			return nil, e.BulkDelete(ctx, a.Strings("hosts"))
		},
	}
}
