package entities

import (
	"context"

	"github.com/liuxd6825/pageflow/navigation"
	"github.com/liuxd6825/pageflow/views"
	"github.com/liuxd6825/pageflow/widget"
)

// LifecycleEnvironmentEntity manages lifecycle environments and their
// promotion paths.
type LifecycleEnvironmentEntity struct {
	base
}

// NewLifecycleEnvironmentEntity returns the lifecycle environment entity.
func NewLifecycleEnvironmentEntity(env *Env) *LifecycleEnvironmentEntity {
	return &LifecycleEnvironmentEntity{base: newBase(env, &LifecycleEnvironmentEntity{})}
}

// Create adds an environment. With priorName empty it starts a new path
// after Library, otherwise it follows the environment priorName.
func (e *LifecycleEnvironmentEntity) Create(ctx context.Context, values map[string]any, priorName string) (err error) {
	ctx, end := e.operation(ctx, "create")
	defer end(&err)

	args := navigation.Args{}
	if priorName != "" {
		args["prior_entity_name"] = priorName
	}
	view, err := navigateTo[*views.LCECreateView](ctx, e.base, "New", args)
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

// Read returns the fields of the environment details screen.
func (e *LifecycleEnvironmentEntity) Read(ctx context.Context, name string, widgetNames ...string) (_ map[string]any, err error) {
	ctx, end := e.operation(ctx, "read")
	defer end(&err)

	view, err := e.edit(ctx, name)
	if err != nil {
		return nil, err
	}
	return view.ReadFields(ctx, widgetNames...)
}

// ReadAll returns the counts of every environment on every path.
func (e *LifecycleEnvironmentEntity) ReadAll(ctx context.Context) (_ map[string]map[string]int, err error) {
	ctx, end := e.operation(ctx, "read_all")
	defer end(&err)

	view, err := navigateTo[*views.LCEView](ctx, e.base, "All", nil)
	if err != nil {
		return nil, err
	}
	if err := e.settle(ctx, view); err != nil {
		return nil, err
	}
	return view.ReadAll(ctx)
}

// SearchPackages searches the packages of an environment, optionally
// within a content view and a repository.
func (e *LifecycleEnvironmentEntity) SearchPackages(
	ctx context.Context, name, query, cv, repo string,
) (_ []map[string]string, err error) {
	ctx, end := e.operation(ctx, "search_packages")
	defer end(&err)
	return e.searchContent(ctx, name, query, cv, repo, func(v *views.LCEEditView) *views.LCEContentTab { return v.Packages })
}

// SearchModuleStreams searches the module streams of an environment.
func (e *LifecycleEnvironmentEntity) SearchModuleStreams(
	ctx context.Context, name, query, cv, repo string,
) (_ []map[string]string, err error) {
	ctx, end := e.operation(ctx, "search_module_streams")
	defer end(&err)
	return e.searchContent(ctx, name, query, cv, repo, func(v *views.LCEEditView) *views.LCEContentTab { return v.ModuleStreams })
}

func (e *LifecycleEnvironmentEntity) searchContent(
	ctx context.Context, name, query, cv, repo string, tab func(*views.LCEEditView) *views.LCEContentTab,
) ([]map[string]string, error) {
	view, err := e.edit(ctx, name)
	if err != nil {
		return nil, err
	}
	return tab(view).Search(ctx, query, cv, repo)
}

// Delete removes the environment called name.
func (e *LifecycleEnvironmentEntity) Delete(ctx context.Context, name string) (err error) {
	ctx, end := e.operation(ctx, "delete")
	defer end(&err)

	view, err := e.edit(ctx, name)
	if err != nil {
		return err
	}
	if err := view.Remove.Click(ctx); err != nil {
		return err
	}
	return widget.NewConfirmationDialog(e.browser()).Confirm(ctx, e.env.Timeouts.Timeout())
}

func (e *LifecycleEnvironmentEntity) edit(ctx context.Context, name string) (*views.LCEEditView, error) {
	view, err := navigateTo[*views.LCEEditView](ctx, e.base, "Edit", navigation.Args{"entity_name": name})
	if err != nil {
		return nil, err
	}
	return view, e.settle(ctx, view)
}

// Destinations implements Entity.
func (e *LifecycleEnvironmentEntity) Destinations() []navigation.Destination {
	return []navigation.Destination{
		{
			Entity: e.kind, Name: "All",
			View: viewOf(views.NewLCEView),
			Step: func(ctx context.Context, sc *navigation.StepContext) error {
				v, err := as[*views.LCEView](sc.View)
				if err != nil {
					return err
				}
				return v.Menu.Select(ctx, "Content", "Lifecycle", "Lifecycle Environments")
			},
		},
		{
			Entity: e.kind, Name: "New",
			View:         viewOf(views.NewLCECreateView),
			Prerequisite: navigation.ToSiblingWith("All"),
			Step: func(ctx context.Context, sc *navigation.StepContext) error {
				parent, err := as[*views.LCEView](sc.Parent)
				if err != nil {
					return err
				}
				if prior := sc.Args.String("prior_entity_name"); prior != "" {
					return parent.Path(prior).NewChild.Click(ctx)
				}
				return parent.NewPath.Click(ctx)
			},
		},
		{
			Entity: e.kind, Name: "Edit",
			View:         viewOf(views.NewLCEEditView),
			Prerequisite: navigation.ToSiblingWith("All"),
			Step: func(ctx context.Context, sc *navigation.StepContext) error {
				name, err := entityName(sc)
				if err != nil {
					return err
				}
				parent, err := as[*views.LCEView](sc.Parent)
				if err != nil {
					return err
				}
				return parent.EnvLink(name).Click(ctx)
			},
		},
	}
}

// Operations implements Entity.
func (e *LifecycleEnvironmentEntity) Operations() map[string]Operation {
	return map[string]Operation{
		"create": func(ctx context.Context, a navigation.Args) (any, error) {
			return nil, e.Create(ctx, a.Map("values"), a.String("prior_entity_name"))
		},
		"read": func(ctx context.Context, a navigation.Args) (any, error) {
			return e.Read(ctx, a.String("entity_name"), a.Strings("widget_names")...)
		},
		"read_all": func(ctx context.Context, _ navigation.Args) (any, error) {
			return e.ReadAll(ctx)
		},
		"search_packages": func(ctx context.Context, a navigation.Args) (any, error) {
			return e.SearchPackages(ctx, a.String("entity_name"), a.String("value"),
				a.String("cv"), a.String("repo"))
		},
		"search_module_streams": func(ctx context.Context, a navigation.Args) (any, error) {
			return e.SearchModuleStreams(ctx, a.String("entity_name"), a.String("value"),
				a.String("cv"), a.String("repo"))
		},
		"delete": func(ctx context.Context, a navigation.Args) (any, error) {
			return nil, e.Delete(ctx, a.String("entity_name"))
		},
	}
}
