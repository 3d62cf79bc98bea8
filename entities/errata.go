package entities

import (
	"context"
	"regexp"
	"time"

	"github.com/liuxd6825/pageflow/navigation"
	"github.com/liuxd6825/pageflow/views"
)

// erratumIDPattern matches advisory identifiers like RHSA-2024:1234.
var erratumIDPattern = regexp.MustCompile(`\w{3,4}[:-]\d{4}[-:]\d{4}`)

// ErratumRowFilter returns the errata table filter selecting the erratum
// called name: on the Errata ID column for advisory identifiers, on the
// Title column otherwise.
func ErratumRowFilter(name string) map[string]string {
	if erratumIDPattern.MatchString(name) {
		return map[string]string{"errata_id": name}
	}
	return map[string]string{"title": name}
}

// InstallMethod is how errata get installed on a host. It decides which
// screen follows the installation.
type InstallMethod int

const (
	// InstallViaRemoteExecution runs a remote execution job; progress is
	// shown on the job invocation screen.
	InstallViaRemoteExecution InstallMethod = iota
	// InstallViaKatello uses the katello agent; progress is shown on the
	// task details screen.
	InstallViaKatello
)

// ParseInstallMethod maps "katello" to InstallViaKatello and anything else
// to InstallViaRemoteExecution.
func ParseInstallMethod(s string) InstallMethod {
	if s == "katello" {
		return InstallViaKatello
	}
	return InstallViaRemoteExecution
}

func (m InstallMethod) String() string {
	if m == InstallViaKatello {
		return "katello"
	}
	return "rex"
}

// ErrataFilter narrows the errata list.
type ErrataFilter struct {
	Applicable  bool
	Installable bool
	Repo        string
}

func (f ErrataFilter) args(name string) navigation.Args {
	return navigation.Args{
		"entity_name": name,
		"applicable":  f.Applicable,
		"installable": f.Installable,
		"repo":        f.Repo,
	}
}

// ErrataEntity manages errata.
type ErrataEntity struct {
	base
}

// NewErrataEntity returns the errata entity.
func NewErrataEntity(env *Env) *ErrataEntity {
	return &ErrataEntity{base: newBase(env, &ErrataEntity{})}
}

// Search returns the errata matching value within filter.
func (e *ErrataEntity) Search(ctx context.Context, value string, filter ErrataFilter) (_ []map[string]string, err error) {
	ctx, end := e.operation(ctx, "search")
	defer end(&err)

	view, err := navigateTo[*views.ErratumView](ctx, e.base, "All", nil)
	if err != nil {
		return nil, err
	}
	return view.Search(ctx, value, filter.Applicable, filter.Installable, filter.Repo)
}

// Read returns the details of an erratum, found by id or title within
// filter. environment, when set, filters the content hosts tab.
func (e *ErrataEntity) Read(
	ctx context.Context, name string, filter ErrataFilter, environment string, widgetNames ...string,
) (_ map[string]any, err error) {
	ctx, end := e.operation(ctx, "read")
	defer end(&err)

	view, err := navigateTo[*views.ErrataDetailsView](ctx, e.base, "Details", filter.args(name))
	if err != nil {
		return nil, err
	}
	if environment != "" {
		if _, err := view.ContentHosts.EnvironmentFilter.Fill(ctx, environment); err != nil {
			return nil, err
		}
	}
	return view.ReadFields(ctx, widgetNames...)
}

// Install applies an erratum to a content host and waits for the
// installation to finish. The result is the task details for katello and
// the job invocation status for remote execution.
func (e *ErrataEntity) Install(ctx context.Context, name, hostName string, via InstallMethod) (_ map[string]any, err error) {
	ctx, end := e.operation(ctx, "install")
	defer end(&err)

	view, err := navigateTo[*views.ErrataDetailsView](ctx, e.base, "Details", ErrataFilter{}.args(name))
	if err != nil {
		return nil, err
	}
	hosts := view.ContentHosts
	if _, err := hosts.Search(ctx, hostName, ""); err != nil {
		return nil, err
	}
	row, err := hosts.Table.Row(ctx, map[string]string{"Name": hostName})
	if err != nil {
		return nil, err
	}
	cell, err := row.Cell("0")
	if err != nil {
		return nil, err
	}
	if _, err := cell.Fill(ctx, true); err != nil {
		return nil, err
	}
	if err := hosts.Apply.Click(ctx); err != nil {
		return nil, err
	}

	confirm := views.NewErrataInstallationConfirmationView(e.browser())
	if err := e.waitDisplayed(ctx, confirm); err != nil {
		return nil, err
	}
	if err := confirm.Confirm.Click(ctx); err != nil {
		return nil, err
	}

	e.env.Logger.Debugf("Entity:"+e.kind, "installing %s on %s via %s", name, hostName, via)
	switch via {
	case InstallViaKatello:
		return e.taskResult(ctx)
	default:
		return e.jobResult(ctx)
	}
}

func (e *ErrataEntity) taskResult(ctx context.Context) (map[string]any, error) {
	task := views.NewErrataTaskDetailsView(e.browser())
	if err := e.waitDisplayed(ctx, task); err != nil {
		return nil, err
	}
	if _, err := task.Progressbar.WaitForResult(ctx, e.env.taskTimeout(), time.Second); err != nil {
		return nil, err
	}
	return task.ReadFields(ctx)
}

func (e *ErrataEntity) jobResult(ctx context.Context) (map[string]any, error) {
	job := views.NewJobInvocationStatusView(e.browser())
	if err := job.WaitForResult(ctx, e.env.taskTimeout(), time.Second); err != nil {
		return nil, err
	}
	return job.ReadFields(ctx)
}

// SearchContentHosts searches the content hosts an erratum applies to.
func (e *ErrataEntity) SearchContentHosts(ctx context.Context, name, value, environment string) (_ []map[string]string, err error) {
	ctx, end := e.operation(ctx, "search_content_hosts")
	defer end(&err)

	view, err := navigateTo[*views.ErrataDetailsView](ctx, e.base, "Details", ErrataFilter{}.args(name))
	if err != nil {
		return nil, err
	}
	return view.ContentHosts.Search(ctx, value, environment)
}

// Destinations implements Entity.
func (e *ErrataEntity) Destinations() []navigation.Destination {
	return []navigation.Destination{
		{
			Entity: e.kind, Name: "All",
			View: viewOf(views.NewErratumView),
			Step: func(ctx context.Context, sc *navigation.StepContext) error {
				v, err := as[*views.ErratumView](sc.View)
				if err != nil {
					return err
				}
				return v.Menu.Select(ctx, "Content", "Errata")
			},
		},
		{
			Entity: e.kind, Name: "Details",
			View:         viewOf(views.NewErrataDetailsView),
			Prerequisite: navigation.ToSiblingWith("All"),
			Step: func(ctx context.Context, sc *navigation.StepContext) error {
				name, err := entityName(sc)
				if err != nil {
					return err
				}
				parent, err := as[*views.ErratumView](sc.Parent)
				if err != nil {
					return err
				}
				a := sc.Args
				if _, err := parent.Search(ctx, name, a.Bool("applicable"), a.Bool("installable"), a.String("repo")); err != nil {
					return err
				}
				return clickCell(ctx, parent.Table, ErratumRowFilter(name), "Errata ID")
			},
		},
	}
}

// Operations implements Entity. search filters on applicable errata
// unless told otherwise.
func (e *ErrataEntity) Operations() map[string]Operation {
	filter := func(a navigation.Args, applicable bool) ErrataFilter {
		if _, ok := a["applicable"]; ok {
			applicable = a.Bool("applicable")
		}
		return ErrataFilter{Applicable: applicable, Installable: a.Bool("installable"), Repo: a.String("repo")}
	}
	return map[string]Operation{
		"search": func(ctx context.Context, a navigation.Args) (any, error) {
			return e.Search(ctx, a.String("value"), filter(a, true))
		},
		"read": func(ctx context.Context, a navigation.Args) (any, error) {
			return e.Read(ctx, a.String("entity_name"), filter(a, false), a.String("environment"),
				a.Strings("widget_names")...)
		},
		"install": func(ctx context.Context, a navigation.Args) (any, error) {
			return e.Install(ctx, a.String("entity_name"), a.String("host_name"),
				ParseInstallMethod(a.String("installed_via")))
		},
		"search_content_hosts": func(ctx context.Context, a navigation.Args) (any, error) {
			return e.SearchContentHosts(ctx, a.String("entity_name"), a.String("value"), a.String("environment"))
		},
	}
}
