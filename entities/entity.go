// Package entities exposes the business operations of the application:
// each operation resolves a destination of the navigation graph, waits for
// the page to settle and then fills, clicks and reads the resulting view.
package entities

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/liuxd6825/pageflow/common"
	"github.com/liuxd6825/pageflow/lib/trace"
	"github.com/liuxd6825/pageflow/log"
	"github.com/liuxd6825/pageflow/navigation"
	"github.com/liuxd6825/pageflow/views"
	"github.com/liuxd6825/pageflow/widget"
)

// ErrMissingArgument is returned when an operation or a destination lacks a
// required argument.
var ErrMissingArgument = errors.New("missing argument")

// Operation is an entity operation invoked with keyword arguments.
type Operation func(ctx context.Context, args navigation.Args) (any, error)

// Entity is a domain object exposing business operations.
type Entity interface {
	// Type is the identifier destinations of the entity are registered under.
	Type() string
	Destinations() []navigation.Destination
	Operations() map[string]Operation
}

// Env is what entity operations run against.
type Env struct {
	Navigator *navigation.Navigator
	Timeouts  *common.TimeoutSettings
	Logger    *log.Logger
	Tracer    *trace.Tracer
	// TaskTimeout bounds the wait for background tasks (publish,
	// errata installation). Zero means DefaultTaskTimeout.
	TaskTimeout time.Duration
}

// DefaultTaskTimeout is how long a background task may run.
const DefaultTaskTimeout = 10 * time.Minute

func (env *Env) taskTimeout() time.Duration {
	if env.TaskTimeout > 0 {
		return env.TaskTimeout
	}
	return DefaultTaskTimeout
}

// NewEnv returns an Env over nav with default timeouts, a null logger and
// a noop tracer.
func NewEnv(nav *navigation.Navigator) *Env {
	return &Env{
		Navigator: nav,
		Timeouts:  common.NewTimeoutSettings(nil),
		Logger:    log.NewNullLogger(),
		Tracer:    trace.NewTracer(trace.NewNoopTracerProvider(), nil),
	}
}

// All returns every entity of the application.
func All(env *Env) []Entity {
	return []Entity{
		NewContentViewEntity(env),
		NewErrataEntity(env),
		NewHostEntity(env),
		NewLifecycleEnvironmentEntity(env),
	}
}

// Register adds the destinations of entities to r and validates the graph.
func Register(r *navigation.Registry, entities ...Entity) error {
	for _, e := range entities {
		for _, d := range e.Destinations() {
			if err := r.Register(d); err != nil {
				return err
			}
		}
	}
	return r.Validate()
}

type base struct {
	env  *Env
	kind string
}

func newBase(env *Env, entity any) base {
	return base{env: env, kind: navigation.TypeOf(entity)}
}

// Type implements Entity.
func (e base) Type() string { return e.kind }

func (e base) browser() common.Browser { return e.env.Navigator.Browser() }

// operation opens the span of op. The returned function ends it with the
// error the operation returned.
func (e base) operation(ctx context.Context, op string) (context.Context, func(*error)) {
	e.env.Logger.Debugf("Entity:"+e.kind, "%s", op)
	ctx, span := e.env.Tracer.TraceOperation(ctx, e.kind, op)
	return ctx, func(err *error) { trace.EndSpan(span, *err) }
}

func (e base) ensurePageSafe(ctx context.Context) error {
	return common.EnsurePageSafe(ctx, e.browser(), e.env.Timeouts.PageSafeTimeout())
}

type waiter interface {
	WaitDisplayed(ctx context.Context, timeout time.Duration) error
}

// waitDisplayed waits for a view reached by a click outside of navigation.
func (e base) waitDisplayed(ctx context.Context, v waiter) error {
	return v.WaitDisplayed(ctx, e.env.Timeouts.NavigationTimeout())
}

// settle runs after every navigation: the page must be safe and the
// view displayed before it is touched.
func (e base) settle(ctx context.Context, v waiter) error {
	if err := e.ensurePageSafe(ctx); err != nil {
		return err
	}
	return e.waitDisplayed(ctx, v)
}

// navigateTo resolves destination name of e and returns its view as V.
func navigateTo[V navigation.View](ctx context.Context, e base, name string, args navigation.Args) (V, error) {
	var zero V
	v, err := e.env.Navigator.Resolve(ctx, e.kind, name, args)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(V)
	if !ok {
		return zero, fmt.Errorf("destination %s.%s resolved to %T", e.kind, name, v)
	}
	return typed, nil
}

// viewOf adapts a view constructor to navigation.Destination.View.
func viewOf[V navigation.View](ctor func(common.Browser) V) func(common.Browser) navigation.View {
	return func(b common.Browser) navigation.View { return ctor(b) }
}

// as returns v as V, for steps reaching into their parent or own view.
func as[V any](v navigation.View) (V, error) {
	typed, ok := v.(V)
	if !ok {
		var zero V
		return zero, fmt.Errorf("unexpected view %T, want %T", v, zero)
	}
	return typed, nil
}

// entityName returns the entity_name argument every detail destination needs.
func entityName(sc *navigation.StepContext) (string, error) {
	name := sc.Args.String("entity_name")
	if name == "" {
		return "", fmt.Errorf("%w: entity_name", ErrMissingArgument)
	}
	return name, nil
}

// openRow searches a list for query, then clicks the column widget of the
// row matching filters.
func openRow(ctx context.Context, list views.Searchable, query string, filters map[string]string, column string) error {
	if _, err := list.Search(ctx, query); err != nil {
		return err
	}
	return clickCell(ctx, list.Table, filters, column)
}

func clickCell(ctx context.Context, table *widget.Table, filters map[string]string, column string) error {
	row, err := table.Row(ctx, filters)
	if err != nil {
		return err
	}
	cell, err := row.Cell(column)
	if err != nil {
		return err
	}
	return cell.Click(ctx)
}
