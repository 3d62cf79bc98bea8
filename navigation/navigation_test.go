package navigation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"

	"github.com/liuxd6825/pageflow/common"
	"github.com/liuxd6825/pageflow/common/browsertest"
	"github.com/liuxd6825/pageflow/errext"
	"github.com/liuxd6825/pageflow/errext/exitcodes"
	"github.com/liuxd6825/pageflow/lib/testutils"
	"github.com/liuxd6825/pageflow/lib/trace"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeView is displayed once shown is set, which steps do.
type fakeView struct {
	name   string
	shown  bool
	checks int
}

func (v *fakeView) Name() string { return v.name }

func (v *fakeView) IsDisplayed(context.Context) (bool, error) {
	v.checks++
	return v.shown, nil
}

type world struct {
	registry *Registry
	views    map[string]*fakeView
	steps    []string
	args     map[string]Args
}

func newWorld() *world {
	return &world{registry: NewRegistry(), views: make(map[string]*fakeView), args: make(map[string]Args)}
}

func (w *world) view(name string) func(common.Browser) View {
	return func(common.Browser) View {
		v := &fakeView{name: name + "View"}
		w.views[name] = v
		return v
	}
}

// step records the call and shows the view after failing with errs in order.
func (w *world) step(name string, errs ...error) func(context.Context, *StepContext) error {
	return func(_ context.Context, sc *StepContext) error {
		w.steps = append(w.steps, name)
		w.args[name] = sc.Args
		if len(errs) > 0 {
			err := errs[0]
			errs = errs[1:]
			if err != nil {
				return err
			}
		}
		sc.View.(*fakeView).shown = true
		return nil
	}
}

func (w *world) navigator(opts ...Option) *Navigator {
	ts := common.NewTimeoutSettings(nil)
	ts.SetDefaultNavigationTimeout(100 * time.Millisecond)
	opts = append([]Option{WithTimeouts(ts), WithRetry(RetryPolicy{Attempts: 2})}, opts...)
	return NewNavigator(w.registry, browsertest.New(), opts...)
}

func TestResolvePrerequisiteChain(t *testing.T) {
	t.Parallel()

	w := newWorld()
	w.registry.MustRegister(
		Destination{Entity: "content_view", Name: "All", View: w.view("All"), Step: w.step("All")},
		Destination{
			Entity: "content_view", Name: "Edit", View: w.view("Edit"),
			Prerequisite: ToSiblingWith("All"),
			Step: func(ctx context.Context, sc *StepContext) error {
				parent := sc.Parent.(*fakeView)
				assert.True(t, parent.shown, "prerequisite view is ready before the step runs")
				return w.step("Edit")(ctx, sc)
			},
		},
		Destination{
			Entity: "content_view", Name: "Publish", View: w.view("Publish"),
			Prerequisite: ToSibling("Edit"), Step: w.step("Publish"),
		},
	)
	require.NoError(t, w.registry.Validate())

	v, err := w.navigator().Resolve(context.Background(), "content_view", "Publish", Args{"entity_name": "cv1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"All", "Edit", "Publish"}, w.steps)
	assert.Same(t, w.views["Publish"], v)
	displayed, err := v.IsDisplayed(context.Background())
	require.NoError(t, err)
	assert.True(t, displayed)

	assert.Equal(t, Args{"entity_name": "cv1"}, w.args["Publish"])
	assert.Equal(t, Args{"entity_name": "cv1"}, w.args["Edit"])
	assert.Equal(t, Args{}, w.args["All"], "ToSiblingWith forwards only the named arguments")
}

func TestResolveRetriesTransientStepOnce(t *testing.T) {
	t.Parallel()

	logger, hook := testutils.NewLogger()
	w := newWorld()
	w.registry.MustRegister(Destination{
		Entity: "errata", Name: "All", View: w.view("All"),
		Step: w.step("All", common.ErrElementNotFound),
	})

	_, err := w.navigator(WithLogger(logger)).Resolve(context.Background(), "errata", "All", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"All", "All"}, w.steps, "exactly one retry")
	assert.True(t, testutils.LogContains(hook.Drain(), logrus.WarnLevel, "errata.All attempt 1/2 failed"))
}

func TestResolveStepFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("500 internal server error")
	testCases := []struct {
		name        string
		errs        []error
		retry       RetryPolicy
		expAttempts int
		expErr      error
	}{
		{"not transient", []error{boom}, RetryPolicy{}, 1, boom},
		{"retries exhausted", []error{common.ErrStaleElement, common.ErrStaleElement}, RetryPolicy{}, 2, common.ErrStaleElement},
		{
			"destination policy", []error{common.ErrNotInteractable, common.ErrNotInteractable, common.ErrNotInteractable},
			RetryPolicy{Attempts: 3, Delay: time.Millisecond}, 3, common.ErrNotInteractable,
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			w := newWorld()
			w.registry.MustRegister(Destination{
				Entity: "host", Name: "All", View: w.view("All"),
				Step: w.step("All", tc.errs...), Retry: tc.retry,
			})

			_, err := w.navigator().Resolve(context.Background(), "host", "All", nil)
			var nerr *common.NavigationError
			require.ErrorAs(t, err, &nerr)
			assert.Equal(t, tc.expAttempts, nerr.Attempts)
			assert.Equal(t, "host", nerr.Entity)
			assert.ErrorIs(t, err, tc.expErr)
			assert.Len(t, w.steps, tc.expAttempts)
		})
	}
}

func TestResolvePrerequisiteFailurePropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("menu is gone")
	w := newWorld()
	w.registry.MustRegister(
		Destination{Entity: "errata", Name: "All", View: w.view("All"), Step: w.step("All", boom)},
		Destination{Entity: "errata", Name: "Details", View: w.view("Details"), Prerequisite: ToSibling("All"), Step: w.step("Details")},
	)

	_, err := w.navigator().Resolve(context.Background(), "errata", "Details", Args{"entity_name": "RHSA-2024:0001"})
	require.ErrorIs(t, err, boom)

	var nerr *common.NavigationError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "All", nerr.Destination)
	assert.Equal(t, 1, nerr.Attempts)
	assert.ErrorContains(t, err, "prerequisite of errata.Details: navigating to errata.All")
	assert.Equal(t, []string{"All"}, w.steps, "the step is not run when its prerequisite failed")
}

func TestResolvePrerequisiteDisplayTimeout(t *testing.T) {
	t.Parallel()

	w := newWorld()
	w.registry.MustRegister(
		Destination{
			Entity: "errata", Name: "All", View: w.view("All"),
			Step: func(context.Context, *StepContext) error { return nil },
		},
		Destination{Entity: "errata", Name: "Details", View: w.view("Details"), Prerequisite: ToSibling("All"), Step: w.step("Details")},
	)

	_, err := w.navigator().Resolve(context.Background(), "errata", "Details", nil)
	var derr *common.DisplayTimeoutError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "AllView", derr.View)

	var nerr *common.NavigationError
	assert.False(t, errors.As(err, &nerr))
	code, ok := errext.ExitCodeOf(err)
	require.True(t, ok)
	assert.Equal(t, exitcodes.DisplayTimeout, code)
	assert.Empty(t, w.steps)
}

func TestResolveDisplayTimeout(t *testing.T) {
	t.Parallel()

	w := newWorld()
	w.registry.MustRegister(Destination{
		Entity: "host", Name: "All", View: w.view("All"),
		Step: func(context.Context, *StepContext) error { return nil },
	})

	_, err := w.navigator().Resolve(context.Background(), "host", "All", nil)
	var derr *common.DisplayTimeoutError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "AllView", derr.View)
	assert.Positive(t, w.views["All"].checks)
}

func TestResolveAmIHere(t *testing.T) {
	t.Parallel()

	w := newWorld()
	w.registry.MustRegister(
		Destination{Entity: "host", Name: "All", View: w.view("All"), Step: w.step("All")},
		Destination{
			Entity: "host", Name: "Details", View: w.view("Details"), Prerequisite: ToSibling("All"),
			Step: w.step("Details"),
			AmIHere: func(_ context.Context, sc *StepContext) (bool, error) {
				switch sc.Args.String("entity_name") {
				case "already-open":
					sc.View.(*fakeView).shown = true
					return true, nil
				case "still-loading":
					return true, nil
				case "gone":
					return false, common.ErrStaleElement
				}
				return false, nil
			},
		},
	)

	_, err := w.navigator().Resolve(context.Background(), "host", "Details", Args{"entity_name": "already-open"})
	require.NoError(t, err)
	assert.Empty(t, w.steps)
	assert.Positive(t, w.views["Details"].checks, "the view is checked for readiness")

	_, err = w.navigator().Resolve(context.Background(), "host", "Details", Args{"entity_name": "still-loading"})
	var derr *common.DisplayTimeoutError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "DetailsView", derr.View)
	assert.Empty(t, w.steps)

	_, err = w.navigator().Resolve(context.Background(), "host", "Details", Args{"entity_name": "gone"})
	require.ErrorIs(t, err, common.ErrStaleElement)
	assert.ErrorContains(t, err, "checking whether host.Details is open")
	assert.Empty(t, w.steps)

	_, err = w.navigator().Resolve(context.Background(), "host", "Details", Args{"entity_name": "other"})
	require.NoError(t, err)
	assert.Equal(t, []string{"All", "Details"}, w.steps)
}

func TestResolveUnknownDestination(t *testing.T) {
	t.Parallel()

	_, err := newWorld().navigator().Resolve(context.Background(), "host", "Nowhere", nil)
	require.ErrorIs(t, err, ErrUnknownDestination)
}

func TestResolveTraces(t *testing.T) {
	t.Parallel()

	rec := tracetest.NewSpanRecorder()
	tracer := trace.NewTracer(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)), nil)

	w := newWorld()
	w.registry.MustRegister(
		Destination{Entity: "errata", Name: "All", View: w.view("All"), Step: w.step("All")},
		Destination{Entity: "errata", Name: "Details", View: w.view("Details"), Prerequisite: ToSibling("All"), Step: w.step("Details")},
	)
	_, err := w.navigator(WithTracer(tracer)).Resolve(context.Background(), "errata", "Details", nil)
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "navigate errata.All", spans[0].Name())
	assert.Equal(t, "navigate errata.Details", spans[1].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
}
