package navigation

import (
	"context"
	"fmt"
	"time"

	"github.com/liuxd6825/pageflow/common"
	"github.com/liuxd6825/pageflow/lib/trace"
	"github.com/liuxd6825/pageflow/log"
)

// Navigator resolves destinations against one browser session. It is not
// safe for concurrent use.
type Navigator struct {
	registry *Registry
	browser  common.Browser
	logger   *log.Logger
	tracer   *trace.Tracer
	timeouts *common.TimeoutSettings
	retry    RetryPolicy
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithLogger sets the category logger.
func WithLogger(l *log.Logger) Option { return func(n *Navigator) { n.logger = l } }

// WithTracer sets the tracer opening a span per destination.
func WithTracer(t *trace.Tracer) Option { return func(n *Navigator) { n.tracer = t } }

// WithTimeouts sets the timeout settings; the navigation timeout bounds readiness waits.
func WithTimeouts(ts *common.TimeoutSettings) Option { return func(n *Navigator) { n.timeouts = ts } }

// WithRetry sets the default step retry policy.
func WithRetry(p RetryPolicy) Option { return func(n *Navigator) { n.retry = p } }

// NewNavigator creates a Navigator over registry driving b.
func NewNavigator(registry *Registry, b common.Browser, opts ...Option) *Navigator {
	n := &Navigator{
		registry: registry,
		browser:  b,
		logger:   log.NewNullLogger(),
		tracer:   trace.NewTracer(trace.NewNoopTracerProvider(), nil),
		timeouts: common.NewTimeoutSettings(nil),
		retry:    RetryPolicy{Attempts: common.DefaultStepAttempts, Delay: common.DefaultStepRetryDelay},
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Registry returns the graph the navigator resolves against.
func (n *Navigator) Registry() *Registry { return n.registry }

// Browser returns the driven browser.
func (n *Navigator) Browser() common.Browser { return n.browser }

// Resolve navigates to the destination (entity, name): it resolves the
// prerequisite chain first, runs the step against the prerequisite's view,
// retrying transient failures, and returns the view once it is displayed.
func (n *Navigator) Resolve(ctx context.Context, entity, name string, args Args) (View, error) {
	if args == nil {
		args = Args{}
	}
	return n.resolve(ctx, Key{Entity: entity, Name: name}, args, make(map[Key]bool))
}

func (n *Navigator) resolve(ctx context.Context, key Key, args Args, visiting map[Key]bool) (_ View, err error) {
	dest, ok := n.registry.Lookup(key)
	if !ok {
		return nil, navError(key, 0, fmt.Errorf("%w %s", ErrUnknownDestination, key))
	}
	if visiting[key] {
		return nil, navError(key, 0, fmt.Errorf("prerequisite cycle through %s", key))
	}
	visiting[key] = true
	defer delete(visiting, key)

	ctx, span := n.tracer.TraceNavigation(ctx, key.Entity, key.Name)
	defer func() { trace.EndSpan(span, err) }()

	n.logger.Debugf("Navigator:Resolve", "%s args:%s", key, args.Format())

	sc := &StepContext{
		Browser:   n.browser,
		View:      dest.View(n.browser),
		Args:      args,
		Navigator: n,
	}

	if dest.AmIHere != nil {
		here, err := dest.AmIHere(ctx, sc)
		if err != nil {
			return nil, navError(key, 0, fmt.Errorf("checking whether %s is open: %w", key, err))
		}
		if here {
			n.logger.Debugf("Navigator:Resolve", "already at %s", key)
			if err := n.waitDisplayed(ctx, sc.View); err != nil {
				return nil, err
			}
			return sc.View, nil
		}
	}

	if pk, ok := dest.prerequisiteKey(); ok {
		pargs := args
		if dest.Prerequisite.Forward != nil {
			pargs = dest.Prerequisite.Forward(args)
		}
		parent, err := n.resolve(ctx, pk, pargs, visiting)
		if err != nil {
			return nil, fmt.Errorf("prerequisite of %s: %w", key, err)
		}
		sc.Parent = parent
	}

	if err := n.runStep(ctx, dest, sc); err != nil {
		return nil, err
	}

	if err := n.waitDisplayed(ctx, sc.View); err != nil {
		return nil, err
	}
	return sc.View, nil
}

func (n *Navigator) runStep(ctx context.Context, dest *Destination, sc *StepContext) error {
	policy := n.retry
	if dest.Retry.Attempts > 0 {
		policy = dest.Retry
	}
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}

	for attempt := 1; ; attempt++ {
		err := dest.Step(ctx, sc)
		if err == nil {
			if attempt > 1 {
				n.logger.Debugf("Navigator:Step", "%s succeeded on attempt %d", dest.Key(), attempt)
			}
			return nil
		}
		if !common.IsTransient(err) || attempt >= policy.Attempts || ctx.Err() != nil {
			return navError(dest.Key(), attempt, err)
		}
		n.logger.Warnf("Navigator:Step", "%s attempt %d/%d failed, retrying in %s: %v",
			dest.Key(), attempt, policy.Attempts, policy.Delay, err)
		if err := n.sleep(ctx, policy.Delay); err != nil {
			return navError(dest.Key(), attempt, err)
		}
	}
}

// waitDisplayed polls the readiness predicate of v.
func (n *Navigator) waitDisplayed(ctx context.Context, v View) error {
	timeout := n.timeouts.NavigationTimeout()
	err := common.WaitFor(ctx, viewName(v),
		common.PollOptions{Timeout: timeout, HandleErrors: true},
		v.IsDisplayed)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	return &common.DisplayTimeoutError{View: viewName(v), Timeout: timeout, Err: err}
}

func viewName(v View) string {
	if named, ok := v.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", v)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func navError(key Key, attempts int, err error) *common.NavigationError {
	return &common.NavigationError{Entity: key.Entity, Destination: key.Name, Attempts: attempts, Err: err}
}
