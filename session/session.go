// Package session ties one browser to the navigation graph and the
// entities of the application for the length of a run.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	uuid "github.com/nu7hatch/gouuid"
	"github.com/spf13/afero"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/liuxd6825/pageflow/common"
	"github.com/liuxd6825/pageflow/entities"
	"github.com/liuxd6825/pageflow/lib/trace"
	"github.com/liuxd6825/pageflow/log"
	"github.com/liuxd6825/pageflow/navigation"
	"github.com/liuxd6825/pageflow/views"
)

var (
	// ErrUnknownEntity is returned by Invoke for an entity type that does not exist.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrUnknownOperation is returned by Invoke for an operation the entity lacks.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrClosed is returned when the session was closed.
	ErrClosed = errors.New("session is closed")
)

// Config holds what a session needs besides its browser.
type Config struct {
	BaseURL  string
	Username string
	Password string

	Timeouts *common.TimeoutSettings
	Retry    navigation.RetryPolicy
	// TaskTimeout bounds background tasks, see entities.Env.
	TaskTimeout time.Duration
	// ScreenshotDir is where Screenshot writes, the working directory if empty.
	ScreenshotDir string
}

// Session is a logged-in browser plus the navigation graph and entities
// driving it. It is not safe for concurrent use.
type Session struct {
	ID string

	conf      Config
	browser   common.Browser
	registry  *navigation.Registry
	navigator *navigation.Navigator
	entities  map[string]entities.Entity

	fs     afero.Fs
	logger *log.Logger
	tracer *trace.Tracer
	closed bool
}

// Option configures a Session.
type Option func(*options)

type options struct {
	fs     afero.Fs
	logger *log.Logger
	tp     oteltrace.TracerProvider
}

// WithFS sets the filesystem screenshots are written to.
func WithFS(fs afero.Fs) Option { return func(o *options) { o.fs = fs } }

// WithLogger sets the category logger.
func WithLogger(l *log.Logger) Option { return func(o *options) { o.logger = l } }

// WithTracerProvider sets the provider navigation and operation spans go to.
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(o *options) { o.tp = tp }
}

// New builds the navigation graph of every entity over b.
func New(b common.Browser, conf Config, opts ...Option) (*Session, error) {
	o := options{
		fs:     afero.NewOsFs(),
		logger: log.NewNullLogger(),
		tp:     trace.NewNoopTracerProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generating session id: %w", err)
	}
	if conf.Timeouts == nil {
		conf.Timeouts = common.NewTimeoutSettings(nil)
	}

	s := &Session{
		ID:       id.String(),
		conf:     conf,
		browser:  b,
		registry: navigation.NewRegistry(),
		entities: make(map[string]entities.Entity),
		fs:       o.fs,
		logger:   o.logger.With("session", id.String()),
	}
	s.tracer = trace.NewTracer(o.tp, map[string]string{"session.id": s.ID})

	navOpts := []navigation.Option{
		navigation.WithLogger(s.logger),
		navigation.WithTracer(s.tracer),
		navigation.WithTimeouts(conf.Timeouts),
	}
	if conf.Retry.Attempts > 0 {
		navOpts = append(navOpts, navigation.WithRetry(conf.Retry))
	}
	s.navigator = navigation.NewNavigator(s.registry, b, navOpts...)

	env := &entities.Env{
		Navigator:   s.navigator,
		Timeouts:    conf.Timeouts,
		Logger:      s.logger,
		Tracer:      s.tracer,
		TaskTimeout: conf.TaskTimeout,
	}
	all := entities.All(env)
	if err := entities.Register(s.registry, all...); err != nil {
		return nil, err
	}
	for _, e := range all {
		s.entities[e.Type()] = e
	}
	s.logger.Debugf("Session:New", "entities:%d destinations:%d", len(all), len(s.registry.Keys()))
	return s, nil
}

// Browser returns the browser the session drives.
func (s *Session) Browser() common.Browser { return s.browser }

// Registry returns the navigation graph.
func (s *Session) Registry() *navigation.Registry { return s.registry }

// Entity returns the entity registered under typ.
func (s *Session) Entity(typ string) (entities.Entity, bool) {
	e, ok := s.entities[typ]
	return e, ok
}

// EntityTypes returns the entity types, sorted.
func (s *Session) EntityTypes() []string {
	types := make([]string, 0, len(s.entities))
	for t := range s.entities {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Login opens the base URL and signs in, unless the browser already shows
// a logged-in screen.
func (s *Session) Login(ctx context.Context) (err error) {
	if s.closed {
		return ErrClosed
	}
	ctx, span := s.tracer.TraceOperation(ctx, "session", "login")
	defer func() { trace.EndSpan(span, err) }()

	if s.conf.BaseURL != "" {
		if err := s.browser.Navigate(ctx, s.conf.BaseURL); err != nil {
			return fmt.Errorf("opening %s: %w", s.conf.BaseURL, err)
		}
	}
	if err := common.EnsurePageSafe(ctx, s.browser, s.conf.Timeouts.PageSafeTimeout()); err != nil {
		return err
	}

	base := views.NewBaseLoggedInView(s.browser)
	if in, err := base.IsDisplayed(ctx); err != nil {
		return err
	} else if in {
		s.logger.Debugf("Session:Login", "already logged in")
		return nil
	}

	timeout := s.conf.Timeouts.NavigationTimeout()
	login := views.NewLoginView(s.browser)
	if err := login.WaitDisplayed(ctx, timeout); err != nil {
		return err
	}
	s.logger.Debugf("Session:Login", "user:%q", s.conf.Username)
	if err := login.Login(ctx, s.conf.Username, s.conf.Password); err != nil {
		return fmt.Errorf("submitting the login form: %w", err)
	}
	if err := base.WaitDisplayed(ctx, timeout); err != nil {
		return fmt.Errorf("logging in as %q: %w", s.conf.Username, err)
	}
	return nil
}

// Logout signs the user out.
func (s *Session) Logout(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	return views.NewBaseLoggedInView(s.browser).Logout(ctx)
}

// Navigate resolves destination name of entity and returns its view.
func (s *Session) Navigate(ctx context.Context, entity, name string, args navigation.Args) (navigation.View, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return s.navigator.Resolve(ctx, entity, name, args)
}

// Invoke runs operation op of entity with args.
func (s *Session) Invoke(ctx context.Context, entity, op string, args navigation.Args) (any, error) {
	if s.closed {
		return nil, ErrClosed
	}
	e, ok := s.entities[entity]
	if !ok {
		return nil, fmt.Errorf("%w %q, known: %s", ErrUnknownEntity, entity, strings.Join(s.EntityTypes(), ", "))
	}
	fn, ok := e.Operations()[op]
	if !ok {
		return nil, fmt.Errorf("%w %q of %s, known: %s", ErrUnknownOperation, op, entity,
			strings.Join(OperationNames(e), ", "))
	}
	if args == nil {
		args = navigation.Args{}
	}
	start := time.Now()
	res, err := fn(ctx, args)
	s.logger.Debugf("Session:Invoke", "%s.%s args:%s elapsed:%s err:%v",
		entity, op, args.Format(), time.Since(start), err)
	return res, err
}

// OperationNames returns the operations of e, sorted.
func OperationNames(e entities.Entity) []string {
	ops := e.Operations()
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Screenshot captures the page into <dir>/<session id>-<name>.png and
// returns the path written.
func (s *Session) Screenshot(ctx context.Context, name string) (string, error) {
	if s.closed {
		return "", ErrClosed
	}
	buf, err := s.browser.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	dir := s.conf.ScreenshotDir
	if dir == "" {
		dir = "."
	}
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating screenshot directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.png", s.ID, sanitize(name)))
	if err := afero.WriteFile(s.fs, path, buf, 0o644); err != nil {
		return "", fmt.Errorf("writing screenshot: %w", err)
	}
	return path, nil
}

// sanitize keeps name usable as a file name.
func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" {
		return "screenshot"
	}
	return name
}

// Close closes the browser. Closing twice is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Debugf("Session:Close", "closing the browser")
	return s.browser.Close()
}
