package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/liuxd6825/pageflow/chromium"
	"github.com/liuxd6825/pageflow/common"
	"github.com/liuxd6825/pageflow/errext"
	"github.com/liuxd6825/pageflow/errext/exitcodes"
	"github.com/liuxd6825/pageflow/lib/trace"
	"github.com/liuxd6825/pageflow/log"
	"github.com/liuxd6825/pageflow/navigation"
	"github.com/liuxd6825/pageflow/session"
)

// categoryLogger returns the library logger, filtered by the configured categories.
func categoryLogger(gs *globalState, conf Config) (*log.Logger, error) {
	l, err := log.NewWithCategoryFilter(gs.logger, gs.flags.verbose, conf.LogCategories.String)
	if err != nil {
		return nil, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}
	return l, nil
}

// launchBrowser connects to the configured remote browser or launches a
// local Chromium.
func launchBrowser(ctx context.Context, gs *globalState, conf Config) (common.Browser, error) {
	logger, err := categoryLogger(gs, conf)
	if err != nil {
		return nil, err
	}

	opts := chromium.NewLaunchOptions()
	opts.Args = conf.BrowserArgs
	opts.Debug = gs.flags.verbose
	opts.ExecutablePath = conf.ExecutablePath.String
	opts.Headless = conf.Headless.Bool
	opts.IgnoreHTTPSErrors = conf.IgnoreHTTPSErrors.Bool
	opts.Proxy = conf.Proxy.String
	opts.SlowMo = conf.SlowMo.TimeDuration()
	opts.Timeout = conf.Timeout.TimeDuration()
	opts.ScreenWidth, opts.ScreenHeight, err = conf.windowSize()
	if err != nil {
		return nil, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}

	bt := chromium.NewBrowserType(logger)
	var b *chromium.Browser
	if conf.RemoteURL.String != "" {
		b, err = bt.Connect(ctx, conf.RemoteURL.String, opts)
	} else {
		b, err = bt.Launch(ctx, opts)
	}
	if err != nil {
		return nil, errext.WithHint(
			errext.WithExitCodeIfNone(err, exitcodes.BrowserLaunchFailed),
			"set --executable-path or connect to a running browser with --remote-url")
	}
	return b, nil
}

// newSession opens the browser and builds a session over it. The returned
// function closes both the session and the tracer provider.
func newSession(gs *globalState, conf Config) (*session.Session, func(), error) {
	logger, err := categoryLogger(gs, conf)
	if err != nil {
		return nil, nil, err
	}

	if conf.Username.String != "" && !conf.Password.Valid {
		pw, err := gs.console.readPassword(fmt.Sprintf("password for %s: ", conf.Username.String))
		if err != nil {
			return nil, nil, errext.WithHint(
				errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig),
				"set PAGEFLOW_PASSWORD or the password key of the config file")
		}
		conf.Password.SetValid(pw)
	}

	tp := trace.NewNoopTracerProvider()
	if line := conf.TracesOutput.String; line != "" {
		tp, err = trace.TracerProviderFromConfigLine(gs.ctx, line)
		if err != nil {
			return nil, nil, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
		}
	}

	b, err := gs.launch(gs.ctx, gs, conf)
	if err != nil {
		_ = tp.Shutdown(gs.ctx)
		return nil, nil, err
	}

	s, err := session.New(b, session.Config{
		BaseURL:  conf.BaseURL.String,
		Username: conf.Username.String,
		Password: conf.Password.String,
		Timeouts: conf.timeoutSettings(),
		Retry: navigation.RetryPolicy{
			Attempts: int(conf.StepAttempts.Int64),
			Delay:    conf.RetryDelay.TimeDuration(),
		},
		TaskTimeout:   conf.TaskTimeout.TimeDuration(),
		ScreenshotDir: conf.ScreenshotDir.String,
	},
		session.WithFS(gs.fs),
		session.WithLogger(logger),
		session.WithTracerProvider(tp),
	)
	if err != nil {
		_ = b.Close()
		_ = tp.Shutdown(gs.ctx)
		return nil, nil, err
	}
	gs.logger.WithField("session", s.ID).Debug("session started")

	closeFn := func() {
		if err := s.Close(); err != nil {
			gs.logger.WithError(err).Warn("closing the browser")
		}
		if err := tp.Shutdown(context.Background()); err != nil {
			gs.logger.WithError(err).Warn("shutting down the tracer provider")
		}
	}
	return s, closeFn, nil
}

// parseArgs turns repeated key=value arguments into navigation arguments.
// A key given twice becomes a list.
func parseArgs(pairs []string) (navigation.Args, error) {
	args := navigation.Args{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("argument %q must be key=value", p)
		}
		switch prev := args[k].(type) {
		case nil:
			args[k] = v
		case string:
			args[k] = []any{prev, v}
		case []any:
			args[k] = append(prev, v)
		}
	}
	return args, nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
