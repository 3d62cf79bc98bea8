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

package chromium

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/liuxd6825/pageflow/log"
)

// BrowserType launches a Chromium browser or connects to an existing one.
type BrowserType struct {
	logger   *log.Logger
	execPath string // path to the Chromium executable
}

// NewBrowserType returns a Chromium browser type logging to logger.
func NewBrowserType(logger *log.Logger) *BrowserType {
	return &BrowserType{logger: logger}
}

// Name returns the name of this browser type.
func (b *BrowserType) Name() string {
	return "chromium"
}

// Connect attaches to the browser listening on the DevTools websocket wsURL.
func (b *BrowserType) Connect(ctx context.Context, wsURL string, opts *LaunchOptions) (*Browser, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, wsURL)
	browser, err := b.start(allocCtx, allocCancel, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to browser at %s: %w", wsURL, err)
	}
	return browser, nil
}

// Launch starts a new Chromium process and opens a tab in it.
func (b *BrowserType) Launch(ctx context.Context, opts *LaunchOptions) (*Browser, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	path := opts.ExecutablePath
	if path == "" {
		path = b.ExecutablePath()
	}
	if path == "" {
		return nil, fmt.Errorf("launching browser: no Chromium executable found, set the executable path")
	}

	envs := make([]string, 0, len(opts.Env))
	for k, v := range opts.Env {
		envs = append(envs, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(envs)

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.ExecPath(path),
		chromedp.WSURLReadTimeout(opts.Timeout),
	}
	if len(envs) > 0 {
		allocOpts = append(allocOpts, chromedp.Env(envs...))
	}
	for name, value := range b.flags(opts) {
		allocOpts = append(allocOpts, chromedp.Flag(name, value))
	}
	b.logger.Debugf("BrowserType:Launch", "executable %q", path)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browser, err := b.start(allocCtx, allocCancel, opts)
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}
	return browser, nil
}

// start opens the tab. The first Run allocates the browser and ties it to
// the tab context, so it must not run under a shorter lived context.
func (b *BrowserType) start(allocCtx context.Context, allocCancel context.CancelFunc, opts *LaunchOptions) (*Browser, error) {
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			b.logger.Debugf("chromedp", format, args...)
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			b.logger.Errorf("chromedp", format, args...)
		}),
	)
	cancel := func() {
		tabCancel()
		allocCancel()
	}
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, err
	}
	viewport := chromedp.ActionFunc(func(ctx context.Context) error {
		return emulation.SetDeviceMetricsOverride(opts.ScreenWidth, opts.ScreenHeight, 1, false).Do(ctx)
	})
	if err := chromedp.Run(tabCtx, viewport); err != nil {
		cancel()
		return nil, fmt.Errorf("setting the viewport: %w", err)
	}
	return &Browser{ctx: tabCtx, cancel: cancel, logger: b.logger, slowMo: opts.SlowMo}, nil
}

// ExecutablePath returns the path where the browser executable is expected.
func (b *BrowserType) ExecutablePath() (execPath string) {
	if b.execPath != "" {
		return b.execPath
	}
	defer func() {
		b.execPath = execPath
	}()

	for _, path := range [...]string{
		// Unix-like
		"headless_shell",
		"headless-shell",
		"chromium",
		"chromium-browser",
		"google-chrome",
		"google-chrome-stable",
		"google-chrome-beta",
		"google-chrome-unstable",
		"/usr/bin/google-chrome",

		// Windows
		"chrome",
		"chrome.exe", // in case PATHEXT is misconfigured
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		filepath.Join(os.Getenv("USERPROFILE"), `AppData\Local\Google\Chrome\Application\chrome.exe`),

		// Mac
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
	} {
		if _, err := exec.LookPath(path); err == nil {
			return path
		}
	}

	return ""
}

// flags returns the command line flags of a launch, without the leading dashes.
func (b *BrowserType) flags(lopts *LaunchOptions) map[string]any {
	// After Puppeteer's and Playwright's default behavior.
	f := map[string]any{
		"disable-background-networking":                      true,
		"enable-features":                                    "NetworkService,NetworkServiceInProcess",
		"disable-background-timer-throttling":                true,
		"disable-backgrounding-occluded-windows":             true,
		"disable-breakpad":                                   true,
		"disable-component-extensions-with-background-pages": true,
		"disable-default-apps":                               true,
		"disable-dev-shm-usage":                              true,
		"disable-extensions":                                 true,
		//nolint:lll
		"disable-features":                "ImprovedCookieControls,LazyFrameLoading,GlobalMediaControls,DestroyProfileOnBrowserClose,MediaRouter,AcceptCHFrame",
		"disable-hang-monitor":            true,
		"disable-ipc-flooding-protection": true,
		"disable-popup-blocking":          true,
		"disable-prompt-on-repost":        true,
		"disable-renderer-backgrounding":  true,
		"force-color-profile":             "srgb",
		"metrics-recording-only":          true,
		"no-first-run":                    true,
		"enable-automation":               true,
		"password-store":                  "basic",
		"use-mock-keychain":               true,
		"no-service-autorun":              true,

		"no-default-browser-check":    true,
		"headless":                    lopts.Headless,
		"auto-open-devtools-for-tabs": lopts.Devtools,
		"window-size":                 fmt.Sprintf("%d,%d", lopts.ScreenWidth, lopts.ScreenHeight),
	}
	if lopts.Headless {
		f["hide-scrollbars"] = true
		f["mute-audio"] = true
		f["blink-settings"] = "primaryHoverType=2,availableHoverTypes=2,primaryPointerType=4,availablePointerTypes=4"
	}
	if os.Getuid() == 0 {
		// Chromium refuses to start as root, e.g. in a container, without it.
		f["no-sandbox"] = true
	}
	if lopts.IgnoreHTTPSErrors {
		f["ignore-certificate-errors"] = true
	}
	if lopts.Proxy != "" {
		f["proxy-server"] = lopts.Proxy
	}
	ignoreDefaultArgsFlags(f, lopts.IgnoreDefaultArgs)

	setFlagsFromArgs(f, lopts.Args)
	setHostResolverRules(f, lopts.Hosts)

	return f
}

// ignoreDefaultArgsFlags ignores any flags in the provided slice.
func ignoreDefaultArgsFlags(flags map[string]any, toIgnore []string) {
	for _, name := range toIgnore {
		delete(flags, strings.TrimPrefix(name, "--"))
	}
}

// setFlagsFromArgs fills flags by parsing the "arg=value" args.
func setFlagsFromArgs(flags map[string]any, args []string) {
	var argname, argval string
	for _, arg := range args {
		pair := strings.SplitN(arg, "=", 2)
		argname, argval = strings.TrimSpace(pair[0]), ""
		if len(pair) > 1 {
			argval = trimQuotes(strings.TrimSpace(pair[1]))
		}
		flags[argname] = argval
	}
}

// setHostResolverRules merges the hosts mapping into the
// "host-resolver-rules" flag, keeping rules passed as arguments.
func setHostResolverRules(flags map[string]any, hosts map[string]string) {
	hostResolver := []string{}
	if currHostResolver, ok := flags["host-resolver-rules"]; ok {
		hostResolver = append(hostResolver, fmt.Sprintf("%s", currHostResolver))
	}
	for k, v := range hosts {
		hostResolver = append(hostResolver, fmt.Sprintf("MAP %s %s", k, v))
	}
	if len(hostResolver) > 0 {
		sort.Strings(hostResolver)
		flags["host-resolver-rules"] = strings.Join(hostResolver, ",")
	}
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		if c := s[len(s)-1]; s[0] == c && (c == '"' || c == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
