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
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuxd6825/pageflow/log"
)

func TestBrowserTypeFlags(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		flag                      string
		changeOpts                *LaunchOptions
		expInitVal, expChangedVal any
		post                      func(t *testing.T, flags map[string]any)
	}{
		{
			flag:       "auto-open-devtools-for-tabs",
			changeOpts: &LaunchOptions{Devtools: true},
			expInitVal: false, expChangedVal: true,
		},
		{
			flag:       "headless",
			changeOpts: &LaunchOptions{Headless: false},
			expInitVal: true, expChangedVal: false,
			post: func(t *testing.T, flags map[string]any) {
				t.Helper()
				extraFlags := []string{"hide-scrollbars", "mute-audio", "blink-settings"}
				for _, f := range extraFlags {
					assert.Nilf(t, flags[f], "expected %q to be unset when not headless", f)
				}
			},
		},
		{
			flag:       "window-size",
			changeOpts: &LaunchOptions{ScreenWidth: 800, ScreenHeight: 600},
			expInitVal: "1920,1080", expChangedVal: "800,600",
		},
		{
			flag:       "no-default-browser-check",
			changeOpts: &LaunchOptions{IgnoreDefaultArgs: []string{"no-default-browser-check"}},
			expInitVal: true,
		},
		{
			flag:       "disable-popup-blocking",
			changeOpts: &LaunchOptions{IgnoreDefaultArgs: []string{"--disable-popup-blocking"}},
			expInitVal: true,
		},
		{
			flag:       "host-resolver-rules",
			changeOpts: &LaunchOptions{Hosts: map[string]string{"satellite.test": "127.0.0.1", "capsule.test": "10.0.0.2"}},
			expChangedVal: "MAP capsule.test 10.0.0.2,MAP satellite.test 127.0.0.1",
		},
		{
			flag: "host-resolver-rules",
			changeOpts: &LaunchOptions{
				Args:  []string{`host-resolver-rules="MAP * www.example.com"`},
				Hosts: map[string]string{"satellite.test": "127.0.0.1"},
			},
			expChangedVal: "MAP * www.example.com,MAP satellite.test 127.0.0.1",
		},
		{
			flag:          "lang",
			changeOpts:    &LaunchOptions{Args: []string{"lang=fr-FR"}},
			expChangedVal: "fr-FR",
		},
		{
			flag:          "proxy-server",
			changeOpts:    &LaunchOptions{Args: []string{" proxy-server = 'http://proxy.test:3128' "}},
			expChangedVal: "http://proxy.test:3128",
		},
		{
			flag:          "proxy-server",
			changeOpts:    &LaunchOptions{Proxy: "http://squid.test:3128"},
			expChangedVal: "http://squid.test:3128",
		},
		{
			flag:          "ignore-certificate-errors",
			changeOpts:    &LaunchOptions{IgnoreHTTPSErrors: true},
			expChangedVal: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.flag, func(t *testing.T) {
			t.Parallel()

			lopts := NewLaunchOptions()
			bt := NewBrowserType(log.NewNullLogger())

			flags := bt.flags(lopts)
			assert.Equal(t, tc.expInitVal, flags[tc.flag])

			changed := NewLaunchOptions()
			changed.Devtools = tc.changeOpts.Devtools
			changed.Headless = tc.changeOpts.Headless
			changed.Args = tc.changeOpts.Args
			changed.IgnoreDefaultArgs = tc.changeOpts.IgnoreDefaultArgs
			changed.Hosts = tc.changeOpts.Hosts
			changed.IgnoreHTTPSErrors = tc.changeOpts.IgnoreHTTPSErrors
			changed.Proxy = tc.changeOpts.Proxy
			if tc.changeOpts.ScreenWidth != 0 {
				changed.ScreenWidth = tc.changeOpts.ScreenWidth
				changed.ScreenHeight = tc.changeOpts.ScreenHeight
			}
			if tc.flag != "headless" {
				changed.Headless = true
			}

			flags = bt.flags(changed)
			assert.Equal(t, tc.expChangedVal, flags[tc.flag])

			if tc.post != nil {
				tc.post(t, flags)
			}
		})
	}
}

func TestTrimQuotes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b", trimQuotes(`"a b"`))
	assert.Equal(t, "a b", trimQuotes(`'a b'`))
	assert.Equal(t, `"a b'`, trimQuotes(`"a b'`))
	assert.Equal(t, `"`, trimQuotes(`"`))
	assert.Equal(t, "", trimQuotes(""))
}

func TestLaunchOptionsValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, NewLaunchOptions().Validate())

	o := NewLaunchOptions()
	o.Timeout = 0
	assert.ErrorContains(t, o.Validate(), "timeout must be positive")

	o = NewLaunchOptions()
	o.SlowMo = -time.Second
	assert.ErrorContains(t, o.Validate(), "slow motion")

	o = NewLaunchOptions()
	o.ScreenWidth = 0
	assert.ErrorContains(t, o.Validate(), "invalid screen size 0x1080")

	o = NewLaunchOptions()
	o.Proxy = "squid.test:3128"
	assert.EqualError(t, o.Validate(), `invalid proxy URL "squid.test:3128"`)
	o.Proxy = "socks5://squid.test:1080"
	assert.NoError(t, o.Validate())
}

func TestExecutablePathIsCached(t *testing.T) {
	t.Parallel()

	bt := NewBrowserType(log.NewNullLogger())
	bt.execPath = "/opt/chromium/chrome"
	assert.Equal(t, "/opt/chromium/chrome", bt.ExecutablePath())
}

func TestLaunchWithoutExecutable(t *testing.T) {
	if os.Getenv("PAGEFLOW_BROWSER_TESTS") != "" {
		t.Skip("a browser is available")
	}
	t.Parallel()

	bt := NewBrowserType(log.NewNullLogger())
	bt.execPath = ""
	opts := NewLaunchOptions()
	opts.ExecutablePath = "/nonexistent/pageflow-chrome"

	_, err := bt.Launch(context.Background(), opts)
	require.Error(t, err)
	assert.ErrorContains(t, err, "launching browser")
}
