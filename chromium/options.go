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
	"fmt"
	"net/url"
	"time"

	"github.com/liuxd6825/pageflow/common"
)

// LaunchOptions stores browser launch options.
type LaunchOptions struct {
	Args              []string
	Debug             bool
	Devtools          bool
	Env               map[string]string
	ExecutablePath    string
	Headless          bool
	IgnoreDefaultArgs []string
	// Hosts maps host names to the address the browser resolves them to.
	Hosts map[string]string
	// IgnoreHTTPSErrors accepts self-signed certificates, common on test servers.
	IgnoreHTTPSErrors bool
	// Proxy is the proxy server URL, e.g. http://proxy.test:3128.
	Proxy        string
	SlowMo       time.Duration
	Timeout      time.Duration
	ScreenWidth  int64
	ScreenHeight int64
}

// NewLaunchOptions returns a new LaunchOptions.
func NewLaunchOptions() *LaunchOptions {
	return &LaunchOptions{
		Env:          make(map[string]string),
		Headless:     true,
		Timeout:      common.DefaultTimeout,
		ScreenWidth:  common.DefaultScreenWidth,
		ScreenHeight: common.DefaultScreenHeight,
	}
}

// Validate reports options the browser would not start with.
func (l *LaunchOptions) Validate() error {
	if l.Timeout <= 0 {
		return fmt.Errorf("browser launch timeout must be positive, got %s", l.Timeout)
	}
	if l.SlowMo < 0 {
		return fmt.Errorf("browser slow motion delay must not be negative, got %s", l.SlowMo)
	}
	if l.Proxy != "" {
		if u, err := url.Parse(l.Proxy); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid proxy URL %q", l.Proxy)
		}
	}
	if l.ScreenWidth <= 0 || l.ScreenHeight <= 0 {
		return fmt.Errorf("invalid screen size %dx%d", l.ScreenWidth, l.ScreenHeight)
	}
	return nil
}
