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

package common

import "time"

const (
	// Defaults

	DefaultScreenWidth  int64         = 1920
	DefaultScreenHeight int64         = 1080
	DefaultTimeout      time.Duration = 30 * time.Second

	DefaultNavigationTimeout time.Duration = 60 * time.Second
	DefaultPageSafeTimeout   time.Duration = 5 * time.Second

	// Polling

	DefaultPollDelay time.Duration = 500 * time.Millisecond

	// Navigation retries

	DefaultStepAttempts   int           = 2
	DefaultStepRetryDelay time.Duration = time.Second
)
