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

import (
	"strconv"
	"strings"
)

// JoinLocator resolves loc against root. Locators starting with "./" or "."
// are relative to root; absolute ones ("//", "/" or a parenthesised
// expression) are returned unchanged, as is any locator when root is empty.
func JoinLocator(root, loc string) string {
	switch {
	case root == "":
		return loc
	case loc == "" || loc == ".":
		return root
	case strings.HasPrefix(loc, "./"):
		return root + loc[1:]
	default:
		return loc
	}
}

// XPathLiteral quotes s for use inside an XPath expression, falling back to
// concat() when s contains both quote characters.
func XPathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+p+"'")
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

// Nth selects the n-th (1 based) match of loc.
func Nth(loc string, n int) string {
	return "(" + loc + ")[" + strconv.Itoa(n) + "]"
}
