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
	"encoding/json"
	"fmt"
)

// Element scripts evaluate to {found: bool, value: any}. The element is
// bound to el inside the body.
const elementScriptTemplate = `(() => {
	const el = document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (!el) {
		return {found: false};
	}
	const visible = (e) => !!(e.offsetWidth || e.offsetHeight || e.getClientRects().length) &&
		getComputedStyle(e).visibility !== 'hidden';
	return {found: true, value: ((el) => { %s })(el)};
})()`

const allScriptTemplate = `(() => {
	const snap = document.evaluate(%s, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
	const out = [];
	for (let i = 0; i < snap.snapshotLength; i++) {
		out.push(((el) => { %s })(snap.snapshotItem(i)));
	}
	return out;
})()`

// Bodies run against a single element.
const (
	jsTrue      = `return true;`
	jsDisplayed = `return visible(el);`
	jsEnabled   = `return !el.disabled && el.getAttribute('aria-disabled') !== 'true';`
	jsSelected  = `return !!(el.checked || el.selected) ||
		el.getAttribute('aria-checked') === 'true' || el.getAttribute('aria-selected') === 'true';`
	jsText  = `return (el.innerText !== undefined ? el.innerText : el.textContent || '').trim();`
	jsValue = `return el.value === undefined || el.value === null ? '' : String(el.value);`
	jsClass = `return Array.from(el.classList || []);`
	jsHTML  = `return el.outerHTML;`
	jsFocus = `el.focus(); return visible(el);`
	jsClear = `if (!visible(el) || el.disabled) { return false; }
		el.focus();
		el.value = '';
		el.dispatchEvent(new Event('input', {bubbles: true}));
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return true;`
	// jsPoint scrolls the element into view and returns the middle of its box.
	jsPoint = `el.scrollIntoView({block: 'center', inline: 'center'});
		const r = el.getBoundingClientRect();
		return {visible: visible(el), x: r.left + r.width / 2, y: r.top + r.height / 2};`
	jsCount = `return 1;`
)

func jsAttribute(name string) string {
	return fmt.Sprintf(`const v = el.getAttribute(%s); return v === null ? '' : v;`, quote(name))
}

// elementScript builds a script running body against the first element
// matching the XPath sel.
func elementScript(sel, body string) string {
	return fmt.Sprintf(elementScriptTemplate, quote(sel), body)
}

// allScript builds a script collecting body's result for every element
// matching the XPath sel.
func allScript(sel, body string) string {
	return fmt.Sprintf(allScriptTemplate, quote(sel), body)
}

// quote renders s as a JavaScript string literal.
func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		// Marshaling a string does not fail.
		panic(err)
	}
	return string(b)
}
