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
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/tidwall/gjson"

	"github.com/liuxd6825/pageflow/common"
	"github.com/liuxd6825/pageflow/log"
)

// Browser drives a single Chromium tab over the DevTools protocol.
type Browser struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *log.Logger
	slowMo time.Duration

	closeOnce sync.Once
}

var _ common.Browser = (*Browser)(nil)

// run executes actions on the tab, bounded by both the tab and ctx.
func (b *Browser) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(b.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// waitSlowMo pauses interactive actions when slow motion is configured.
func (b *Browser) waitSlowMo(ctx context.Context) error {
	if b.slowMo <= 0 {
		return nil
	}
	t := time.NewTimer(b.slowMo)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Evaluate runs script in the page and returns its JSON encoded result.
func (b *Browser) Evaluate(ctx context.Context, script string) ([]byte, error) {
	var raw []byte
	err := b.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		res, exc, err := cdpruntime.Evaluate(script).
			WithReturnByValue(true).
			WithAwaitPromise(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return fmt.Errorf("script exception: %s", exceptionText(exc))
		}
		if res == nil || len(res.Value) == 0 {
			raw = []byte("null")
			return nil
		}
		raw = res.Value
		return nil
	}))
	if err != nil {
		return nil, mapError(err)
	}
	return raw, nil
}

func exceptionText(exc *cdpruntime.ExceptionDetails) string {
	if exc.Exception != nil && exc.Exception.Description != "" {
		return exc.Exception.Description
	}
	return exc.Text
}

// mapError turns DevTools errors about nodes that went away into ErrStaleElement.
func mapError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "Cannot find context with specified id") ||
		strings.Contains(msg, "Execution context was destroyed") ||
		strings.Contains(msg, "No node with given id") {
		return fmt.Errorf("%w: %s", common.ErrStaleElement, msg)
	}
	return err
}

// element evaluates body against the first element matching sel.
func (b *Browser) element(ctx context.Context, sel, body string) (gjson.Result, bool, error) {
	raw, err := b.Evaluate(ctx, elementScript(sel, body))
	if err != nil {
		return gjson.Result{}, false, err
	}
	res := gjson.ParseBytes(raw)
	return res.Get("value"), res.Get("found").Bool(), nil
}

// mustElement is element failing with a NotFoundError on no match.
func (b *Browser) mustElement(ctx context.Context, sel, body string) (gjson.Result, error) {
	v, found, err := b.element(ctx, sel, body)
	if err != nil {
		return gjson.Result{}, err
	}
	if !found {
		return gjson.Result{}, &common.NotFoundError{What: "element", Query: sel}
	}
	return v, nil
}

// Navigate loads url in the tab.
func (b *Browser) Navigate(ctx context.Context, url string) error {
	if err := b.waitSlowMo(ctx); err != nil {
		return err
	}
	b.logger.Debugf("Browser:Navigate", "url %q", url)
	return b.run(ctx, chromedp.Navigate(url))
}

// CurrentURL returns the URL of the loaded document.
func (b *Browser) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := b.run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

func (b *Browser) IsPresent(ctx context.Context, sel string) (bool, error) {
	_, found, err := b.element(ctx, sel, jsTrue)
	return found, err
}

func (b *Browser) IsDisplayed(ctx context.Context, sel string) (bool, error) {
	v, found, err := b.element(ctx, sel, jsDisplayed)
	return found && v.Bool(), err
}

func (b *Browser) IsEnabled(ctx context.Context, sel string) (bool, error) {
	v, err := b.mustElement(ctx, sel, jsEnabled)
	return v.Bool(), err
}

func (b *Browser) IsSelected(ctx context.Context, sel string) (bool, error) {
	v, err := b.mustElement(ctx, sel, jsSelected)
	return v.Bool(), err
}

func (b *Browser) Count(ctx context.Context, sel string) (int, error) {
	raw, err := b.Evaluate(ctx, allScript(sel, jsCount))
	if err != nil {
		return 0, err
	}
	return len(gjson.ParseBytes(raw).Array()), nil
}

// Click scrolls the element into view and presses the left mouse button
// over its center.
func (b *Browser) Click(ctx context.Context, sel string) error {
	if err := b.waitSlowMo(ctx); err != nil {
		return err
	}
	point, err := b.mustElement(ctx, sel, jsPoint)
	if err != nil {
		return err
	}
	if !point.Get("visible").Bool() {
		return fmt.Errorf("clicking %s: %w", sel, common.ErrNotInteractable)
	}
	x, y := point.Get("x").Float(), point.Get("y").Float()
	b.logger.Debugf("Browser:Click", "sel %q x:%.1f y:%.1f", sel, x, y)

	err = b.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		if err := input.DispatchMouseEvent(input.MouseMoved, x, y).Do(ctx); err != nil {
			return err
		}
		if err := input.DispatchMouseEvent(input.MousePressed, x, y).
			WithButton(input.Left).
			WithClickCount(1).
			Do(ctx); err != nil {
			return err
		}
		return input.DispatchMouseEvent(input.MouseReleased, x, y).
			WithButton(input.Left).
			WithClickCount(1).
			Do(ctx)
	}))
	return mapError(err)
}

func (b *Browser) Clear(ctx context.Context, sel string) error {
	if err := b.waitSlowMo(ctx); err != nil {
		return err
	}
	ok, err := b.mustElement(ctx, sel, jsClear)
	if err != nil {
		return err
	}
	if !ok.Bool() {
		return fmt.Errorf("clearing %s: %w", sel, common.ErrNotInteractable)
	}
	return nil
}

// SendKeys focuses the element and types text into it. A trailing "\r" or
// "\n" presses Enter.
func (b *Browser) SendKeys(ctx context.Context, sel string, text string) error {
	if err := b.waitSlowMo(ctx); err != nil {
		return err
	}
	visible, err := b.mustElement(ctx, sel, jsFocus)
	if err != nil {
		return err
	}
	if !visible.Bool() {
		return fmt.Errorf("typing into %s: %w", sel, common.ErrNotInteractable)
	}
	b.logger.Debugf("Browser:SendKeys", "sel %q len:%d", sel, len(text))
	return mapError(b.run(ctx, chromedp.KeyEvent(text)))
}

func (b *Browser) Text(ctx context.Context, sel string) (string, error) {
	v, err := b.mustElement(ctx, sel, jsText)
	return v.String(), err
}

func (b *Browser) Texts(ctx context.Context, sel string) ([]string, error) {
	raw, err := b.Evaluate(ctx, allScript(sel, jsText))
	if err != nil {
		return nil, err
	}
	items := gjson.ParseBytes(raw).Array()
	texts := make([]string, 0, len(items))
	for _, item := range items {
		texts = append(texts, item.String())
	}
	return texts, nil
}

func (b *Browser) Value(ctx context.Context, sel string) (string, error) {
	v, err := b.mustElement(ctx, sel, jsValue)
	return v.String(), err
}

func (b *Browser) Attribute(ctx context.Context, sel string, name string) (string, error) {
	v, err := b.mustElement(ctx, sel, jsAttribute(name))
	return v.String(), err
}

func (b *Browser) Classes(ctx context.Context, sel string) ([]string, error) {
	v, err := b.mustElement(ctx, sel, jsClass)
	if err != nil {
		return nil, err
	}
	var classes []string
	for _, c := range v.Array() {
		classes = append(classes, c.String())
	}
	return classes, nil
}

func (b *Browser) OuterHTML(ctx context.Context, sel string) (string, error) {
	v, err := b.mustElement(ctx, sel, jsHTML)
	return v.String(), err
}

// Screenshot captures the visible part of the page as PNG.
func (b *Browser) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := b.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormatPng).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("capturing screenshot: %w", err)
	}
	return buf, nil
}

// Close closes the tab and, when the browser was launched, the browser.
func (b *Browser) Close() error {
	var err error
	b.closeOnce.Do(func() {
		err = chromedp.Cancel(b.ctx)
		b.cancel()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	})
	return err
}
