// Package browsertest provides an in-memory common.Browser for tests.
//
// A Fake holds elements keyed by the exact selector the code under test
// will ask for. Click handlers can add or remove elements, which is how
// tests model the screen transitions of a navigation.
package browsertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/liuxd6825/pageflow/common"
)

// Element is a fake DOM element.
type Element struct {
	Text     string
	Value    string
	Hidden   bool
	Disabled bool
	Selected bool
	// Toggle flips Selected on every click, like a checkbox.
	Toggle  bool
	Classes []string
	Attrs   map[string]string
	HTML    string

	// OnClick runs after the click was recorded. It may change the Fake.
	OnClick func()
}

// Fake is an in-memory common.Browser.
type Fake struct {
	mu       sync.Mutex
	elements map[string][]*Element
	clickErr map[string][]error

	url      string
	visited  []string
	clicks   []string
	typed    map[string][]string
	closed   bool
	evalFunc func(script string) ([]byte, error)
}

var _ common.Browser = &Fake{}

// New returns an empty Fake whose pages are always safe.
func New() *Fake {
	return &Fake{
		elements: make(map[string][]*Element),
		clickErr: make(map[string][]error),
		typed:    make(map[string][]string),
	}
}

// Add appends an element matching sel and returns it.
func (f *Fake) Add(sel string, el *Element) *Element {
	f.mu.Lock()
	defer f.mu.Unlock()

	if el == nil {
		el = &Element{}
	}
	f.elements[sel] = append(f.elements[sel], el)
	return el
}

// AddText is a shortcut for Add with a visible element of the given text.
func (f *Fake) AddText(sel, text string) *Element {
	return f.Add(sel, &Element{Text: text})
}

// AddTexts adds one element per text under the same selector.
func (f *Fake) AddTexts(sel string, texts ...string) {
	for _, t := range texts {
		f.AddText(sel, t)
	}
}

// Remove drops every element matching sel.
func (f *Fake) Remove(sel string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.elements, sel)
}

// Element returns the first element matching sel, or nil.
func (f *Fake) Element(sel string) *Element {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.first(sel)
}

// FailClick queues errors returned by the next clicks on sel, in order.
func (f *Fake) FailClick(sel string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clickErr[sel] = append(f.clickErr[sel], errs...)
}

// SetEvaluate installs the handler for Evaluate.
func (f *Fake) SetEvaluate(fn func(script string) ([]byte, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.evalFunc = fn
}

// Clicks returns the selectors clicked so far.
func (f *Fake) Clicks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.clicks...)
}

// ClickCount returns how many times sel was clicked successfully.
func (f *Fake) ClickCount(sel string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.clicks {
		if c == sel {
			n++
		}
	}
	return n
}

// Typed returns what was sent to sel with SendKeys.
func (f *Fake) Typed(sel string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.typed[sel]...)
}

// Visited returns the URLs passed to Navigate.
func (f *Fake) Visited() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.visited...)
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closed
}

func (f *Fake) first(sel string) *Element {
	if els := f.elements[sel]; len(els) > 0 {
		return els[0]
	}
	return nil
}

func (f *Fake) find(sel string) (*Element, error) {
	el := f.first(sel)
	if el == nil {
		return nil, fmt.Errorf("%w: %s", common.ErrElementNotFound, sel)
	}
	return el, nil
}

// Navigate implements common.Browser.
func (f *Fake) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.url = url
	f.visited = append(f.visited, url)
	return nil
}

// CurrentURL implements common.Browser.
func (f *Fake) CurrentURL(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.url, nil
}

// IsPresent implements common.Browser.
func (f *Fake) IsPresent(_ context.Context, sel string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.first(sel) != nil, nil
}

// IsDisplayed implements common.Browser.
func (f *Fake) IsDisplayed(_ context.Context, sel string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	el := f.first(sel)
	return el != nil && !el.Hidden, nil
}

// IsEnabled implements common.Browser.
func (f *Fake) IsEnabled(_ context.Context, sel string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	el, err := f.find(sel)
	if err != nil {
		return false, err
	}
	return !el.Disabled, nil
}

// IsSelected implements common.Browser.
func (f *Fake) IsSelected(_ context.Context, sel string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	el, err := f.find(sel)
	if err != nil {
		return false, err
	}
	return el.Selected, nil
}

// Count implements common.Browser.
func (f *Fake) Count(_ context.Context, sel string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.elements[sel]), nil
}

// Click implements common.Browser.
func (f *Fake) Click(_ context.Context, sel string) error {
	f.mu.Lock()
	if errs := f.clickErr[sel]; len(errs) > 0 {
		f.clickErr[sel] = errs[1:]
		f.mu.Unlock()
		return errs[0]
	}
	el, err := f.find(sel)
	switch {
	case err != nil:
		f.mu.Unlock()
		return err
	case el.Hidden || el.Disabled:
		f.mu.Unlock()
		return fmt.Errorf("%w: %s", common.ErrNotInteractable, sel)
	}
	f.clicks = append(f.clicks, sel)
	if el.Toggle {
		el.Selected = !el.Selected
	}
	onClick := el.OnClick
	f.mu.Unlock()

	if onClick != nil {
		onClick()
	}
	return nil
}

// Clear implements common.Browser.
func (f *Fake) Clear(_ context.Context, sel string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	el, err := f.find(sel)
	if err != nil {
		return err
	}
	el.Value = ""
	return nil
}

// SendKeys implements common.Browser.
func (f *Fake) SendKeys(_ context.Context, sel string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	el, err := f.find(sel)
	if err != nil {
		return err
	}
	if el.Hidden || el.Disabled {
		return fmt.Errorf("%w: %s", common.ErrNotInteractable, sel)
	}
	el.Value += text
	f.typed[sel] = append(f.typed[sel], text)
	return nil
}

// Text implements common.Browser.
func (f *Fake) Text(_ context.Context, sel string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	el, err := f.find(sel)
	if err != nil {
		return "", err
	}
	return el.Text, nil
}

// Texts implements common.Browser.
func (f *Fake) Texts(_ context.Context, sel string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	els := f.elements[sel]
	texts := make([]string, 0, len(els))
	for _, el := range els {
		texts = append(texts, el.Text)
	}
	return texts, nil
}

// Value implements common.Browser.
func (f *Fake) Value(_ context.Context, sel string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	el, err := f.find(sel)
	if err != nil {
		return "", err
	}
	return el.Value, nil
}

// Attribute implements common.Browser.
func (f *Fake) Attribute(_ context.Context, sel string, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	el, err := f.find(sel)
	if err != nil {
		return "", err
	}
	return el.Attrs[name], nil
}

// Classes implements common.Browser.
func (f *Fake) Classes(_ context.Context, sel string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	el, err := f.find(sel)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), el.Classes...), nil
}

// OuterHTML implements common.Browser.
func (f *Fake) OuterHTML(_ context.Context, sel string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	el, err := f.find(sel)
	if err != nil {
		return "", err
	}
	return el.HTML, nil
}

// Evaluate implements common.Browser. Without a handler it reports a page
// that finished loading.
func (f *Fake) Evaluate(_ context.Context, script string) ([]byte, error) {
	f.mu.Lock()
	fn := f.evalFunc
	f.mu.Unlock()

	if fn == nil {
		return []byte(`{"readyState":"complete","jquery":0,"angular":0}`), nil
	}
	return fn(script)
}

// Screenshot implements common.Browser.
func (f *Fake) Screenshot(context.Context) ([]byte, error) {
	return []byte("\x89PNG fake"), nil
}

// Close implements common.Browser.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	return nil
}
