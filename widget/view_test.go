package widget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuxd6825/pageflow/common"
	"github.com/liuxd6825/pageflow/common/browsertest"
)

func TestViewFill(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()
	b.Add("//input[@id='name']", &browsertest.Element{})
	b.Add("//input[@id='label']", &browsertest.Element{Value: "same"})
	b.Add("//input[@id='agree']", &browsertest.Element{Toggle: true})

	var order []string
	v := NewView("Form", b, "")
	v.Add("name", NewTextInput(v, "//input[@id='name']"))
	v.Add("label", NewTextInput(v, "//input[@id='label']"))
	v.Add("agree", NewCheckbox(v, "//input[@id='agree']"))
	v.BeforeFill(func(_ context.Context, values map[string]any) error {
		order = append(order, "before")
		assert.Contains(t, values, "name")
		return nil
	})
	v.AfterFill(func(_ context.Context, changed bool) error {
		order = append(order, "after")
		assert.True(t, changed)
		return nil
	})

	changed, err := v.Fill(ctx, map[string]any{"agree": true, "name": "cv1", "label": "same"})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"before", "after"}, order)
	assert.Equal(t, []string{"cv1"}, b.Typed("//input[@id='name']"))
	assert.Empty(t, b.Typed("//input[@id='label']"), "unchanged value is not retyped")
	assert.True(t, b.Element("//input[@id='agree']").Selected)

	read, err := v.ReadFields(ctx, "name", "agree")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "cv1", "agree": true}, read)
}

func TestViewFillUnknownField(t *testing.T) {
	t.Parallel()

	v := NewView("Form", browsertest.New(), "")
	v.Add("name", NewTextInput(v, "//input"))

	_, err := v.Fill(context.Background(), map[string]any{"nmae": "x", "lable": "y"})
	assert.EqualError(t, err, "Form has no fields named lable, nmae")

	_, err = v.Fill(context.Background(), "not a map")
	assert.Error(t, err)
}

func TestViewFieldCapabilities(t *testing.T) {
	t.Parallel()

	v := NewView("Caps", browsertest.New(), "")
	v.Add("title", NewText(v, "//h1"))
	v.Add("name", NewTextInput(v, "//input"))
	v.Add("submit", NewButton(v, "//button"))
	v.Add("progress", NewPF4ProgressBar(v))

	title, _ := v.Field("title")
	assert.Equal(t, CanRead|CanClick, title.Caps)
	name, _ := v.Field("name")
	assert.Equal(t, CanFill|CanRead, name.Caps)
	submit, _ := v.Field("submit")
	assert.True(t, submit.Can(CanClick))
	assert.False(t, submit.Can(CanFill))
	progress, _ := v.Field("progress")
	assert.Equal(t, "read", progress.Caps.String())

	_, err := submit.Fill(context.Background(), "x")
	assert.EqualError(t, err, `field "submit" can not be filled (read|click)`)
	assert.Equal(t, "none", Capability(0).String())
}

func TestViewWaitDisplayed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()
	v := NewView("Dialog", b, "//div[@role='dialog']")

	err := v.WaitDisplayed(ctx, 20*time.Millisecond)
	var derr *common.DisplayTimeoutError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "Dialog", derr.View)

	b.Add("//div[@role='dialog']", nil)
	require.NoError(t, v.WaitDisplayed(ctx, time.Second))

	checks := 0
	v.SetDisplayed(func(context.Context) (bool, error) {
		checks++
		if checks == 1 {
			return false, common.ErrElementNotFound
		}
		return true, nil
	})
	require.NoError(t, v.WaitDisplayed(ctx, time.Second))
	assert.Equal(t, 2, checks)
}

func TestNestedViewActivation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()
	b.AddText("//form//div[@id='tile']", "Component")
	b.Add("//form//input[@id='deps']", &browsertest.Element{Toggle: true})

	v := NewView("Create", b, "//form")
	tile := v.Nested("component", "")
	tile.OnActivate(func(ctx context.Context) error {
		return b.Click(ctx, "//form//div[@id='tile']")
	})
	tile.Add("solve_dependencies", NewCheckbox(tile, ".//input[@id='deps']"))

	_, err := v.Fill(ctx, map[string]any{"component": map[string]any{"solve_dependencies": true}})
	require.NoError(t, err)
	assert.Positive(t, b.ClickCount("//form//div[@id='tile']"))
	assert.True(t, b.Element("//form//input[@id='deps']").Selected)

	boom := errors.New("boom")
	tile.OnActivate(func(context.Context) error { return boom })
	_, err = tile.ReadFields(ctx)
	require.ErrorIs(t, err, boom)
}

func TestTabActivation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()
	v := NewView("Edit", b, "")
	versions := NewTab(v, "versions", "//a[contains(@href, '#/versions')]")
	versions.Add("count", NewText(versions, "//span[@id='count']"))

	item := b.Add("//a[contains(@href, '#/versions')]/ancestor::li[1]", &browsertest.Element{})
	b.Add("//a[contains(@href, '#/versions')]", &browsertest.Element{
		Text:    "Versions",
		OnClick: func() { item.Classes = []string{"pf-c-tabs__item", "pf-m-current"} },
	})
	b.AddText("//span[@id='count']", " 3 ")

	res, err := versions.ReadFields(ctx, "count")
	require.NoError(t, err)
	assert.Equal(t, "3", res["count"])
	assert.Equal(t, 1, b.ClickCount("//a[contains(@href, '#/versions')]"))

	_, err = versions.ReadFields(ctx, "count")
	require.NoError(t, err)
	assert.Equal(t, 1, b.ClickCount("//a[contains(@href, '#/versions')]"), "current tab is not clicked again")
}
