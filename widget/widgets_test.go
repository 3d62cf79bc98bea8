package widget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuxd6825/pageflow/common"
	"github.com/liuxd6825/pageflow/common/browsertest"
)

func TestAttributize(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		"Errata ID":          "errata_id",
		"Title":              "title",
		" Last task ":        "last_task",
		"Composite?":         "composite",
		"Content Host Count": "content_host_count",
		"OS / Arch":          "os_arch",
	}
	for in, exp := range testCases {
		assert.Equal(t, exp, Attributize(in), in)
	}
}

func TestButton(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()
	v := NewView("Page", b, "")
	submit := NewOUIAButton(v, "create-content-view-form-submit")
	loc := ".//button[@data-ouia-component-id='create-content-view-form-submit']"
	assert.Equal(t, loc, submit.Locator())

	el := b.Add(loc, &browsertest.Element{Text: "Create", Disabled: true})
	assert.ErrorIs(t, submit.Click(ctx), common.ErrNotInteractable)

	el.Disabled = false
	require.NoError(t, submit.Click(ctx))
	label, err := submit.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Create", label)

	assert.Equal(t, ".//button[normalize-space(.)='Next']", NewButtonByText(v, "Next").Locator())
}

func TestSwitch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()
	v := NewView("Publish", b, "")
	sw := NewSwitch(v, "promote-switch")

	input := b.Add(sw.Locator()+"//input", &browsertest.Element{})
	b.Add(sw.Locator(), &browsertest.Element{OnClick: func() { input.Selected = !input.Selected }})

	changed, err := sw.Fill(ctx, "yes")
	require.NoError(t, err)
	assert.True(t, changed)
	on, err := sw.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, true, on)

	changed, err = sw.Fill(ctx, true)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = sw.Fill(ctx, 3.5)
	assert.Error(t, err)
}

func TestDropdown(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()
	v := NewView("Filters", b, "")
	d := NewActionsDropdown(v, "//div[@id='kebab']")

	toggle := d.sub(d.toggle)
	b.Add(toggle, &browsertest.Element{Attrs: map[string]string{"aria-expanded": "false"}})
	b.AddTexts(d.sub(d.item), "Remove", " Copy ")
	b.AddText(d.ItemLocator("Remove"), "Remove")

	items, err := d.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Remove", "Copy"}, items)

	changed, err := d.Fill(ctx, "Remove")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, b.Clicks(), d.ItemLocator("Remove"))

	err = d.ItemSelect(ctx, "Publish")
	var nferr *common.NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, "Publish", nferr.Query)
}

func TestSelect(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()
	v := NewView("Packages", b, "")
	s := NewSelect(v, "//select[@ng-model='contentView']")

	b.AddTexts("//select[@ng-model='contentView']/option", "All", "cv1")
	b.Add("(//select[@ng-model='contentView']/option)[1]", &browsertest.Element{Selected: true})
	b.Add("(//select[@ng-model='contentView']/option)[2]", &browsertest.Element{})
	b.AddText("//select[@ng-model='contentView']/option[normalize-space(.)='cv1']", "cv1")

	current, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "All", current)

	changed, err := s.Fill(ctx, "cv1")
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = s.Fill(ctx, "cv2")
	assert.ErrorIs(t, err, common.ErrElementNotFound)
}

func TestBreadCrumb(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()
	v := NewView("Edit", b, "")
	bc := NewBreadCrumb(v)

	trail, err := bc.Trail(ctx)
	require.NoError(t, err)
	assert.Empty(t, trail)
	assert.Equal(t, "", trail.Last())

	b.Add(bc.Locator(), nil)
	b.AddTexts(bc.sub(".//li"), "Content Views ", "cv1")
	trail, err = bc.Trail(ctx)
	require.NoError(t, err)
	assert.Equal(t, Trail{"Content Views", "cv1"}, trail)
	assert.Equal(t, "Content Views", trail.At(0))
	assert.Equal(t, "", trail.At(5))

	current, err := bc.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cv1", current)
}

func TestPF4Search(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()
	v := NewView("List", b, "")
	s := NewPF4Search(v)

	input := b.Add(s.sub(s.input), &browsertest.Element{Value: "old"})
	b.Add(s.sub(s.submit), nil)

	require.NoError(t, s.Search(ctx, "name = cv1"))
	assert.Equal(t, "name = cv1", input.Value)
	assert.Equal(t, []string{s.sub(s.submit)}, b.Clicks())

	b.Remove(s.sub(s.submit))
	require.NoError(t, s.Search(ctx, "cv2"))
	assert.Equal(t, []string{"name = cv1", "cv2", "\r"}, b.Typed(s.sub(s.input)))
}

func TestProgressBar(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()
	v := NewView("Wizard", b, "")
	p := NewProgressBar(v, "//div[@id='progress']")

	b.Add("//div[@id='progress']", nil)
	bar := b.Add("//div[@id='progress']//*[@role='progressbar']",
		&browsertest.Element{Attrs: map[string]string{"aria-valuenow": "40"}})
	status := p.sub(".//*[contains(@class, 'pf-c-progress__description') or contains(@class, 'pf-c-progress__status')]")
	b.AddText(status, "Publishing")

	_, err := p.WaitForResult(ctx, 20*time.Millisecond, time.Millisecond)
	var terr *common.TimeoutError
	require.ErrorAs(t, err, &terr)

	bar.Attrs["aria-valuenow"] = "100"
	b.Element(status).Text = "Done"
	res, err := p.WaitForResult(ctx, time.Second, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "Done", res)

	b.Element("//div[@id='progress']").Classes = []string{"pf-c-progress", "pf-m-danger"}
	_, err = p.WaitForResult(ctx, time.Second, time.Millisecond)
	assert.ErrorIs(t, err, ErrTaskFailed)
}

func TestEntries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()
	v := NewView("Details", b, "")
	name := NewEditableEntry(v, "Name")
	label := NewReadOnlyEntry(v, "Label")

	b.AddText(name.Locator(), "cv1")
	b.AddText(label.Locator(), " cv1_label ")
	edit := name.sub(".//button[contains(@aria-label, 'edit')]")
	input := name.sub(".//*[self::input or self::textarea]")
	save := name.sub(".//button[contains(@aria-label, 'submit') or contains(@aria-label, 'save')]")
	b.Add(edit, nil)
	b.Add(input, &browsertest.Element{Value: "cv1"})
	b.Add(save, &browsertest.Element{OnClick: func() { b.Element(name.Locator()).Text = "cv2" }})

	changed, err := name.Fill(ctx, "cv1")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = name.Fill(ctx, "cv2")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{edit, save}, b.Clicks())
	got, err := name.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cv2", got)

	got, err = label.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cv1_label", got)
}

func TestDescriptionList(t *testing.T) {
	t.Parallel()

	b := browsertest.New()
	v := NewView("Host", b, "//article")
	dl := NewDescriptionList(v, ".//dl")
	b.Add("//article//dl", &browsertest.Element{HTML: `<dl class="pf-c-description-list">
		<div class="pf-c-description-list__group"><dt><span>Host group</span></dt><dd><div>prod</div></dd></div>
		<div class="pf-c-description-list__group"><dt><span>Operating system</span></dt><dd><a>RHEL 9</a></dd></div>
	</dl>`})

	items, err := dl.Items(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"host_group": "prod", "operating_system": "RHEL 9"}, items)
}

func TestNavMenu(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()
	v := NewView("Base", b, "")
	menu := NewNavMenu(v)

	b.Add(menu.ItemLocator("Content"), &browsertest.Element{Attrs: map[string]string{"aria-expanded": "false"}})
	b.AddText(menu.ItemLocator("Lifecycle"), "Lifecycle")
	b.AddText(menu.ItemLocator("Content Views"), "Content Views")

	require.NoError(t, menu.Select(ctx, "Content", "Lifecycle", "Content Views"))
	assert.Equal(t, []string{menu.ItemLocator("Content"), menu.ItemLocator("Content Views")}, b.Clicks())

	err := menu.Select(ctx, "Contenu", "Lifecycle")
	var nferr *common.NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, "Contenu", nferr.Query)
}

func TestConfirmationDialog(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()
	d := NewConfirmationDialog(b)

	assert.Error(t, d.Confirm(ctx, 10*time.Millisecond))

	b.Add(dialogRoot, nil)
	b.Add(common.JoinLocator(dialogRoot, dialogConfirm), nil)
	require.NoError(t, d.Confirm(ctx, time.Second))
	assert.Equal(t, 1, b.ClickCount(common.JoinLocator(dialogRoot, dialogConfirm)))
}
