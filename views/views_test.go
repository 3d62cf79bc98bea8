package views

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuxd6825/pageflow/common"
	"github.com/liuxd6825/pageflow/common/browsertest"
	"github.com/liuxd6825/pageflow/widget"
)

func TestNormalizeVersionQuery(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		"Version 1.0":  "version = 1",
		"Version 12.3": "version = 12",
		"version = 1":  "version = 1",
		"Version 2":    "Version 2",
		"V1.0":         "V1.0",
		"Vendor 1.0":   "version = 1",
		"name = cv1":   "name = cv1",
		"":             "",
	}
	for in, exp := range testCases {
		got := NormalizeVersionQuery(in)
		assert.Equal(t, exp, got, in)
		assert.Equal(t, got, NormalizeVersionQuery(got), "normalizing %q twice", in)
	}
}

func addTrail(b *browsertest.Fake, bc *widget.BreadCrumb, locations ...string) {
	b.Remove(bc.Locator())
	b.Remove(bc.ItemsLocator())
	if len(locations) == 0 {
		return
	}
	b.Add(bc.Locator(), nil)
	b.AddTexts(bc.ItemsLocator(), locations...)
}

func TestContentViewEditViewDisplayed(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		trail   []string
		publish bool
		exp     bool
	}{
		{"ready", []string{"Content Views", "cv1"}, true, true},
		{"no publish button", []string{"Content Views", "cv1"}, false, false},
		{"no breadcrumb", nil, true, false},
		{"version screen", []string{"Content Views", "cv1", "Versions", "Version 1.0"}, true, false},
		{"other section", []string{"Hosts", "cv1"}, true, false},
		{"create dialog", []string{"Content Views", "New Content View"}, true, false},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			b := browsertest.New()
			v := NewContentViewEditView(b)
			addTrail(b, v.Breadcrumb, tc.trail...)
			if tc.publish {
				b.Add(v.Publish.Locator(), nil)
			}
			shown, err := v.IsDisplayed(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.exp, shown)
		})
	}
}

func TestContentViewVersionDetailsViewDisplayed(t *testing.T) {
	t.Parallel()

	b := browsertest.New()
	v := NewContentViewVersionDetailsView(b)
	ctx := context.Background()

	addTrail(b, v.Breadcrumb, "Content Views", "cv1", "Versions")
	shown, err := v.IsDisplayed(ctx)
	require.NoError(t, err)
	assert.False(t, shown)

	addTrail(b, v.Breadcrumb, "Content Views", "cv1", "Versions", "Version 1.0")
	shown, err = v.IsDisplayed(ctx)
	require.NoError(t, err)
	assert.True(t, shown)
}

const versionsHTML = `<table data-ouia-component-id="content-view-versions-table">
<thead><tr><th></th><th>Version</th><th>Status</th><th>Environments</th><th>Packages</th><th></th></tr></thead>
<tbody><tr><td><input type="checkbox"/></td><td><a>Version 1.0</a></td><td>Published</td><td><a>Library</a></td><td>12</td><td></td></tr></tbody>
</table>`

func TestContentViewVersionsSearch(t *testing.T) {
	t.Parallel()

	b := browsertest.New()
	v := NewContentViewEditView(b)
	tab := v.Versions

	b.Add(`//a[contains(@href, "#/versions")]`, nil)
	b.Add(tab.Searchbox.InputLocator(), nil)
	b.Add(tab.Searchbox.SubmitLocator(), nil)
	b.Add(tab.Table.Locator(), &browsertest.Element{HTML: versionsHTML})

	rows, err := tab.Search(context.Background(), "Version 1.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"version = 1"}, b.Typed(tab.Searchbox.InputLocator()))
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]string{
		"Version": "Version 1.0", "Status": "Published", "Environments": "Library", "Packages": "12",
	}, rows[0])
}

func TestContentViewCreateViewFill(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()
	v := NewContentViewCreateView(b)

	b.Add(v.Title.Locator(), nil)
	b.Add(v.Label.Locator(), nil)
	shown, err := v.IsDisplayed(ctx)
	require.NoError(t, err)
	assert.True(t, shown)

	name := b.Add(v.Name.Locator(), nil)
	b.Add(v.Component.Tile.Locator(), nil)
	deps := b.Add(v.SolveDependencies.Locator(), &browsertest.Element{Toggle: true})
	b.Add(v.Submit.Locator(), nil)

	changed, err := v.Fill(ctx, map[string]any{
		"name":      "cv1",
		"component": map[string]any{"solve_dependencies": true},
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "cv1", name.Value)
	assert.True(t, deps.Selected)
	assert.Positive(t, b.ClickCount(v.Component.Tile.Locator()))
	assert.Zero(t, b.ClickCount(v.Composite.Tile.Locator()))
}

func TestContentViewPublishViewBeforeFill(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()
	v := NewContentViewVersionPublishView(b)

	desc := b.Add(v.Description.Locator(), nil)
	promoted := b.Add(v.Promote.InputLocator(), nil)
	b.Add(v.Promote.Locator(), &browsertest.Element{OnClick: func() {
		promoted.Selected = true
		b.Add(v.LCE.Locator(), nil)
	}})
	library := b.Add(v.LCE.Environment("Library").Locator(), &browsertest.Element{Toggle: true})

	_, err := v.Fill(ctx, map[string]any{"description": "first"})
	require.NoError(t, err)
	assert.False(t, promoted.Selected, "promotion stays off without environments")

	_, err = v.Fill(ctx, map[string]any{"description": "second", "lce": []any{"Library"}})
	require.NoError(t, err)
	assert.True(t, promoted.Selected)
	assert.True(t, library.Selected)
	assert.Equal(t, "second", desc.Value)

	_, err = v.Fill(ctx, map[string]any{"lce": 3})
	assert.ErrorContains(t, err, "expected an environment name")
}

func TestContentViewPublishViewDisplayed(t *testing.T) {
	t.Parallel()

	b := browsertest.New()
	v := NewContentViewVersionPublishView(b)
	ctx := context.Background()

	addTrail(b, v.Breadcrumb, "Content Views", "cv1")
	shown, err := v.IsDisplayed(ctx)
	require.NoError(t, err)
	assert.False(t, shown)

	addTrail(b, v.Breadcrumb, "Content Views", "cv1", "Versions")
	shown, err = v.IsDisplayed(ctx)
	require.NoError(t, err)
	assert.True(t, shown)
}

const lcePathHTML = `<table>
<thead><tr><th></th><th><a>Library</a></th><th><a>Dev</a></th></tr></thead>
<tbody>
<tr><td>Content Views</td><td>2</td><td>1</td></tr>
<tr><td>Content Hosts</td><td>0</td><td>3</td></tr>
</tbody></table>`

func TestLCEViewReadAll(t *testing.T) {
	t.Parallel()

	b := browsertest.New()
	v := NewLCEView(b)
	path := v.Path("Dev")
	b.Add(path.EnvsTable.Locator(), &browsertest.Element{HTML: lcePathHTML})
	b.AddText(lceLastEnv, " Dev ")

	all, err := v.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]int{
		"Library": {"Content Views": 2, "Content Hosts": 0},
		"Dev":     {"Content Views": 1, "Content Hosts": 3},
	}, all)

	b.Element(path.EnvsTable.Locator()).HTML = `<table><thead><tr><th></th><th>Dev</th></tr></thead>
<tbody><tr><td>Content Views</td><td>n/a</td></tr></tbody></table>`
	_, err = path.Counts(context.Background())
	assert.ErrorContains(t, err, "Content Views count of Dev")
}

func TestJobInvocationWaitForResult(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()
	v := NewJobInvocationStatusView(b)

	addTrail(b, v.Breadcrumb, "Jobs", "Install errata")
	b.Add(widget.TabLocator("Overview"), &browsertest.Element{Attrs: map[string]string{"aria-selected": "true"}})
	progress := b.AddText(v.Overview.JobStatusProgress.Locator(), "50%")
	b.AddText(v.Overview.JobStatus.Locator(), "Running")
	b.AddText(v.Overview.TotalHosts.Locator(), "1")

	err := v.WaitForResult(ctx, 20*time.Millisecond, time.Millisecond)
	var terr *common.TimeoutError
	require.ErrorAs(t, err, &terr)

	progress.Text = "100%"
	require.NoError(t, v.WaitForResult(ctx, time.Second, time.Millisecond))

	data, err := v.Overview.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"job_status": "Running", "job_status_progress": "100%", "total_hosts": "1"}, data)
}

func TestHostDialogs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()

	d := NewHostDeleteDialog(b)
	shown, err := d.IsDisplayed(ctx)
	require.NoError(t, err)
	assert.False(t, shown)

	b.Add(d.Title.Locator(), nil)
	b.Add(d.ConfirmButton.Locator(), nil)
	require.NoError(t, d.Confirm(ctx, time.Second))
	assert.Equal(t, []string{d.ConfirmButton.Locator()}, b.Clicks())

	bulk := NewBulkHostDeleteDialog(b)
	assert.Equal(t, `.//div[@data-ouia-component-id="bulk-delete-hosts-modal"]//button[@data-ouia-component-id="btn-modal-confirm"]`,
		bulk.ConfirmButton.Locator())
}

func TestTrailReadyDetailsViews(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := browsertest.New()

	errata := NewErrataDetailsView(b)
	addTrail(b, errata.Breadcrumb, "Errata")
	shown, err := errata.IsDisplayed(ctx)
	require.NoError(t, err)
	assert.False(t, shown, "the list itself is not a details screen")
	addTrail(b, errata.Breadcrumb, "Errata", "RHSA-2024:0001")
	shown, err = errata.IsDisplayed(ctx)
	require.NoError(t, err)
	assert.True(t, shown)

	lce := NewLCEEditView(b)
	addTrail(b, lce.Breadcrumb, "Environments", "New Environment")
	shown, err = lce.IsDisplayed(ctx)
	require.NoError(t, err)
	assert.False(t, shown)

	host := NewNewHostDetailsView(b)
	addTrail(b, host.Breadcrumb, "Hosts", "host1.example.com")
	shown, err = host.IsDisplayed(ctx)
	require.NoError(t, err)
	assert.True(t, shown)
}
