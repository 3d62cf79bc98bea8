package cmd

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/liuxd6825/pageflow/errext/exitcodes"
)

const failingScenario = `
name: cleanup
skip_login: true
screenshot_on_failure: true
steps:
  - name: remove hosts
    entity: host
    operation: bulk_delete
  - entity: content_view
    operation: delete
    args:
      entity_name: cv1
`

func TestRunMissingScenario(t *testing.T) {
	t.Parallel()

	ts := newGlobalTestState(t)
	ts.args = []string{"pageflow", "run", "nope.yaml"}
	ts.expectedExitCode = int(exitcodes.InvalidScenario)
	newRootCommand(ts.globalState).execute()

	assert.Nil(t, ts.launchedWith, "no browser for an unreadable scenario")
	assert.Contains(t, ts.stdErr.String(), "reading scenario")
}

func TestRunInvalidScenario(t *testing.T) {
	t.Parallel()

	ts := newGlobalTestState(t)
	require.NoError(t, afero.WriteFile(ts.fs, "bad.yaml", []byte("name: x\nsteps:\n  - entity: host\n"), 0o644))
	ts.args = []string{"pageflow", "run", "bad.yaml"}
	ts.expectedExitCode = int(exitcodes.InvalidScenario)
	newRootCommand(ts.globalState).execute()

	assert.Nil(t, ts.launchedWith)
	assert.Contains(t, ts.stdErr.String(), "step 1: operation is required")
}

func TestRunFailingScenario(t *testing.T) {
	t.Parallel()

	ts := newGlobalTestState(t)
	require.NoError(t, afero.WriteFile(ts.fs, "cleanup.yaml", []byte(failingScenario), 0o644))
	ts.args = []string{"pageflow", "run", "cleanup.yaml", "--out", "report.json", "--base-url", "https://satellite.test"}
	ts.expectedExitCode = int(exitcodes.ScenarioFailed)
	newRootCommand(ts.globalState).execute()

	require.NotNil(t, ts.launchedWith)
	assert.Equal(t, "https://satellite.test", ts.launchedWith.BaseURL.String)
	assert.True(t, ts.browser.Closed())
	assert.Empty(t, ts.browser.Visited(), "login is skipped")

	out := ts.stdOut.String()
	assert.Contains(t, out, "scenario: cleanup (2 steps)")
	assert.Contains(t, out, "✗ remove hosts: missing argument: hosts to delete")
	assert.Contains(t, out, "- content_view.delete")
	assert.Contains(t, out, "0 passed, 1 failed, 1 skipped")

	data, err := afero.ReadFile(ts.fs, "report.json")
	require.NoError(t, err)
	report := gjson.ParseBytes(data)
	assert.Equal(t, "cleanup", report.Get("scenario").String())
	assert.False(t, report.Get("passed").Bool())
	assert.Equal(t, "failed", report.Get("steps.0.status").String())
	assert.Equal(t, "skipped", report.Get("steps.1.status").String())

	shot := report.Get("steps.0.screenshot").String()
	require.NotEmpty(t, shot)
	png, err := afero.ReadFile(ts.fs, shot)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG fake", string(png))
}

func TestRunLaunchFailure(t *testing.T) {
	t.Parallel()

	ts := newGlobalTestState(t)
	require.NoError(t, afero.WriteFile(ts.fs, "cleanup.yaml", []byte(failingScenario), 0o644))
	ts.args = []string{"pageflow", "run", "cleanup.yaml", "--window-size", "0x0"}
	ts.expectedExitCode = int(exitcodes.InvalidConfig)
	newRootCommand(ts.globalState).execute()

	assert.Nil(t, ts.launchedWith)
	assert.Contains(t, ts.stdErr.String(), `window size must be WIDTHxHEIGHT, got \"0x0\"`)
}
