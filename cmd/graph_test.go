package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestGraph(t *testing.T) {
	t.Parallel()

	ts := newGlobalTestState(t)
	ts.args = []string{"pageflow", "graph"}
	newRootCommand(ts.globalState).execute()

	out := ts.stdOut.String()
	assert.Contains(t, out, "content_view.All -> content_view.Edit -> content_view.Publish\n")
	assert.Contains(t, out, "errata.All -> errata.Details\n")
	assert.Contains(t, out, "lifecycle_environment.All -> lifecycle_environment.New\n")
	assert.Contains(t, out, "host.All\n")
}

func TestGraphValidate(t *testing.T) {
	t.Parallel()

	ts := newGlobalTestState(t)
	ts.args = []string{"pageflow", "graph", "--validate"}
	newRootCommand(ts.globalState).execute()

	assert.Contains(t, ts.stdOut.String(), "navigation graph is valid: 12 destinations of 4 entities")
}

func TestGraphYAML(t *testing.T) {
	t.Parallel()

	ts := newGlobalTestState(t)
	ts.args = []string{"pageflow", "graph", "-f", "yaml"}
	newRootCommand(ts.globalState).execute()

	var out map[string]struct {
		Destinations map[string][]string `yaml:"destinations"`
		Operations   []string            `yaml:"operations"`
	}
	require.NoError(t, yaml.Unmarshal(ts.stdOut.Bytes(), &out))

	require.Contains(t, out, "errata")
	assert.Equal(t, []string{"errata.All", "errata.Details"}, out["errata"].Destinations["Details"])
	assert.Equal(t, []string{"install", "read", "search", "search_content_hosts"}, out["errata"].Operations)
	assert.Len(t, out["content_view"].Destinations, 5)
}

func TestGraphUnknownFormat(t *testing.T) {
	t.Parallel()

	ts := newGlobalTestState(t)
	ts.args = []string{"pageflow", "graph", "-f", "dot"}
	ts.expectedExitCode = -1
	newRootCommand(ts.globalState).execute()

	assert.Empty(t, ts.stdOut.String())
}
