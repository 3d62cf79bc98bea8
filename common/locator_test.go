package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinLocator(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		root, loc, exp string
	}{
		{"", ".//a", ".//a"},
		{"//table", "", "//table"},
		{"//table", ".", "//table"},
		{"//table", "./a", "//table/a"},
		{"//table", ".//a", "//table//a"},
		{"//table", "//h1", "//h1"},
		{"//table", "(//h1)[2]", "(//h1)[2]"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.exp, JoinLocator(tc.root, tc.loc), "JoinLocator(%q, %q)", tc.root, tc.loc)
	}
}

func TestXPathLiteral(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "'Content Views'", XPathLiteral("Content Views"))
	assert.Equal(t, `"Don't"`, XPathLiteral("Don't"))
	assert.Equal(t, `concat('a"b', "'", 'c')`, XPathLiteral(`a"b'c`))
	assert.Equal(t, "(//tr)[3]", Nth("//tr", 3))
}
