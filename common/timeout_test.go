package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeoutSettings(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		ts := NewTimeoutSettings(nil)
		assert.Nil(t, ts.parent)
		assert.Equal(t, DefaultTimeout, ts.Timeout())
		assert.Equal(t, DefaultNavigationTimeout, ts.NavigationTimeout())
		assert.Equal(t, DefaultPageSafeTimeout, ts.PageSafeTimeout())
	})
	t.Run("navigation timeout falls back to default timeout", func(t *testing.T) {
		t.Parallel()

		ts := NewTimeoutSettings(nil)
		ts.SetDefaultTimeout(100)
		assert.Equal(t, time.Duration(100), ts.Timeout())
		assert.Equal(t, time.Duration(100), ts.NavigationTimeout())

		ts.SetDefaultNavigationTimeout(200)
		assert.Equal(t, time.Duration(200), ts.NavigationTimeout())
		assert.Equal(t, time.Duration(100), ts.Timeout())
	})
	t.Run("with parent", func(t *testing.T) {
		t.Parallel()

		parent := NewTimeoutSettings(nil)
		parent.SetDefaultTimeout(time.Second)
		parent.SetDefaultNavigationTimeout(2 * time.Second)
		parent.SetDefaultPageSafeTimeout(3 * time.Second)

		ts := NewTimeoutSettings(parent)
		assert.Equal(t, parent, ts.parent)
		assert.Equal(t, time.Second, ts.Timeout())
		assert.Equal(t, 2*time.Second, ts.NavigationTimeout())
		assert.Equal(t, 3*time.Second, ts.PageSafeTimeout())

		ts.SetDefaultTimeout(5 * time.Second)
		assert.Equal(t, 5*time.Second, ts.Timeout())
		assert.Equal(t, 5*time.Second, ts.NavigationTimeout(), "own default timeout wins over parent's navigation timeout")
	})
}
