package common_test

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

func TestEnsurePageSafe(t *testing.T) {
	t.Parallel()

	t.Run("waits for pending requests", func(t *testing.T) {
		t.Parallel()

		b := browsertest.New()
		probes := 0
		b.SetEvaluate(func(string) ([]byte, error) {
			probes++
			if probes < 3 {
				return []byte(`{"readyState":"complete","jquery":1,"angular":0}`), nil
			}
			return []byte(`{"readyState":"complete","jquery":0,"angular":0}`), nil
		})

		require.NoError(t, common.EnsurePageSafe(context.Background(), b, time.Second))
		assert.Equal(t, 3, probes)
	})
	t.Run("times out", func(t *testing.T) {
		t.Parallel()

		b := browsertest.New()
		b.SetEvaluate(func(string) ([]byte, error) {
			return []byte(`{"readyState":"loading","jquery":0,"angular":2}`), nil
		})

		err := common.EnsurePageSafe(context.Background(), b, 50*time.Millisecond)
		require.ErrorIs(t, err, common.ErrPageNotSafe)
		assert.Contains(t, err.Error(), `readyState "loading"`)
		assert.True(t, common.IsTransient(err))
	})
	t.Run("probe errors are retried", func(t *testing.T) {
		t.Parallel()

		b := browsertest.New()
		probes := 0
		b.SetEvaluate(func(string) ([]byte, error) {
			probes++
			if probes == 1 {
				return nil, errors.New("execution context was destroyed")
			}
			return []byte(`{"readyState":"complete"}`), nil
		})

		require.NoError(t, common.EnsurePageSafe(context.Background(), b, time.Second))
	})
}

func TestProbePage(t *testing.T) {
	t.Parallel()

	b := browsertest.New()
	state, err := common.ProbePage(context.Background(), b)
	require.NoError(t, err)
	assert.True(t, state.Safe())
	assert.Equal(t, "complete", state.ReadyState)
}
