package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoll(t *testing.T) {
	t.Parallel()

	t.Run("succeeds after a few checks", func(t *testing.T) {
		t.Parallel()

		calls := 0
		ok, err := Poll(context.Background(), PollOptions{Timeout: time.Second, Delay: time.Millisecond},
			func(context.Context) (bool, error) {
				calls++
				return calls == 3, nil
			})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 3, calls)
	})
	t.Run("times out without error", func(t *testing.T) {
		t.Parallel()

		ok, err := Poll(context.Background(), PollOptions{Timeout: 20 * time.Millisecond, Delay: time.Millisecond},
			func(context.Context) (bool, error) { return false, nil })
		require.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("zero timeout checks once", func(t *testing.T) {
		t.Parallel()

		calls := 0
		ok, err := Poll(context.Background(), PollOptions{},
			func(context.Context) (bool, error) {
				calls++
				return false, nil
			})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 1, calls)
	})
	t.Run("condition error aborts", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		calls := 0
		ok, err := Poll(context.Background(), PollOptions{Timeout: time.Second, Delay: time.Millisecond},
			func(context.Context) (bool, error) {
				calls++
				return false, boom
			})
		require.ErrorIs(t, err, boom)
		assert.False(t, ok)
		assert.Equal(t, 1, calls)
	})
	t.Run("condition error handled", func(t *testing.T) {
		t.Parallel()

		calls := 0
		ok, err := Poll(context.Background(), PollOptions{Timeout: time.Second, Delay: time.Millisecond, HandleErrors: true},
			func(context.Context) (bool, error) {
				calls++
				if calls < 2 {
					return false, ErrElementNotFound
				}
				return true, nil
			})
		require.NoError(t, err)
		assert.True(t, ok)
	})
	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ok, err := Poll(ctx, PollOptions{Timeout: time.Second},
			func(context.Context) (bool, error) { return false, nil })
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, ok)
	})
}

func TestWaitFor(t *testing.T) {
	t.Parallel()

	err := WaitFor(context.Background(), "submit button",
		PollOptions{Timeout: 10 * time.Millisecond, Delay: time.Millisecond, HandleErrors: true},
		func(context.Context) (bool, error) { return false, ErrNotInteractable })

	var terr *TimeoutError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "submit button", terr.What)
	assert.ErrorIs(t, err, ErrNotInteractable)
	assert.True(t, IsTransient(err))

	require.NoError(t, WaitFor(context.Background(), "nothing", PollOptions{},
		func(context.Context) (bool, error) { return true, nil }))
}
