package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/liuxd6825/pageflow/errext"
	"github.com/liuxd6825/pageflow/errext/exitcodes"
)

func TestIsTransient(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		exp  bool
	}{
		{"nil", nil, false},
		{"not found", fmt.Errorf("click: %w", ErrElementNotFound), true},
		{"not interactable", ErrNotInteractable, true},
		{"stale", ErrStaleElement, true},
		{"page not safe", fmt.Errorf("%w: loading", ErrPageNotSafe), true},
		{"timeout", &TimeoutError{What: "x", Timeout: time.Second}, true},
		{"row not found", &NotFoundError{What: "row", Query: "abc"}, true},
		{"other", errors.New("500 internal server error"), false},
		{"cancelled", context.Canceled, false},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.exp, IsTransient(tc.err))
		})
	}
}

func TestErrorExitCodes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		err error
		exp exitcodes.ExitCode
	}{
		{&NavigationError{Entity: "ContentView", Destination: "Edit", Attempts: 2, Err: ErrElementNotFound}, exitcodes.NavigationFailed},
		{&DisplayTimeoutError{View: "ContentViewEditView", Timeout: time.Second}, exitcodes.DisplayTimeout},
		{&NotFoundError{What: "row"}, exitcodes.ElementNotFound},
		{&TimeoutError{What: "progress"}, exitcodes.GenericTimeout},
	}
	for _, tc := range testCases {
		var ecerr errext.HasExitCode
		if assert.ErrorAs(t, fmt.Errorf("wrapped: %w", tc.err), &ecerr) {
			assert.Equal(t, tc.exp, ecerr.ExitCode())
		}
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	assert.EqualError(t,
		&NavigationError{Entity: "Errata", Destination: "Details", Attempts: 2, Err: ErrElementNotFound},
		"navigating to Errata.Details failed after 2 attempt(s): element not found")
	assert.EqualError(t,
		&NavigationError{Entity: "Errata", Destination: "Details", Err: errors.New("prerequisite")},
		"navigating to Errata.Details: prerequisite")
	assert.EqualError(t, &NotFoundError{What: "row", Query: "RHSA-2024:0001"}, `row not found for "RHSA-2024:0001"`)
	assert.EqualError(t, &NotFoundError{What: "table"}, "table not found")
	assert.EqualError(t, &DisplayTimeoutError{View: "ErratumView", Timeout: time.Second},
		"view ErratumView was not displayed within 1s")
	assert.NotEmpty(t, errext.HintOf(&DisplayTimeoutError{}))
}

func TestErrorLogFields(t *testing.T) {
	t.Parallel()

	err := &NavigationError{
		Entity: "host", Destination: "Details", Attempts: 1,
		Err: &DisplayTimeoutError{View: "NewHostDetailsView", Timeout: 2 * time.Second},
	}
	_, fields := errext.Format(fmt.Errorf("reading host: %w", err))
	assert.Equal(t, map[string]interface{}{
		"destination": "host.Details",
		"attempts":    1,
		"view":        "NewHostDetailsView",
		"timeout":     "2s",
		"hint":        (&DisplayTimeoutError{}).Hint(),
		"exit_code":   int(exitcodes.NavigationFailed),
	}, fields)
}
