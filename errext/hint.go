package errext

import "errors"

// HasHint is a wrapper around an error with an attached user hint. Hints
// give extra human-readable information about a failed UI operation, e.g.
// which screen was expected or which locator did not match.
type HasHint interface {
	error
	Hint() string
}

// WithHint attaches a hint to the given error. A nil error stays nil. If the
// error already carried a hint, the result reads "new hint (old hint)".
func WithHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	return withHint{err, hint}
}

// HintOf returns the hint attached to err, or an empty string.
func HintOf(err error) string {
	var herr HasHint
	if errors.As(err, &herr) {
		return herr.Hint()
	}
	return ""
}

type withHint struct {
	error
	hint string
}

func (wh withHint) Unwrap() error {
	return wh.error
}

func (wh withHint) Hint() string {
	hint := wh.hint
	var oldhint HasHint
	if errors.As(wh.error, &oldhint) {
		hint = hint + " (" + oldhint.Hint() + ")"
	}

	return hint
}

var _ HasHint = withHint{}
