// Package errext attaches process exit codes, user hints and structured log
// fields to the errors of a pageflow run.
package errext

import (
	"errors"

	"github.com/liuxd6825/pageflow/errext/exitcodes"
)

// HasExitCode is implemented by errors that decide how pageflow exits when
// they reach the command line. Codes stay below 126, see
// https://unix.stackexchange.com/questions/418784/what-is-the-min-and-max-values-of-exit-codes-in-linux
type HasExitCode interface {
	error
	ExitCode() exitcodes.ExitCode
}

// HasFields is implemented by errors that carry details worth logging as
// separate fields, e.g. the destination a navigation failed to reach.
type HasFields interface {
	error
	Fields() map[string]interface{}
}

// WithExitCodeIfNone attaches exitCode to err unless something in its chain
// already has one. A nil error stays nil.
func WithExitCodeIfNone(err error, exitCode exitcodes.ExitCode) error {
	if err == nil {
		return nil
	}
	if _, ok := ExitCodeOf(err); ok {
		return err
	}
	return withExitCode{err, exitCode}
}

// ExitCodeOf returns the first exit code found in the chain of err.
func ExitCodeOf(err error) (exitcodes.ExitCode, bool) {
	var ecerr HasExitCode
	if errors.As(err, &ecerr) {
		return ecerr.ExitCode(), true
	}
	return 0, false
}

type withExitCode struct {
	error
	exitCode exitcodes.ExitCode
}

func (wh withExitCode) Unwrap() error {
	return wh.error
}

func (wh withExitCode) ExitCode() exitcodes.ExitCode {
	return wh.exitCode
}

var _ HasExitCode = withExitCode{}
