package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/liuxd6825/pageflow/errext"
	"github.com/liuxd6825/pageflow/errext/exitcodes"
	"github.com/liuxd6825/pageflow/navigation"
)

// Step statuses.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Session is what a scenario runs against.
type Session interface {
	Login(ctx context.Context) error
	Invoke(ctx context.Context, entity, op string, args navigation.Args) (any, error)
	Screenshot(ctx context.Context, name string) (string, error)
}

// StepResult is the outcome of one step.
type StepResult struct {
	Step       Step          `json:"step"`
	Status     string        `json:"status"`
	Result     any           `json:"result,omitempty"`
	Error      string        `json:"error,omitempty"`
	Hint       string        `json:"hint,omitempty"`
	Screenshot string        `json:"screenshot,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Report is the outcome of a scenario run.
type Report struct {
	Scenario string       `json:"scenario"`
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
	Passed   bool         `json:"passed"`
	Steps    []StepResult `json:"steps"`
}

// Counts returns how many steps passed, failed and were skipped.
func (r *Report) Counts() (passed, failed, skipped int) {
	for _, s := range r.Steps {
		switch s.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return passed, failed, skipped
}

// Encode writes r as indented JSON.
func (r *Report) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteFile writes r as JSON to path, creating its directory.
func (r *Report) WriteFile(fs afero.Fs, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := fs.Create(path)
	if err != nil {
		return err
	}
	if err := r.Encode(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// FailedError is returned by Run when at least one step failed.
type FailedError struct {
	Failed int
	// First is the error of the first failed step.
	First error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%d step(s) failed, first: %s", e.Failed, e.First)
}

func (e *FailedError) Unwrap() error { return e.First }

// ExitCode implements errext.HasExitCode.
func (e *FailedError) ExitCode() exitcodes.ExitCode { return exitcodes.ScenarioFailed }

var _ errext.HasExitCode = (*FailedError)(nil)

// Runner runs scenarios against a session.
type Runner struct {
	Session Session
	Logger  logrus.FieldLogger
	now     func() time.Time
}

// NewRunner returns a Runner logging step outcomes to logger.
func NewRunner(s Session, logger logrus.FieldLogger) *Runner {
	return &Runner{Session: s, Logger: logger, now: time.Now}
}

// Run logs in unless the scenario says not to, then runs every step in
// order. A failed step stops the run unless it continues on error; the
// remaining steps are reported skipped. The report is returned even when
// Run fails.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	report := &Report{Scenario: sc.Name, Started: r.now(), Passed: true}
	defer func() { report.Finished = r.now() }()

	if !sc.SkipLogin {
		if err := r.Session.Login(ctx); err != nil {
			report.Passed = false
			for _, s := range sc.Steps {
				report.Steps = append(report.Steps, StepResult{Step: s, Status: StatusSkipped})
			}
			return report, fmt.Errorf("logging in: %w", err)
		}
	}

	var (
		failed  int
		first   error
		stopped bool
		stopErr error
	)
	for i, s := range sc.Steps {
		if stopped {
			report.Steps = append(report.Steps, StepResult{Step: s, Status: StatusSkipped})
			continue
		}
		if err := ctx.Err(); err != nil {
			stopped, stopErr = true, err
			report.Steps = append(report.Steps, StepResult{Step: s, Status: StatusSkipped})
			continue
		}

		res, err := r.runStep(ctx, i, sc, s)
		report.Steps = append(report.Steps, res)
		if err == nil {
			continue
		}
		failed++
		report.Passed = false
		if first == nil {
			first = fmt.Errorf("step %q: %w", s.Title(), err)
		}
		if !s.ContinueOnError {
			stopped = true
		}
	}

	if stopErr != nil {
		report.Passed = false
		return report, stopErr
	}
	if failed > 0 {
		return report, &FailedError{Failed: failed, First: first}
	}
	return report, nil
}

func (r *Runner) runStep(ctx context.Context, i int, sc *Scenario, s Step) (StepResult, error) {
	logger := r.Logger.WithFields(logrus.Fields{
		"step":      i + 1,
		"entity":    s.Entity,
		"operation": s.Operation,
	})
	logger.Infof("running %s", s.Title())

	stepCtx := ctx
	if s.Timeout.Valid {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, s.Timeout.TimeDuration())
		defer cancel()
	}

	start := r.now()
	out, err := r.Session.Invoke(stepCtx, s.Entity, s.Operation, navigation.Args(s.Args))
	if err != nil && ctx.Err() == nil && errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
		err = errext.WithHint(fmt.Errorf("step timed out after %s: %w", s.Timeout.Duration, err),
			"raise the timeout of the step")
	}
	res := StepResult{Step: s, Duration: r.now().Sub(start)}
	if err == nil {
		res.Status = StatusPassed
		res.Result = out
		logger.WithField("duration", res.Duration).Debug("step passed")
		return res, nil
	}

	msg, fields := errext.Format(err)
	res.Status = StatusFailed
	res.Error = msg
	res.Hint = errext.HintOf(err)
	logger.WithFields(fields).WithError(err).Error("step failed")

	if sc.ScreenshotOnFailure {
		path, serr := r.Session.Screenshot(ctx, fmt.Sprintf("step-%d", i+1))
		if serr != nil {
			logger.WithError(serr).Warn("could not capture a screenshot")
		} else {
			res.Screenshot = path
		}
	}
	return res, err
}
