// Package scenario reads scenario files, lists of entity operations, and
// runs them one after the other against a session.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/liuxd6825/pageflow/errext"
	"github.com/liuxd6825/pageflow/errext/exitcodes"
	"github.com/liuxd6825/pageflow/lib/types"
)

// Step is a single operation of a scenario.
type Step struct {
	Name      string         `yaml:"name" json:"name,omitempty"`
	Entity    string         `yaml:"entity" json:"entity"`
	Operation string         `yaml:"operation" json:"operation"`
	Args      map[string]any `yaml:"args" json:"args,omitempty"`
	// Timeout bounds the whole operation, navigation included.
	Timeout types.NullDuration `yaml:"timeout" json:"timeout"`
	// ContinueOnError keeps the scenario going when the step fails.
	ContinueOnError bool `yaml:"continue_on_error" json:"continue_on_error,omitempty"`
}

// Title returns the step name, or entity.operation when it has none.
func (s Step) Title() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Entity + "." + s.Operation
}

// Scenario is the content of a scenario file.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// SkipLogin runs the steps without signing in first.
	SkipLogin bool `yaml:"skip_login"`
	// ScreenshotOnFailure captures the page when a step fails.
	ScreenshotOnFailure bool   `yaml:"screenshot_on_failure"`
	Steps               []Step `yaml:"steps"`
}

// Parse decodes a YAML scenario. Unknown keys are errors.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, invalid(errors.New("scenario is empty"))
		}
		return nil, invalid(fmt.Errorf("decoding scenario: %w", err))
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Load reads and parses the scenario file at path.
func Load(fs afero.Fs, path string) (*Scenario, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, invalid(fmt.Errorf("reading scenario: %w", err))
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = path
	}
	return sc, nil
}

// Validate checks every step names an entity and an operation.
func (sc *Scenario) Validate() error {
	if len(sc.Steps) == 0 {
		return invalid(errors.New("scenario has no steps"))
	}
	for i, s := range sc.Steps {
		if s.Entity == "" {
			return invalid(fmt.Errorf("step %d: entity is required", i+1))
		}
		if s.Operation == "" {
			return invalid(fmt.Errorf("step %d: operation is required", i+1))
		}
		if s.Timeout.Valid && s.Timeout.TimeDuration() <= 0 {
			return invalid(fmt.Errorf("step %d: timeout must be positive, got %s", i+1, s.Timeout.Duration))
		}
	}
	return nil
}

func invalid(err error) error {
	return errext.WithExitCodeIfNone(err, exitcodes.InvalidScenario)
}
