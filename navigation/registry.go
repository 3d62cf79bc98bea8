// Package navigation models screen-to-screen transitions as a directed
// graph. Every destination is keyed by (entity, name), has at most one
// prerequisite destination and a step that reaches it from the
// prerequisite's view. The graph is built once, validated, and then
// resolved by a Navigator.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/serenize/snaker"

	"github.com/liuxd6825/pageflow/common"
)

// ErrUnknownDestination is returned when resolving a key that was never registered.
var ErrUnknownDestination = errors.New("unknown destination")

// Key identifies a destination.
type Key struct {
	Entity string
	Name   string
}

func (k Key) String() string { return k.Entity + "." + k.Name }

// View is what a destination resolves to.
type View interface {
	IsDisplayed(ctx context.Context) (bool, error)
}

// Prerequisite points at the destination to reach before running a step.
type Prerequisite struct {
	// Entity defaults to the entity of the destination declaring the prerequisite.
	Entity string
	Name   string
	// Forward picks the arguments passed on; nil forwards all of them.
	Forward func(Args) Args
}

// ToSibling is a prerequisite on a destination of the same entity that
// receives every argument.
func ToSibling(name string) *Prerequisite {
	return &Prerequisite{Name: name}
}

// ToSiblingWith is ToSibling forwarding only the named arguments.
func ToSiblingWith(name string, keys ...string) *Prerequisite {
	return &Prerequisite{Name: name, Forward: func(a Args) Args { return a.Only(keys...) }}
}

// ToEntity is a prerequisite on a destination of another entity.
func ToEntity(entity, name string) *Prerequisite {
	return &Prerequisite{Entity: entity, Name: name}
}

// RetryPolicy bounds the attempts of a step failing with a transient error.
type RetryPolicy struct {
	// Attempts is the total number of runs, including the first one.
	Attempts int
	Delay    time.Duration
}

// StepContext is handed to a destination's step.
type StepContext struct {
	Browser common.Browser
	// Parent is the view of the prerequisite, nil for root destinations.
	Parent View
	// View is the view of the destination being reached.
	View      View
	Args      Args
	Navigator *Navigator
}

// Destination is a node of the navigation graph.
type Destination struct {
	Entity       string
	Name         string
	View         func(b common.Browser) View
	Prerequisite *Prerequisite
	Step         func(ctx context.Context, sc *StepContext) error
	// Retry overrides the navigator's retry policy when Attempts > 0.
	Retry RetryPolicy
	// AmIHere, when set, lets the navigator skip the prerequisite and the
	// step if the browser already shows the destination. The view still has
	// to be displayed; an error from AmIHere fails the navigation.
	AmIHere func(ctx context.Context, sc *StepContext) (bool, error)
}

// Key returns the key of d.
func (d *Destination) Key() Key { return Key{Entity: d.Entity, Name: d.Name} }

func (d *Destination) prerequisiteKey() (Key, bool) {
	if d.Prerequisite == nil {
		return Key{}, false
	}
	entity := d.Prerequisite.Entity
	if entity == "" {
		entity = d.Entity
	}
	return Key{Entity: entity, Name: d.Prerequisite.Name}, true
}

// Registry owns the navigation graph of a run.
type Registry struct {
	dests map[Key]*Destination
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{dests: make(map[Key]*Destination)}
}

// Register adds d to the graph.
func (r *Registry) Register(d Destination) error {
	switch {
	case d.Entity == "" || d.Name == "":
		return fmt.Errorf("destination %q of entity %q needs both an entity and a name", d.Name, d.Entity)
	case d.View == nil:
		return fmt.Errorf("destination %s has no view", d.Key())
	case d.Step == nil:
		return fmt.Errorf("destination %s has no step", d.Key())
	case d.Prerequisite != nil && d.Prerequisite.Name == "":
		return fmt.Errorf("destination %s has a prerequisite without a name", d.Key())
	}
	if _, ok := r.dests[d.Key()]; ok {
		return fmt.Errorf("destination %s is already registered", d.Key())
	}
	r.dests[d.Key()] = &d
	return nil
}

// MustRegister registers every destination and panics on the first error.
// It is meant for the static graphs entities declare at start up.
func (r *Registry) MustRegister(dests ...Destination) {
	for _, d := range dests {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the destination registered under key.
func (r *Registry) Lookup(key Key) (*Destination, bool) {
	d, ok := r.dests[key]
	return d, ok
}

// Keys returns every registered key, sorted.
func (r *Registry) Keys() []Key {
	keys := make([]Key, 0, len(r.dests))
	for k := range r.dests {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Entity != keys[j].Entity {
			return keys[i].Entity < keys[j].Entity
		}
		return keys[i].Name < keys[j].Name
	})
	return keys
}

// Chain returns the prerequisite chain of key, root first and key last.
func (r *Registry) Chain(key Key) ([]Key, error) {
	var chain []Key
	seen := make(map[Key]bool)
	for {
		d, ok := r.dests[key]
		if !ok {
			return nil, fmt.Errorf("%w %s", ErrUnknownDestination, key)
		}
		if seen[key] {
			return nil, fmt.Errorf("prerequisite cycle through %s", key)
		}
		seen[key] = true
		chain = append(chain, key)

		next, ok := d.prerequisiteKey()
		if !ok {
			break
		}
		key = next
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Validate checks the graph: every prerequisite is registered, no
// prerequisite chain loops, and every entity has at least one root.
func (r *Registry) Validate() error {
	var errs []error
	roots := make(map[string]bool)
	for _, key := range r.Keys() {
		d := r.dests[key]
		pk, ok := d.prerequisiteKey()
		if !ok {
			roots[key.Entity] = true
			continue
		}
		if _, ok := r.dests[pk]; !ok {
			errs = append(errs, fmt.Errorf("%s requires %w %s", key, ErrUnknownDestination, pk))
			continue
		}
		if _, err := r.Chain(key); err != nil && !errors.Is(err, ErrUnknownDestination) {
			errs = append(errs, err)
		}
	}
	for _, key := range r.Keys() {
		if !roots[key.Entity] {
			errs = append(errs, fmt.Errorf("entity %s has no root destination", key.Entity))
			roots[key.Entity] = true
		}
	}
	return errors.Join(errs...)
}

// TypeOf derives the entity identifier of an entity value from its type
// name: *ContentViewEntity becomes "content_view".
func TypeOf(entity any) string {
	t := reflect.TypeOf(entity)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := strings.TrimSuffix(t.Name(), "Entity")
	return snaker.CamelToSnake(name)
}
