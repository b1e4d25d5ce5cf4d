// Package normalize maps backend-specific event vocabularies onto the
// canonical trace event model. Each backend ships its own Normalizer in a
// subpackage, registered by name; all of them are single-pass stateful
// reducers that synthesize missing thread/turn boundary events and never
// drop input they do not recognize.
package normalize

import (
	"fmt"
	"sort"

	"github.com/crimson-sun/traceval/internal/model"
)

// Normalizer transforms parsed raw records into canonical trace events.
// Implementations must be pure per call: no state survives between calls,
// so one Normalizer value is safe to reuse across test cases.
type Normalizer interface {
	Normalize(records []model.RawRecord) []model.TraceEvent
}

// Constructor is a function that creates a new Normalizer instance.
type Constructor func() Normalizer

var registry = map[string]Constructor{}

// Register adds a normalizer constructor under the given backend name.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// Get returns the normalizer constructor for the given backend name.
func Get(name string) (Constructor, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s", name)
	}
	return ctor, nil
}

// Backends returns the names of all registered backends, sorted.
func Backends() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
