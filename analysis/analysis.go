// SPDX-License-Identifier: EPL-2.0

package analysis

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Feature is one analysis result. Frame is the absolute sample position the
// feature refers to.
type Feature struct {
	Frame  uint64
	Values []float32
}

// Analyzer turns blocks of samples into features.
//
// Process receives planar samples for one block and the sample clock of its
// first frame. The returned slice, and the Values in it, are only valid
// until the next call; implementations reuse them so that analysis can run
// on the render goroutine.
type Analyzer interface {
	Process(samples [][]float32, frame uint64) []Feature
	Reset()
}

// Factory creates an analyzer for one output of a plugin.
type Factory func(output string, sampleRate float64) (Analyzer, error)

// Identifier names an analyzer output as library:plugin:output.
type Identifier struct {
	Library string
	Plugin  string
	Output  string
}

// ParseIdentifier parses [vamp:]library:plugin:output. The optional vamp:
// prefix is accepted for compatibility with existing identifiers.
func ParseIdentifier(s string) (Identifier, error) {
	id := strings.TrimPrefix(s, "vamp:")

	parts := strings.Split(id, ":")
	if len(parts) != 3 {
		return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidPluginIdentifier, s)
	}
	for _, p := range parts {
		if p == "" {
			return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidPluginIdentifier, s)
		}
	}

	return Identifier{Library: parts[0], Plugin: parts[1], Output: parts[2]}, nil
}

func (id Identifier) String() string {
	return id.Library + ":" + id.Plugin + ":" + id.Output
}

// Registry maps library:plugin keys to analyzer factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for library:plugin.
func (r *Registry) Register(library, plugin string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[library+":"+plugin] = f
}

// Load parses id and creates the matching analyzer.
func (r *Registry) Load(id string, sampleRate float64) (Analyzer, error) {
	ident, err := ParseIdentifier(id)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	f, ok := r.factories[ident.Library+":"+ident.Plugin]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPluginLoad, ident)
	}

	a, err := f(ident.Output, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPluginLoad, ident, err)
	}

	return a, nil
}

// Plugins lists the registered library:plugin keys in sorted order.
func (r *Registry) Plugins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the shared registry holding the built-in
// analyzers.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.Register("audgraph", "energy", newEnergy)
	})

	return defaultRegistry
}

// Load creates an analyzer from the default registry.
func Load(id string, sampleRate float64) (Analyzer, error) {
	return DefaultRegistry().Load(id, sampleRate)
}
