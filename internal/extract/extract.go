// Package extract turns content identifiers into playable stream URLs
// by scraping third-party embed pages. Each source is one Extractor
// strategy; the Orchestrator fans a request out across them.
package extract

import (
	"context"
	"fmt"
	"strings"

	"minnow/internal/media"
)

// SelectorAll selects every registered source.
const SelectorAll = "all"

// Extractor is the strategy interface implemented by each source.
type Extractor interface {
	// Name returns the source name used in API responses and selectors.
	Name() string

	// Extract resolves a request into streams. Failures are reported in
	// the result's Err field; Extract never returns a Go error and never
	// panics past this boundary.
	Extract(ctx context.Context, req media.StreamRequest) media.ExtractionResult
}

// Registry holds named extractors in registration order. Adding a new
// source means registering another Extractor; nothing downstream changes.
type Registry struct {
	names  []string
	byName map[string]Extractor
}

// NewRegistry creates a registry with the given extractors pre-registered.
func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{byName: make(map[string]Extractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor. Re-registering a name replaces the
// implementation but keeps its original position.
func (r *Registry) Register(e Extractor) {
	name := e.Name()
	if _, ok := r.byName[name]; !ok {
		r.names = append(r.names, name)
	}
	r.byName[name] = e
}

// Names returns all registered source names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Lookup returns the extractor registered under name.
func (r *Registry) Lookup(name string) (Extractor, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Resolve expands a selector into concrete extractors. SelectorAll (or
// an empty selector) expands to every registered source in registration
// order; an unknown explicit name is a validation error.
func (r *Registry) Resolve(selector string) ([]Extractor, error) {
	if selector == SelectorAll || selector == "" {
		out := make([]Extractor, 0, len(r.names))
		for _, n := range r.names {
			out = append(out, r.byName[n])
		}
		return out, nil
	}

	e, ok := r.byName[selector]
	if !ok {
		return nil, fmt.Errorf("invalid server %q (available: %s, all)",
			selector, strings.Join(r.names, ", "))
	}
	return []Extractor{e}, nil
}
