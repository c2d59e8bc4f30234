// Package models holds the animation model registry. Models are registered
// once at init and looked up by tag; evaluators are pure functions of
// (params, normalized time) and are safe to call from the engine thread
// without locking.
package models

import (
	"fmt"
	"sort"
	"sync"

	"github.com/marmorek/animos/internal/types"
)

// ParamSpec describes one scalar parameter of a model.
type ParamSpec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
	Doc     string
}

// Meta is a model's registry entry: identity plus parameter schema.
type Meta struct {
	Tag      string
	Name     string
	Category string
	Params   []ParamSpec
	// MinPoints is nonzero for path-family models that evaluate an ordered
	// point list in addition to scalar params.
	MinPoints int
}

// Params is the evaluated input of a model: scalar values (already validated
// and default-filled against the schema) plus the optional point list.
type Params struct {
	Values map[string]float64
	Points []types.Position
}

// Get returns a scalar value. Validate fills defaults, so a missing key only
// happens for params outside the schema and reads as zero.
func (p Params) Get(name string) float64 {
	return p.Values[name]
}

// Model is a registered animation model.
type Model interface {
	Meta() Meta
	// Evaluate maps normalized time t in [0,1] to a base position. Pure.
	Evaluate(p Params, t float64) types.Position
}

type modelFunc struct {
	meta Meta
	eval func(p Params, t float64) types.Position
}

func (m modelFunc) Meta() Meta { return m.meta }
func (m modelFunc) Evaluate(p Params, t float64) types.Position {
	return m.eval(p, t)
}

var (
	registryMu sync.Mutex
	registry   = make(map[string]Model)
)

// register adds a model at init time. Duplicate tags are a programming error.
func register(meta Meta, eval func(Params, float64) types.Position) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[meta.Tag]; ok {
		panic(fmt.Sprintf("models: duplicate tag %q", meta.Tag))
	}
	registry[meta.Tag] = modelFunc{meta: meta, eval: eval}
}

// Lookup returns the model for a tag.
func Lookup(tag string) (Model, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	m, ok := registry[tag]
	return m, ok
}

// Tags returns all registered tags, sorted.
func Tags() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Validate checks raw parameter values against a model's schema, fills
// defaults for missing entries, and rejects unknown names and out-of-range
// values. It returns the normalized value map without mutating the input.
func Validate(tag string, values map[string]float64, npoints int) (map[string]float64, error) {
	m, ok := Lookup(tag)
	if !ok {
		return nil, fmt.Errorf("models: unknown model %q", tag)
	}
	meta := m.Meta()
	if npoints < meta.MinPoints {
		return nil, fmt.Errorf("models: %s needs at least %d points, got %d", tag, meta.MinPoints, npoints)
	}
	specs := make(map[string]ParamSpec, len(meta.Params))
	out := make(map[string]float64, len(meta.Params))
	for _, spec := range meta.Params {
		specs[spec.Name] = spec
		out[spec.Name] = spec.Default
	}
	for name, v := range values {
		spec, ok := specs[name]
		if !ok {
			return nil, fmt.Errorf("models: %s has no parameter %q", tag, name)
		}
		if v < spec.Min || v > spec.Max {
			return nil, fmt.Errorf("models: %s.%s = %g outside [%g, %g]", tag, name, v, spec.Min, spec.Max)
		}
		out[name] = v
	}
	return out, nil
}
