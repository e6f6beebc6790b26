// Package schema holds per-widget configuration schemas: default prop
// values, canvas-conditional overrides, and a serializable snapshot.
// Schemas are defined by widget bundles (settings files), never by the
// store or the copy engine that consume them.
package schema

import (
	"sync"

	"github.com/pagecraft/backend/internal/shared/types"
)

// Schema is one widget's configuration surface
type Schema interface {
	// DefaultValues returns the unconditional prop defaults
	DefaultValues() map[string]interface{}
	// CanvasOverrides returns prop values that apply only on the given canvas
	CanvasOverrides(canvas types.Canvas) map[string]interface{}
	// Values returns a JSON-serializable snapshot of the full schema
	Values() map[string]interface{}
}

// Definition is the concrete schema parsed from a bundle's settings file
type Definition struct {
	Defaults  map[string]interface{}            `json:"defaults" yaml:"defaults" toml:"defaults"`
	Overrides map[string]map[string]interface{} `json:"overrides" yaml:"overrides" toml:"overrides"`
}

// DefaultValues implements Schema
func (d *Definition) DefaultValues() map[string]interface{} {
	return types.CloneValueMap(d.Defaults)
}

// CanvasOverrides implements Schema
func (d *Definition) CanvasOverrides(canvas types.Canvas) map[string]interface{} {
	if d.Overrides == nil {
		return nil
	}
	return types.CloneValueMap(d.Overrides[string(canvas)])
}

// Values implements Schema
func (d *Definition) Values() map[string]interface{} {
	out := map[string]interface{}{
		"defaults": types.CloneValueMap(d.Defaults),
	}
	if len(d.Overrides) > 0 {
		overrides := make(map[string]interface{}, len(d.Overrides))
		for canvas, vals := range d.Overrides {
			overrides[canvas] = types.CloneValueMap(vals)
		}
		out["overrides"] = overrides
	}
	return out
}

// Registry maps widget names to their schemas
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]Schema
}

// NewRegistry creates an empty schema registry
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]Schema)}
}

// Register stores or replaces a widget's schema
func (r *Registry) Register(widget string, s Schema) {
	r.mu.Lock()
	r.schemas[widget] = s
	r.mu.Unlock()
}

// SchemaFor returns the schema for a widget, if one is registered
func (r *Registry) SchemaFor(widget string) (Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[widget]
	return s, ok
}

// Widgets lists registered widget names
func (r *Registry) Widgets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	return names
}
