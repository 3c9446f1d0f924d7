// Package blockmeta is the block metadata service: per-name rendering
// flags, default property values, and the model-derived shape queries
// (full cube, opacity, transparency) the cull rules and the chunk
// builder consult.
package blockmeta

import (
	"structviz/internal/structure"
)

// Definition carries the per-name metadata of a block.
type Definition struct {
	Name string
	// Opaque, when set, overrides the queried opacity test.
	Opaque *bool
	// SemiTransparent, when set, overrides the queried transparency test
	// and forces geometry into the transparent draw pass.
	SemiTransparent *bool
	// SelfCulling marks blocks whose identical neighbors hide shared faces.
	SelfCulling bool
	// DefaultProperties fills property keys the structure source left unset.
	DefaultProperties map[string]string
}

// ShapeQueries answers shape questions that depend on resolved model
// geometry (and therefore on the loaded asset set).
type ShapeQueries interface {
	IsFullCube(b structure.Block) bool
	IsOpaque(b structure.Block) bool
	IsNonTransparent(b structure.Block) bool
}

// Registry maps block names to definitions and fronts the shape queries.
type Registry struct {
	defs   map[string]*Definition
	shapes ShapeQueries
}

// NewRegistry creates a registry backed by the given shape queries.
// shapes may be nil, in which case non-air blocks are treated as opaque
// full cubes (the safe default for untextured viewing).
func NewRegistry(shapes ShapeQueries) *Registry {
	return &Registry{
		defs:   make(map[string]*Definition),
		shapes: shapes,
	}
}

// Register adds or replaces a definition.
func (r *Registry) Register(def *Definition) {
	r.defs[def.Name] = def
}

// OpaqueOverride returns the explicit opacity override for a name.
func (r *Registry) OpaqueOverride(name string) (bool, bool) {
	if d, ok := r.defs[name]; ok && d.Opaque != nil {
		return *d.Opaque, true
	}
	return false, false
}

// SemiTransparentOverride returns the explicit transparency override.
func (r *Registry) SemiTransparentOverride(name string) (bool, bool) {
	if d, ok := r.defs[name]; ok && d.SemiTransparent != nil {
		return *d.SemiTransparent, true
	}
	return false, false
}

// SelfCulling reports whether identical adjacent blocks of this name
// hide their shared face.
func (r *Registry) SelfCulling(name string) bool {
	if d, ok := r.defs[name]; ok {
		return d.SelfCulling
	}
	return false
}

// DefaultProperties returns default property values for a name, or nil.
func (r *Registry) DefaultProperties(name string) map[string]string {
	if d, ok := r.defs[name]; ok {
		return d.DefaultProperties
	}
	return nil
}

// IsFullCube reports whether the block's shape fills its cell.
func (r *Registry) IsFullCube(b structure.Block) bool {
	if r.shapes != nil {
		return r.shapes.IsFullCube(b)
	}
	return !b.IsAir()
}

// IsOpaque is the queried opacity test. Explicit overrides are applied
// by the cull rules, not here.
func (r *Registry) IsOpaque(b structure.Block) bool {
	if r.shapes != nil {
		return r.shapes.IsOpaque(b)
	}
	return !b.IsAir()
}

// IsNonTransparent reports whether the block renders in the opaque pass.
func (r *Registry) IsNonTransparent(b structure.Block) bool {
	if r.shapes != nil {
		return r.shapes.IsNonTransparent(b)
	}
	return !b.IsAir()
}

// Bool is a convenience for building override pointers in definitions.
func Bool(v bool) *bool { return &v }
