// Package scope captures the names visible at a declaration site into an
// immutable snapshot that forward references are resolved against. Bindings
// map a name to either a types.Definition or an *object.Class.
package scope

import (
	"github.com/tanema/pedant/src/object"
	"github.com/tanema/pedant/src/types"
)

type (
	// Layer is one level of name bindings in a capture, like a single
	// frame's globals and locals. Name identifies the layer so that helper
	// layers can be skipped during capture.
	Layer struct {
		Name    string
		Globals map[string]any
		Locals  map[string]any
	}
	// Snapshot is an immutable name to binding mapping. It copies the maps
	// it was built from so that it never retains the caller's storage.
	Snapshot struct {
		bindings map[string]any
	}
)

// New builds a snapshot from a single binding map. The map is copied.
func New(bindings map[string]any) *Snapshot {
	snap := &Snapshot{bindings: make(map[string]any, len(bindings))}
	for name, val := range bindings {
		snap.bindings[name] = val
	}
	return snap
}

// Capture merges the layer at the given depth into a snapshot, with locals
// taking precedence over globals on key collision. When the selected
// layer's name appears in skip, the next layer up is captured instead so
// that internal helpers do not shadow the caller's names. Depth counts from
// the end of layers, mirroring a walk up a call stack.
func Capture(depth int, skip []string, layers ...Layer) *Snapshot {
	idx := len(layers) - 1 - depth
	if idx >= 0 && nameMatches(layers[idx].Name, skip) {
		idx--
	}
	if idx < 0 || idx >= len(layers) {
		return New(nil)
	}
	layer := layers[idx]
	merged := make(map[string]any, len(layer.Globals)+len(layer.Locals))
	for name, val := range layer.Globals {
		merged[name] = val
	}
	for name, val := range layer.Locals {
		merged[name] = val
	}
	return New(merged)
}

func nameMatches(name string, skip []string) bool {
	for _, candidate := range skip {
		if candidate == name {
			return true
		}
	}
	return false
}

// Lookup finds a binding by name. Builtin primitive names are always
// visible and cannot be shadowed.
func (s *Snapshot) Lookup(name string) (any, bool) {
	if defn, ok := types.Builtins[name]; ok {
		return defn, true
	}
	if s == nil {
		return nil, false
	}
	val, ok := s.bindings[name]
	return val, ok
}

// With returns a new snapshot extended with one more binding. The receiver
// is left untouched, which allows a class under construction to bind its
// own name for self-referential annotations.
func (s *Snapshot) With(name string, val any) *Snapshot {
	size := 1
	if s != nil {
		size += len(s.bindings)
	}
	merged := make(map[string]any, size)
	if s != nil {
		for key, bound := range s.bindings {
			merged[key] = bound
		}
	}
	merged[name] = val
	return &Snapshot{bindings: merged}
}

// Len reports the number of captured bindings, not counting builtins.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.bindings)
}

// Definition coerces a binding into a descriptor. Classes become class
// descriptors; anything that is already a Definition passes through.
func Definition(binding any) (types.Definition, bool) {
	switch bound := binding.(type) {
	case types.Definition:
		return bound, true
	case *object.Class:
		return types.ClassOf(bound), true
	default:
		return nil, false
	}
}
