// Package extract decides whether an evaluated export is a renderable
// unit. The input is untyped script output, so the check is a structural
// heuristic; anything ambiguous fails closed to nil rather than guessing.
package extract

import (
	"sync"

	"github.com/dop251/goja"
)

// UnitKind classifies how a renderable unit mounts
type UnitKind string

const (
	// UnitFunction is a directly callable export
	UnitFunction UnitKind = "function"
	// UnitRenderObject is an object owning a callable render member
	UnitRenderObject UnitKind = "render-object"
	// UnitWrapper is a recognized framework wrapper value
	UnitWrapper UnitKind = "wrapper"
)

// Unit is an opaque renderable value extracted from an evaluation
// session. It is owned exclusively by the cache entry that produced it
// and never mutated after creation. Calls into the unit serialize on the
// session VM, which is not safe for concurrent use.
type Unit struct {
	Widget string
	Kind   UnitKind

	value goja.Value
	vm    *goja.Runtime
	mu    sync.Mutex
}

// Value returns the underlying renderable value
func (u *Unit) Value() goja.Value {
	return u.value
}

// Invoke calls a function-shaped unit with the given props and returns
// the produced node, serialized against the owning VM
func (u *Unit) Invoke(props map[string]interface{}) (interface{}, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	target := u.value
	if u.Kind == UnitRenderObject {
		if obj, ok := u.value.(*goja.Object); ok {
			target = obj.Get("render")
		}
	}
	fn, ok := goja.AssertFunction(target)
	if !ok {
		return nil, errNotCallable
	}
	out, err := fn(goja.Undefined(), u.vm.ToValue(props))
	if err != nil {
		return nil, err
	}
	return out.Export(), nil
}

// Extract inspects an evaluated export and returns a renderable unit, or
// nil when the value is not render-capable. Module-shaped exports are
// unwrapped through their default member before re-checking.
func Extract(vm *goja.Runtime, exported goja.Value) *Unit {
	if unit := classify(vm, exported); unit != nil {
		return unit
	}

	// Module container: unwrap default export and re-check
	if obj, ok := exported.(*goja.Object); ok {
		def := obj.Get("default")
		if def != nil && !goja.IsUndefined(def) && !goja.IsNull(def) {
			if unit := classify(vm, def); unit != nil {
				return unit
			}
		}
	}

	return nil
}

func classify(vm *goja.Runtime, v goja.Value) *Unit {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}

	if _, callable := goja.AssertFunction(v); callable {
		return &Unit{Kind: UnitFunction, value: v, vm: vm}
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}

	if render := obj.Get("render"); render != nil {
		if _, callable := goja.AssertFunction(render); callable {
			return &Unit{Kind: UnitRenderObject, value: v, vm: vm}
		}
	}

	// Framework wrapper marker: element factories tagged by the runtime
	if marker := obj.Get("$$typeof"); marker != nil && !goja.IsUndefined(marker) && !goja.IsNull(marker) {
		return &Unit{Kind: UnitWrapper, value: v, vm: vm}
	}

	return nil
}

type extractError string

func (e extractError) Error() string { return string(e) }

const errNotCallable = extractError("unit is not callable")
