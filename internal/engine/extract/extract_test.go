package extract

import (
	"testing"

	"github.com/dop251/goja"
)

func eval(t *testing.T, src string) (*goja.Runtime, goja.Value) {
	t.Helper()
	vm := goja.New()
	v, err := vm.RunString(src)
	if err != nil {
		t.Fatalf("RunString: %v", err)
	}
	return vm, v
}

func TestExtract(t *testing.T) {
	t.Run("callable export", func(t *testing.T) {
		vm, v := eval(t, `(function(props) { return props.x; })`)
		unit := Extract(vm, v)
		if unit == nil {
			t.Fatal("expected unit")
		}
		if unit.Kind != UnitFunction {
			t.Errorf("kind = %q, want function", unit.Kind)
		}
	})

	t.Run("render object", func(t *testing.T) {
		vm, v := eval(t, `({ render: function() { return "ok"; }, meta: 1 })`)
		unit := Extract(vm, v)
		if unit == nil {
			t.Fatal("expected unit")
		}
		if unit.Kind != UnitRenderObject {
			t.Errorf("kind = %q, want render-object", unit.Kind)
		}
	})

	t.Run("wrapper marker", func(t *testing.T) {
		vm, v := eval(t, `({ $$typeof: "element.factory", type: "div" })`)
		unit := Extract(vm, v)
		if unit == nil {
			t.Fatal("expected unit")
		}
		if unit.Kind != UnitWrapper {
			t.Errorf("kind = %q, want wrapper", unit.Kind)
		}
	})

	t.Run("module default unwrapped", func(t *testing.T) {
		vm, v := eval(t, `({ default: function() { return 1; }, __esModule: true })`)
		unit := Extract(vm, v)
		if unit == nil {
			t.Fatal("expected unit via default export")
		}
		if unit.Kind != UnitFunction {
			t.Errorf("kind = %q, want function", unit.Kind)
		}
	})

	t.Run("non-renderable values fail closed", func(t *testing.T) {
		cases := map[string]string{
			"plain object":         `({ label: "x" })`,
			"string":               `"hello"`,
			"number":               `42`,
			"null":                 `null`,
			"render not callable":  `({ render: "nope" })`,
			"default not callable": `({ default: { a: 1 } })`,
			"default null":         `({ default: null })`,
		}
		for name, src := range cases {
			vm, v := eval(t, src)
			if unit := Extract(vm, v); unit != nil {
				t.Errorf("%s: expected nil unit, got kind %q", name, unit.Kind)
			}
		}
	})

	t.Run("nil value", func(t *testing.T) {
		vm := goja.New()
		if unit := Extract(vm, nil); unit != nil {
			t.Error("expected nil unit for nil value")
		}
	})
}

func TestUnitInvoke(t *testing.T) {
	t.Run("function unit", func(t *testing.T) {
		vm, v := eval(t, `(function(props) { return "hi " + props.name; })`)
		unit := Extract(vm, v)
		out, err := unit.Invoke(map[string]interface{}{"name": "pagecraft"})
		if err != nil {
			t.Fatalf("Invoke: %v", err)
		}
		if out != "hi pagecraft" {
			t.Errorf("got %v, want hi pagecraft", out)
		}
	})

	t.Run("render object unit", func(t *testing.T) {
		vm, v := eval(t, `({ render: function(props) { return props.n * 2; } })`)
		unit := Extract(vm, v)
		out, err := unit.Invoke(map[string]interface{}{"n": int64(21)})
		if err != nil {
			t.Fatalf("Invoke: %v", err)
		}
		if out != int64(42) {
			t.Errorf("got %v (%T), want 42", out, out)
		}
	})

	t.Run("wrapper unit is not invokable", func(t *testing.T) {
		vm, v := eval(t, `({ $$typeof: "element.factory" })`)
		unit := Extract(vm, v)
		if _, err := unit.Invoke(nil); err == nil {
			t.Error("expected error invoking wrapper unit")
		}
	})
}
