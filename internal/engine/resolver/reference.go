package resolver

// RefKind discriminates how a reference is satisfied
type RefKind string

const (
	// RefBuiltin is satisfied by an injected host capability
	RefBuiltin RefKind = "builtin"
	// RefBundleLocal is satisfied by an artifact in the same bundle
	RefBundleLocal RefKind = "bundle-local"
)

// BuiltinID enumerates the finite set of injected modules. Anything not
// in this set is a bundle-local reference; there is no open-ended name
// sniffing.
type BuiltinID string

const (
	// BuiltinRuntime is the rendering-primitives handle
	BuiltinRuntime BuiltinID = "runtime"
	// BuiltinJSXRuntime is the automatic-JSX entry point, aliased to the
	// same rendering handle
	BuiltinJSXRuntime BuiltinID = "runtime/jsx"
)

// Reference is a parsed import target
type Reference struct {
	Kind    RefKind
	Builtin BuiltinID // set when Kind == RefBuiltin
	Name    string    // raw reference name
}

var builtins = map[string]BuiltinID{
	"runtime":     BuiltinRuntime,
	"runtime/jsx": BuiltinJSXRuntime,
}

// ParseReference classifies a reference name as builtin or bundle-local
func ParseReference(name string) Reference {
	if id, ok := builtins[name]; ok {
		return Reference{Kind: RefBuiltin, Builtin: id, Name: name}
	}
	return Reference{Kind: RefBundleLocal, Name: name}
}
