package sandbox

import (
	"context"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/pagecraft/backend/internal/engine/resolver"
	"github.com/pagecraft/backend/internal/infrastructure/logging"
	"github.com/pagecraft/backend/internal/shared/types"
)

// Evaluator executes untrusted widget scripts in isolation. Each call to
// Evaluate runs inside a fresh goja VM exposing exactly three
// capabilities: an exports container, a require function backed by the
// module resolver, and the rendering-primitives handle. No other host
// API is reachable.
type Evaluator struct {
	config Config
	host   HostRuntime
	logger *logging.Logger
}

// New creates an evaluator
func New(config Config, host HostRuntime, logger *logging.Logger) *Evaluator {
	if host == nil {
		host = ElementRuntime{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Evaluator{config: config, host: host, logger: logger.Named("sandbox")}
}

// session is one evaluation pass over a bundle: its own VM and a module
// memo shared by every require call in the pass
type session struct {
	eval    *evaluatorRef
	vm      *goja.Runtime
	bundle  []types.SourceArtifact
	modules map[string]*moduleRecord
	order   []string
	runtime *goja.Object
	interop goja.Value
}

// evaluatorRef narrows what a session reaches back for
type evaluatorRef struct {
	host   HostRuntime
	logger *logging.Logger
}

type moduleRecord struct {
	module *goja.Object
	done   bool
}

// Evaluate runs the artifact's text and returns whatever it exports.
// A reference cycle hands the in-progress module its current, possibly
// empty, exports object instead of recursing. Any thrown error becomes
// an *EvalError; the caller is never crashed.
func (e *Evaluator) Evaluate(ctx context.Context, artifact *types.SourceArtifact, bundle []types.SourceArtifact) (res *Result, err error) {
	vm := goja.New()
	if e.config.MaxCallStack > 0 {
		vm.SetMaxCallStackSize(e.config.MaxCallStack)
	}

	s := &session{
		eval:    &evaluatorRef{host: e.host, logger: e.logger},
		vm:      vm,
		bundle:  bundle,
		modules: make(map[string]*moduleRecord),
	}
	if err := s.setupGlobals(); err != nil {
		return nil, &EvalError{Artifact: artifact.FileName, Cause: err}
	}

	// Interrupt on timeout or cancellation
	timeout := e.config.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	done := make(chan struct{})
	watchdogExited := make(chan struct{})
	go func() {
		defer close(watchdogExited)
		select {
		case <-timer.C:
			vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			vm.Interrupt("context cancelled")
		case <-done:
		}
	}()

	defer func() {
		// The watchdog must be gone before the interrupt is cleared or a
		// late fire would poison the VM kept inside the cached unit
		close(done)
		<-watchdogExited
		vm.ClearInterrupt()
		if r := recover(); r != nil {
			res = nil
			err = &EvalError{Artifact: artifact.FileName, Cause: fmt.Errorf("%v", r)}
		}
	}()

	start := time.Now()
	exports, evalErr := s.evaluateModule(artifact)
	if evalErr != nil {
		return nil, &EvalError{Artifact: artifact.FileName, Cause: evalErr}
	}

	return &Result{
		Exports:  exports,
		VM:       vm,
		Duration: time.Since(start),
		Modules:  s.order,
	}, nil
}

func (s *session) evaluateModule(art *types.SourceArtifact) (goja.Value, error) {
	if rec, ok := s.modules[art.FileName]; ok {
		// Done or mid-evaluation: either way the current exports container
		// is the answer. For cycles that is the empty placeholder.
		return rec.module.Get("exports"), nil
	}

	rec := &moduleRecord{module: s.vm.NewObject()}
	exportsObj := s.vm.NewObject()
	if err := rec.module.Set("exports", exportsObj); err != nil {
		return nil, err
	}
	s.modules[art.FileName] = rec
	s.order = append(s.order, art.FileName)

	wrapped := "(function(module, exports, require, __interop){\"use strict\";\n" +
		normalizeSource(art.Content) + "\n})"
	val, err := s.vm.RunString(wrapped)
	if err != nil {
		return nil, err
	}
	fn, ok := goja.AssertFunction(val)
	if !ok {
		return nil, fmt.Errorf("module wrapper for %s did not compile to a function", art.FileName)
	}

	requireVal := s.vm.ToValue(s.makeRequire())
	if _, err := fn(goja.Undefined(), rec.module, s.vm.ToValue(exportsObj), requireVal, s.interop); err != nil {
		return nil, err
	}

	rec.done = true
	return rec.module.Get("exports"), nil
}

// makeRequire builds the injected import capability. Builtin references
// resolve to the rendering runtime; bundle-local references go through
// the module resolver. An unmatched reference degrades to an empty
// placeholder module rather than an exception.
func (s *session) makeRequire() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()

		ref := resolver.ParseReference(name)
		if ref.Kind == resolver.RefBuiltin {
			return s.runtime
		}

		if isStyleRef(name) {
			if _, err := resolver.Resolve(s.bundle, name, types.KindStyle); err == nil {
				// Styles have no exports; importing one is a no-op
				return s.vm.NewObject()
			}
		}

		art, err := resolver.Resolve(s.bundle, name, types.KindScript)
		if err != nil {
			s.eval.logger.Warn("unresolved reference, substituting placeholder",
				zap.String("reference", name))
			return s.vm.NewObject()
		}

		exports, err := s.evaluateModule(art)
		if err != nil {
			panic(s.vm.NewGoError(err))
		}
		return exports
	}
}

func (s *session) setupGlobals() error {
	// Remove dangerous globals
	s.vm.Set("process", goja.Undefined())
	s.vm.Set("globalThis", goja.Undefined())

	// Timers are no-ops; evaluated code is synchronous by contract
	noop := func(call goja.FunctionCall) goja.Value { return goja.Undefined() }
	s.vm.Set("setTimeout", noop)
	s.vm.Set("setInterval", noop)
	s.vm.Set("setImmediate", noop)

	console := s.vm.NewObject()
	console.Set("log", s.makeConsoleFunc("log"))
	console.Set("info", s.makeConsoleFunc("info"))
	console.Set("warn", s.makeConsoleFunc("warn"))
	console.Set("error", s.makeConsoleFunc("error"))
	if err := s.vm.Set("console", console); err != nil {
		return err
	}

	if err := s.setupRuntimeModule(); err != nil {
		return err
	}

	interop, err := s.vm.RunString(
		`(function(m){ return (m && m.default !== undefined) ? m.default : m; })`)
	if err != nil {
		return err
	}
	s.interop = interop
	return nil
}

// setupRuntimeModule builds the injected rendering-primitives handle
func (s *session) setupRuntimeModule() error {
	runtime := s.vm.NewObject()
	create := s.makeCreateElement()
	runtime.Set("h", create)
	runtime.Set("createElement", create)
	runtime.Set("jsx", create)
	runtime.Set("jsxs", create)
	if err := runtime.Set("Fragment", s.vm.ToValue(s.eval.host.Fragment())); err != nil {
		return err
	}
	s.runtime = runtime
	return nil
}

func (s *session) makeCreateElement() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var tag string
		if len(call.Arguments) > 0 {
			tag = call.Argument(0).String()
		}

		var props map[string]interface{}
		if len(call.Arguments) > 1 {
			arg := call.Argument(1)
			if !goja.IsUndefined(arg) && !goja.IsNull(arg) {
				if m, ok := arg.Export().(map[string]interface{}); ok {
					props = m
				}
			}
		}

		var children []interface{}
		if len(call.Arguments) > 2 {
			for _, arg := range call.Arguments[2:] {
				children = append(children, arg.Export())
			}
		}

		node := s.eval.host.CreateElement(tag, props, children)
		return s.vm.ToValue(node)
	}
}

func (s *session) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var msg string
		for i, arg := range call.Arguments {
			if i > 0 {
				msg += " "
			}
			msg += arg.String()
		}

		switch level {
		case "warn":
			s.eval.logger.Warn(msg, zap.String("source", "widget"))
		case "error":
			s.eval.logger.Error(msg, zap.String("source", "widget"))
		default:
			s.eval.logger.Debug(msg, zap.String("source", "widget"))
		}
		return goja.Undefined()
	}
}

func isStyleRef(name string) bool {
	for _, ext := range types.StyleExtensions {
		if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
			return true
		}
	}
	return false
}
