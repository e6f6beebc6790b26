package sandbox

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
)

// Config defines evaluation limits
type Config struct {
	Timeout      time.Duration // Execution timeout per evaluation session
	MaxCallStack int           // goja call stack depth bound
}

// DefaultConfig returns the default evaluation limits
func DefaultConfig() Config {
	return Config{
		Timeout:      5 * time.Second,
		MaxCallStack: 1024,
	}
}

// Result holds one evaluation session's outcome. The VM must outlive the
// exported value: goja values are only meaningful against the runtime
// that produced them.
type Result struct {
	Exports  goja.Value
	VM       *goja.Runtime
	Duration time.Duration
	Modules  []string // artifact file names evaluated in this session
}

// EvalError wraps any failure inside sandboxed execution. It carries the
// artifact name so a bad widget can surface a per-instance error state.
type EvalError struct {
	Artifact string
	Cause    error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluate %s: %v", e.Artifact, e.Cause)
}

func (e *EvalError) Unwrap() error {
	return e.Cause
}

// HostRuntime is the rendering-primitives capability injected into
// evaluated code. It is an external collaborator: the core never renders,
// it only hands scripts a constructor for opaque renderable nodes.
type HostRuntime interface {
	CreateElement(tag string, props map[string]interface{}, children []interface{}) interface{}
	Fragment() interface{}
}

// ElementNode is the node type produced by the default host runtime
type ElementNode struct {
	Tag      string                 `json:"tag"`
	Props    map[string]interface{} `json:"props,omitempty"`
	Children []interface{}          `json:"children,omitempty"`
}

// ElementRuntime is a minimal HostRuntime building plain element trees.
// Production wiring may substitute a framework-backed implementation.
type ElementRuntime struct{}

type fragmentMarker struct{}

// CreateElement builds an opaque element node
func (ElementRuntime) CreateElement(tag string, props map[string]interface{}, children []interface{}) interface{} {
	return &ElementNode{Tag: tag, Props: props, Children: children}
}

// Fragment returns the grouping marker
func (ElementRuntime) Fragment() interface{} {
	return fragmentMarker{}
}
