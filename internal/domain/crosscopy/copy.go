package crosscopy

import (
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/pagecraft/backend/internal/domain/schema"
	"github.com/pagecraft/backend/internal/domain/store"
	"github.com/pagecraft/backend/internal/infrastructure/logging"
	"github.com/pagecraft/backend/internal/infrastructure/monitoring"
	"github.com/pagecraft/backend/internal/shared/types"
)

var (
	// ErrSameCanvas indicates source and target are the same surface
	ErrSameCanvas = errors.New("source and target canvas must differ")
	// ErrInProgress indicates an overlapping copy was rejected. Copies
	// are not queued; callers retry when the flag clears.
	ErrInProgress = errors.New("copy already in progress")
)

// SchemaSource supplies per-widget configuration schemas for remapping.
// External collaborator; a widget without a schema copies verbatim.
type SchemaSource interface {
	SchemaFor(widget string) (schema.Schema, bool)
}

// Result reports a completed copy operation
type Result struct {
	Success     bool                      `json:"success"`
	CopiedCount int                       `json:"copied_count"`
	Instances   []types.ComponentInstance `json:"instances,omitempty"`
	Reason      string                    `json:"reason,omitempty"`
}

// Engine deep-clones instances from one canvas to the other, remapping
// canvas-conditional values and regenerating identifiers. Built atop the
// store's mutation API; it never reaches into store internals.
type Engine struct {
	store      *store.Store
	schemas    SchemaSource
	inProgress atomic.Bool
	logger     *logging.Logger
	metrics    *monitoring.Metrics
}

// New creates a copy engine
func New(st *store.Store, schemas SchemaSource, logger *logging.Logger, metrics *monitoring.Metrics) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		store:   st,
		schemas: schemas,
		logger:  logger.Named("crosscopy"),
		metrics: metrics,
	}
}

// Copy replaces the target canvas with remapped clones of the source
// canvas. An empty source is a success with zero copies and an untouched
// target. Per-instance remap failures fall back to the un-remapped
// clone; only structural precondition failures fail the operation.
func (e *Engine) Copy(from, to types.Canvas) (*Result, error) {
	if !from.Valid() || !to.Valid() {
		e.record("invalid")
		return &Result{Success: false, Reason: "unknown canvas"}, fmt.Errorf("%w: %q -> %q", store.ErrInvalidCanvas, from, to)
	}
	if from == to {
		e.record("same_canvas")
		return &Result{Success: false, Reason: "source and target canvas must differ"}, ErrSameCanvas
	}

	// Advisory flag, not a queue: overlapping copies are rejected fast
	if !e.inProgress.CompareAndSwap(false, true) {
		e.record("rejected_overlap")
		return &Result{Success: false, Reason: "copy already in progress"}, ErrInProgress
	}
	defer e.inProgress.Store(false)

	source := e.store.List(from)
	if len(source) == 0 {
		e.record("empty_source")
		return &Result{Success: true, CopiedCount: 0, Instances: []types.ComponentInstance{}}, nil
	}

	// Copying must not leave a dangling selection on either canvas
	e.store.Select(nil)

	// A copy replaces the target, it does not merge
	for _, existing := range e.store.List(to) {
		e.store.Remove(existing.ID)
	}

	copied := make([]types.ComponentInstance, 0, len(source))
	for _, src := range source {
		clone := src.Clone()
		props := e.remapProps(src.Name, clone.Props, to)

		added, err := e.store.Add(src.Name, to, &store.AddOptions{
			Props:          props,
			StyleOverrides: clone.StyleOverrides,
			Position:       clone.Position,
			Size:           clone.Size,
		})
		if err != nil {
			// Add only fails structurally; surface it, the canvas is
			// already partially rewritten and the caller should know
			e.record("failed")
			return &Result{Success: false, CopiedCount: len(copied), Reason: err.Error()}, err
		}
		copied = append(copied, added)
	}

	e.record("ok")
	if e.metrics != nil {
		e.metrics.CopiedTotal.Add(float64(len(copied)))
	}
	e.logger.Info("canvas copied",
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Int("count", len(copied)),
	)
	return &Result{Success: true, CopiedCount: len(copied), Instances: copied}, nil
}

// remapProps applies canvas-conditional schema values to cloned props.
// Toward mobile, canvas overrides merge over the clone. Toward desktop,
// the clone is rebuilt from unconditional defaults plus its base props,
// so mobile-only override values do not leak backward. Any failure falls
// back to the un-remapped clone.
func (e *Engine) remapProps(widget string, cloned map[string]interface{}, to types.Canvas) (out map[string]interface{}) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("schema remap failed, using un-remapped clone",
				zap.String("widget", widget),
				zap.Any("cause", r),
			)
			out = cloned
		}
	}()

	if e.schemas == nil {
		return cloned
	}
	sch, ok := e.schemas.SchemaFor(widget)
	if !ok {
		return cloned
	}

	switch to {
	case types.CanvasMobile:
		merged := types.CloneValueMap(cloned)
		if merged == nil {
			merged = map[string]interface{}{}
		}
		for k, v := range sch.CanvasOverrides(types.CanvasMobile) {
			merged[k] = v
		}
		return merged

	case types.CanvasDesktop:
		defaults := sch.DefaultValues()
		if defaults == nil {
			defaults = map[string]interface{}{}
		}
		overrides := sch.CanvasOverrides(types.CanvasMobile)
		for k, v := range cloned {
			if _, overridden := overrides[k]; overridden {
				// Mobile-conditional value; the default wins on desktop
				continue
			}
			defaults[k] = v
		}
		return defaults
	}
	return cloned
}

// InProgress reports the advisory flag, for diagnostics
func (e *Engine) InProgress() bool {
	return e.inProgress.Load()
}

func (e *Engine) record(outcome string) {
	if e.metrics != nil {
		e.metrics.CopyOperations.WithLabelValues(outcome).Inc()
	}
}
