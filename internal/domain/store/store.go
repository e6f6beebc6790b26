package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pagecraft/backend/internal/infrastructure/logging"
	"github.com/pagecraft/backend/internal/infrastructure/monitoring"
	"github.com/pagecraft/backend/internal/shared/id"
	"github.com/pagecraft/backend/internal/shared/types"
)

// DefaultHistoryDepth bounds the undo and redo stacks
const DefaultHistoryDepth = 50

var (
	// ErrInvalidCanvas indicates an unknown canvas name
	ErrInvalidCanvas = errors.New("invalid canvas")
	// ErrEmptyName indicates a placement without a widget name
	ErrEmptyName = errors.New("widget name is required")
)

// Store owns the builder state: two ordered canvases of component
// instances, bounded undo/redo history, and a subscriber event bus.
// Only the store's own methods write state; reads return deep copies.
type Store struct {
	mu           sync.RWMutex
	state        types.BuilderState
	undo         []types.BuilderState
	redo         []types.BuilderState
	historyDepth int

	subs   map[string]chan types.Event
	subsMu sync.RWMutex

	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// Options configures store construction
type Options struct {
	HistoryDepth int
	Logger       *logging.Logger
	Metrics      *monitoring.Metrics
}

// New creates an empty store
func New(opts Options) *Store {
	if opts.HistoryDepth <= 0 {
		opts.HistoryDepth = DefaultHistoryDepth
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Store{
		state:        emptyState(),
		historyDepth: opts.HistoryDepth,
		subs:         make(map[string]chan types.Event),
		logger:       opts.Logger.Named("store"),
		metrics:      opts.Metrics,
	}
}

func emptyState() types.BuilderState {
	return types.BuilderState{
		Desktop:  []types.ComponentInstance{},
		Mobile:   []types.ComponentInstance{},
		Metadata: types.StateMetadata{Version: 1, LastModified: time.Now()},
	}
}

// AddOptions carries optional initial values for a placement. Provided
// values are preserved as-is; nothing is regenerated from defaults.
type AddOptions struct {
	Props          map[string]interface{}
	StyleOverrides map[string]string
	Position       *types.Position
	Size           *types.Size
}

// Add places a new component instance on a canvas and returns a copy of
// it. History is snapshotted before the mutation.
func (s *Store) Add(name string, canvas types.Canvas, opts *AddOptions) (types.ComponentInstance, error) {
	if name == "" {
		return types.ComponentInstance{}, ErrEmptyName
	}
	if !canvas.Valid() {
		return types.ComponentInstance{}, fmt.Errorf("%w: %q", ErrInvalidCanvas, canvas)
	}

	instance := types.ComponentInstance{
		ID:             id.NewComponentID().String(),
		Name:           name,
		Canvas:         canvas,
		Props:          map[string]interface{}{},
		StyleOverrides: map[string]string{},
		CreatedAt:      time.Now(),
	}
	if opts != nil {
		if opts.Props != nil {
			instance.Props = types.CloneValueMap(opts.Props)
		}
		if opts.StyleOverrides != nil {
			instance.StyleOverrides = types.CloneStringMap(opts.StyleOverrides)
		}
		if opts.Position != nil {
			pos := *opts.Position
			instance.Position = &pos
		}
		if opts.Size != nil {
			size := *opts.Size
			instance.Size = &size
		}
	}

	s.mu.Lock()
	s.snapshotLocked()
	if canvas == types.CanvasMobile {
		s.state.Mobile = append(s.state.Mobile, instance)
	} else {
		s.state.Desktop = append(s.state.Desktop, instance)
	}
	s.touchLocked()
	s.mu.Unlock()

	s.afterMutation("add", types.Event{
		Type:        types.EventComponentAdded,
		ComponentID: instance.ID,
		Canvas:      canvas,
	})
	return instance.Clone(), nil
}

// Remove deletes an instance by id from whichever canvas holds it.
// Returns false when the id is unknown; that is a no-op, not an error.
func (s *Store) Remove(componentID string) bool {
	s.mu.Lock()

	canvas, idx := s.locateLocked(componentID)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	s.snapshotLocked()
	if canvas == types.CanvasMobile {
		s.state.Mobile = append(s.state.Mobile[:idx], s.state.Mobile[idx+1:]...)
	} else {
		s.state.Desktop = append(s.state.Desktop[:idx], s.state.Desktop[idx+1:]...)
	}
	// A removed instance must not stay selected
	if s.state.SelectedID != nil && *s.state.SelectedID == componentID {
		s.state.SelectedID = nil
	}
	s.touchLocked()
	s.mu.Unlock()

	s.afterMutation("remove", types.Event{
		Type:        types.EventComponentRemoved,
		ComponentID: componentID,
		Canvas:      canvas,
	})
	return true
}

// Patch carries partial fields for an update. Props and StyleOverrides
// are shallow-merged into the existing maps; everything else replaces
// the slot value.
type Patch struct {
	Name           *string
	Props          map[string]interface{}
	StyleOverrides map[string]string
	Position       *types.Position
	Size           *types.Size
}

// Update merges a patch into an existing instance. Returns false when
// the id is unknown.
func (s *Store) Update(componentID string, patch Patch) bool {
	s.mu.Lock()

	canvas, idx := s.locateLocked(componentID)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	s.snapshotLocked()
	seq := s.state.Desktop
	if canvas == types.CanvasMobile {
		seq = s.state.Mobile
	}
	instance := &seq[idx]

	if patch.Name != nil {
		instance.Name = *patch.Name
	}
	if patch.Props != nil {
		if instance.Props == nil {
			instance.Props = map[string]interface{}{}
		}
		for k, v := range patch.Props {
			instance.Props[k] = v
		}
	}
	if patch.StyleOverrides != nil {
		if instance.StyleOverrides == nil {
			instance.StyleOverrides = map[string]string{}
		}
		for k, v := range patch.StyleOverrides {
			instance.StyleOverrides[k] = v
		}
	}
	if patch.Position != nil {
		pos := *patch.Position
		instance.Position = &pos
	}
	if patch.Size != nil {
		size := *patch.Size
		instance.Size = &size
	}
	s.touchLocked()
	s.mu.Unlock()

	s.afterMutation("update", types.Event{
		Type:        types.EventComponentUpdated,
		ComponentID: componentID,
		Canvas:      canvas,
	})
	return true
}

// Select sets the selected instance, or clears the selection with nil.
// Selecting the current value is a no-op with no event. Returns false
// when a non-nil id references no existing instance.
func (s *Store) Select(componentID *string) bool {
	s.mu.Lock()

	if componentID != nil {
		if _, idx := s.locateLocked(*componentID); idx < 0 {
			s.mu.Unlock()
			return false
		}
	}

	unchanged := (componentID == nil && s.state.SelectedID == nil) ||
		(componentID != nil && s.state.SelectedID != nil && *componentID == *s.state.SelectedID)
	if unchanged {
		s.mu.Unlock()
		return true
	}

	s.state.SelectedID = nil
	if componentID != nil {
		selected := *componentID
		s.state.SelectedID = &selected
	}
	s.mu.Unlock()

	event := types.Event{Type: types.EventComponentSelected}
	if componentID != nil {
		event.ComponentID = *componentID
	}
	s.afterMutation("select", event)
	return true
}

// Undo restores the most recent history snapshot, pushing the current
// state onto the redo stack. Returns false when there is nothing to undo.
func (s *Store) Undo() bool {
	s.mu.Lock()

	if len(s.undo) == 0 {
		s.mu.Unlock()
		return false
	}

	current := s.state.Clone()
	s.redo = pushBounded(s.redo, current, s.historyDepth)
	s.state = s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.mu.Unlock()

	s.afterMutation("undo", types.Event{Type: types.EventStateRestored})
	return true
}

// Redo reapplies the most recently undone state. Returns false when the
// redo stack is empty.
func (s *Store) Redo() bool {
	s.mu.Lock()

	if len(s.redo) == 0 {
		s.mu.Unlock()
		return false
	}

	current := s.state.Clone()
	s.undo = pushBounded(s.undo, current, s.historyDepth)
	s.state = s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.mu.Unlock()

	s.afterMutation("redo", types.Event{Type: types.EventStateRestored})
	return true
}

// Clear resets both canvases and metadata to empty
func (s *Store) Clear() {
	s.mu.Lock()
	s.snapshotLocked()
	s.state = emptyState()
	s.mu.Unlock()

	s.afterMutation("clear", types.Event{Type: types.EventStateCleared})
}

// Replace swaps in a whole state document, e.g. a restored layout
func (s *Store) Replace(state types.BuilderState) {
	s.mu.Lock()
	s.snapshotLocked()
	s.state = state.Clone()
	s.touchLocked()
	s.mu.Unlock()

	s.afterMutation("replace", types.Event{Type: types.EventStateRestored})
}

// State returns a deep copy of the current builder state. Callers can
// never mutate store internals through the result.
func (s *Store) State() types.BuilderState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Find returns a copy of the instance with the given id
func (s *Store) Find(componentID string) (types.ComponentInstance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	canvas, idx := s.locateLocked(componentID)
	if idx < 0 {
		return types.ComponentInstance{}, false
	}
	if canvas == types.CanvasMobile {
		return s.state.Mobile[idx].Clone(), true
	}
	return s.state.Desktop[idx].Clone(), true
}

// List returns copies of the instances on one canvas in placement order
func (s *Store) List(canvas types.Canvas) []types.ComponentInstance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.state.CanvasFor(canvas)
	out := make([]types.ComponentInstance, len(src))
	for i := range src {
		out[i] = src[i].Clone()
	}
	return out
}

// Counts returns the number of placed instances per canvas
func (s *Store) Counts() (desktop, mobile int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Desktop), len(s.state.Mobile)
}

// HistoryDepths reports current undo/redo stack sizes
func (s *Store) HistoryDepths() (undo, redo int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.undo), len(s.redo)
}

// snapshotLocked pushes the current state onto the undo stack and clears
// redo. Must hold mu. Any new mutation after an undo invalidates the
// redo line (linear history).
func (s *Store) snapshotLocked() {
	s.undo = pushBounded(s.undo, s.state.Clone(), s.historyDepth)
	s.redo = s.redo[:0]
}

func (s *Store) touchLocked() {
	s.state.Metadata.LastModified = time.Now()
	s.state.Metadata.Version++
}

// locateLocked finds an instance across both canvases. Must hold mu.
func (s *Store) locateLocked(componentID string) (types.Canvas, int) {
	for i := range s.state.Desktop {
		if s.state.Desktop[i].ID == componentID {
			return types.CanvasDesktop, i
		}
	}
	for i := range s.state.Mobile {
		if s.state.Mobile[i].ID == componentID {
			return types.CanvasMobile, i
		}
	}
	return "", -1
}

// pushBounded appends with FIFO eviction of the oldest entry
func pushBounded(stack []types.BuilderState, state types.BuilderState, depth int) []types.BuilderState {
	stack = append(stack, state)
	if len(stack) > depth {
		stack = stack[1:]
	}
	return stack
}

func (s *Store) afterMutation(operation string, event types.Event) {
	if s.metrics != nil {
		s.metrics.RecordMutation(operation)
		desktop, mobile := s.Counts()
		s.metrics.SetComponentCounts(desktop, mobile)
	}
	event.Timestamp = time.Now()
	s.notify(event)
	s.logger.Debug("mutation applied",
		zap.String("operation", operation),
		zap.String("component_id", event.ComponentID),
	)
}
