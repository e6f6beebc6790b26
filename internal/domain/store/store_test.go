package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagecraft/backend/internal/shared/types"
)

func newTestStore() *Store {
	return New(Options{})
}

func TestAdd(t *testing.T) {
	s := newTestStore()

	t.Run("places on requested canvas", func(t *testing.T) {
		inst, err := s.Add("button", types.CanvasDesktop, nil)
		require.NoError(t, err)
		assert.NotEmpty(t, inst.ID)
		assert.Equal(t, "button", inst.Name)
		assert.Equal(t, types.CanvasDesktop, inst.Canvas)

		desktop, mobile := s.Counts()
		assert.Equal(t, 1, desktop)
		assert.Equal(t, 0, mobile)
	})

	t.Run("unique ids", func(t *testing.T) {
		a, err := s.Add("card", types.CanvasMobile, nil)
		require.NoError(t, err)
		b, err := s.Add("card", types.CanvasMobile, nil)
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("preserves provided values", func(t *testing.T) {
		inst, err := s.Add("hero", types.CanvasDesktop, &AddOptions{
			Props:          map[string]interface{}{"title": "welcome"},
			StyleOverrides: map[string]string{"color": "red"},
			Position:       &types.Position{X: 10, Y: 20},
			Size:           &types.Size{Width: 300, Height: 120},
		})
		require.NoError(t, err)
		assert.Equal(t, "welcome", inst.Props["title"])
		assert.Equal(t, "red", inst.StyleOverrides["color"])
		assert.Equal(t, 10, inst.Position.X)
		assert.Equal(t, 120, inst.Size.Height)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := s.Add("", types.CanvasDesktop, nil)
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("unknown canvas rejected", func(t *testing.T) {
		_, err := s.Add("button", types.Canvas("tablet"), nil)
		assert.ErrorIs(t, err, ErrInvalidCanvas)
	})

	t.Run("appends in placement order", func(t *testing.T) {
		s := newTestStore()
		first, _ := s.Add("a", types.CanvasDesktop, nil)
		second, _ := s.Add("b", types.CanvasDesktop, nil)

		list := s.List(types.CanvasDesktop)
		require.Len(t, list, 2)
		assert.Equal(t, first.ID, list[0].ID)
		assert.Equal(t, second.ID, list[1].ID)
	})
}

func TestRemove(t *testing.T) {
	s := newTestStore()
	inst, _ := s.Add("button", types.CanvasDesktop, nil)

	t.Run("unknown id is a no-op", func(t *testing.T) {
		assert.False(t, s.Remove("cmp_does_not_exist"))
		desktop, _ := s.Counts()
		assert.Equal(t, 1, desktop)
	})

	t.Run("clears selection of removed instance", func(t *testing.T) {
		require.True(t, s.Select(&inst.ID))
		require.True(t, s.Remove(inst.ID))

		state := s.State()
		assert.Nil(t, state.SelectedID)
		assert.Empty(t, state.Desktop)
	})
}

func TestUpdate(t *testing.T) {
	s := newTestStore()
	inst, _ := s.Add("button", types.CanvasDesktop, &AddOptions{
		Props:          map[string]interface{}{"label": "ok", "size": "md"},
		StyleOverrides: map[string]string{"color": "red"},
	})

	t.Run("props shallow merge", func(t *testing.T) {
		ok := s.Update(inst.ID, Patch{
			Props: map[string]interface{}{"label": "go"},
		})
		require.True(t, ok)

		got, found := s.Find(inst.ID)
		require.True(t, found)
		assert.Equal(t, "go", got.Props["label"])
		assert.Equal(t, "md", got.Props["size"], "untouched keys survive")
		assert.Equal(t, "red", got.StyleOverrides["color"])
	})

	t.Run("position replaces", func(t *testing.T) {
		require.True(t, s.Update(inst.ID, Patch{Position: &types.Position{X: 5, Y: 6}}))
		require.True(t, s.Update(inst.ID, Patch{Position: &types.Position{X: 7, Y: 8}}))

		got, _ := s.Find(inst.ID)
		assert.Equal(t, &types.Position{X: 7, Y: 8}, got.Position)
	})

	t.Run("name replaces", func(t *testing.T) {
		name := "cta-button"
		require.True(t, s.Update(inst.ID, Patch{Name: &name}))
		got, _ := s.Find(inst.ID)
		assert.Equal(t, "cta-button", got.Name)
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.False(t, s.Update("cmp_missing", Patch{}))
	})
}

func TestSelect(t *testing.T) {
	s := newTestStore()
	inst, _ := s.Add("button", types.CanvasDesktop, nil)

	t.Run("select existing", func(t *testing.T) {
		require.True(t, s.Select(&inst.ID))
		state := s.State()
		require.NotNil(t, state.SelectedID)
		assert.Equal(t, inst.ID, *state.SelectedID)
	})

	t.Run("reselecting is a no-op without event", func(t *testing.T) {
		subID, events := s.Subscribe()
		defer s.Unsubscribe(subID)

		require.True(t, s.Select(&inst.ID))
		select {
		case e := <-events:
			t.Fatalf("unexpected event %v for unchanged selection", e.Type)
		default:
		}
	})

	t.Run("unknown id rejected", func(t *testing.T) {
		missing := "cmp_missing"
		assert.False(t, s.Select(&missing))
	})

	t.Run("nil clears", func(t *testing.T) {
		require.True(t, s.Select(nil))
		assert.Nil(t, s.State().SelectedID)
	})
}

func TestUndoRedo(t *testing.T) {
	t.Run("undo restores exact prior state", func(t *testing.T) {
		s := newTestStore()
		inst, _ := s.Add("button", types.CanvasDesktop, &AddOptions{
			Props: map[string]interface{}{"label": "before"},
		})
		before := s.State()

		require.True(t, s.Update(inst.ID, Patch{Props: map[string]interface{}{"label": "after"}}))
		require.True(t, s.Undo())

		got, found := s.Find(inst.ID)
		require.True(t, found)
		assert.Equal(t, "before", got.Props["label"])
		assert.Equal(t, before.Metadata.Version, s.State().Metadata.Version)
	})

	t.Run("redo reapplies undone mutation", func(t *testing.T) {
		s := newTestStore()
		inst, _ := s.Add("button", types.CanvasDesktop, nil)
		require.True(t, s.Remove(inst.ID))
		require.True(t, s.Undo())

		_, found := s.Find(inst.ID)
		require.True(t, found)

		require.True(t, s.Redo())
		_, found = s.Find(inst.ID)
		assert.False(t, found)
	})

	t.Run("empty stacks", func(t *testing.T) {
		s := newTestStore()
		assert.False(t, s.Undo())
		assert.False(t, s.Redo())
	})

	t.Run("new mutation clears redo", func(t *testing.T) {
		s := newTestStore()
		s.Add("a", types.CanvasDesktop, nil)
		s.Add("b", types.CanvasDesktop, nil)
		require.True(t, s.Undo())

		_, redo := s.HistoryDepths()
		assert.Equal(t, 1, redo)

		s.Add("c", types.CanvasDesktop, nil)
		_, redo = s.HistoryDepths()
		assert.Equal(t, 0, redo)
		assert.False(t, s.Redo())
	})

	t.Run("history bounded with FIFO eviction", func(t *testing.T) {
		s := New(Options{HistoryDepth: DefaultHistoryDepth})
		for i := 0; i < DefaultHistoryDepth+10; i++ {
			_, err := s.Add(fmt.Sprintf("w%d", i), types.CanvasDesktop, nil)
			require.NoError(t, err)
		}

		undo, _ := s.HistoryDepths()
		assert.Equal(t, DefaultHistoryDepth, undo)

		// Walk back as far as history allows
		steps := 0
		for s.Undo() {
			steps++
		}
		assert.Equal(t, DefaultHistoryDepth, steps)

		// The oldest snapshots were evicted, so the floor is not empty
		desktop, _ := s.Counts()
		assert.Equal(t, 10, desktop)
	})
}

func TestClearAndReplace(t *testing.T) {
	t.Run("clear empties both canvases", func(t *testing.T) {
		s := newTestStore()
		s.Add("a", types.CanvasDesktop, nil)
		s.Add("b", types.CanvasMobile, nil)
		s.Clear()

		desktop, mobile := s.Counts()
		assert.Equal(t, 0, desktop)
		assert.Equal(t, 0, mobile)

		// Clear is undoable
		require.True(t, s.Undo())
		desktop, mobile = s.Counts()
		assert.Equal(t, 1, desktop)
		assert.Equal(t, 1, mobile)
	})

	t.Run("replace swaps the document", func(t *testing.T) {
		s := newTestStore()
		s.Add("old", types.CanvasDesktop, nil)

		s.Replace(types.BuilderState{
			Desktop: []types.ComponentInstance{
				{ID: "cmp_x", Name: "imported", Canvas: types.CanvasDesktop},
			},
			Mobile: []types.ComponentInstance{},
		})

		list := s.List(types.CanvasDesktop)
		require.Len(t, list, 1)
		assert.Equal(t, "imported", list[0].Name)

		// The replaced state stays reachable through undo
		require.True(t, s.Undo())
		list = s.List(types.CanvasDesktop)
		require.Len(t, list, 1)
		assert.Equal(t, "old", list[0].Name)
	})
}

func TestStateIsolation(t *testing.T) {
	s := newTestStore()
	inst, _ := s.Add("button", types.CanvasDesktop, &AddOptions{
		Props: map[string]interface{}{"nested": map[string]interface{}{"k": "v"}},
	})

	t.Run("mutating a read does not leak", func(t *testing.T) {
		state := s.State()
		state.Desktop[0].Props["nested"].(map[string]interface{})["k"] = "tampered"
		state.Desktop[0].Name = "tampered"

		got, _ := s.Find(inst.ID)
		assert.Equal(t, "button", got.Name)
		assert.Equal(t, "v", got.Props["nested"].(map[string]interface{})["k"])
	})

	t.Run("mutating add input does not leak", func(t *testing.T) {
		props := map[string]interface{}{"label": "clean"}
		added, _ := s.Add("card", types.CanvasMobile, &AddOptions{Props: props})
		props["label"] = "dirty"

		got, _ := s.Find(added.ID)
		assert.Equal(t, "clean", got.Props["label"])
	})
}

func TestVersioning(t *testing.T) {
	s := newTestStore()
	v0 := s.State().Metadata.Version

	s.Add("a", types.CanvasDesktop, nil)
	v1 := s.State().Metadata.Version
	assert.Greater(t, v1, v0)

	inst := s.List(types.CanvasDesktop)[0]
	s.Update(inst.ID, Patch{Props: map[string]interface{}{"x": 1}})
	assert.Greater(t, s.State().Metadata.Version, v1)
}
