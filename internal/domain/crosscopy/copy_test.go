package crosscopy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagecraft/backend/internal/domain/schema"
	"github.com/pagecraft/backend/internal/domain/store"
	"github.com/pagecraft/backend/internal/shared/types"
)

func newTestEngine(schemas SchemaSource) (*Engine, *store.Store) {
	st := store.New(store.Options{})
	return New(st, schemas, nil, nil), st
}

func TestCopyPreconditions(t *testing.T) {
	e, _ := newTestEngine(nil)

	t.Run("same canvas rejected", func(t *testing.T) {
		result, err := e.Copy(types.CanvasDesktop, types.CanvasDesktop)
		assert.ErrorIs(t, err, ErrSameCanvas)
		assert.False(t, result.Success)
	})

	t.Run("unknown canvas rejected", func(t *testing.T) {
		result, err := e.Copy(types.Canvas("tablet"), types.CanvasMobile)
		assert.ErrorIs(t, err, store.ErrInvalidCanvas)
		assert.False(t, result.Success)
	})

	t.Run("empty source succeeds untouched", func(t *testing.T) {
		e, st := newTestEngine(nil)
		st.Add("existing", types.CanvasMobile, nil)

		result, err := e.Copy(types.CanvasDesktop, types.CanvasMobile)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 0, result.CopiedCount)

		// Target canvas untouched by an empty copy
		_, mobile := st.Counts()
		assert.Equal(t, 1, mobile)
	})
}

func TestCopySemantics(t *testing.T) {
	t.Run("replaces target, never merges", func(t *testing.T) {
		e, st := newTestEngine(nil)
		st.Add("keepme", types.CanvasDesktop, nil)
		st.Add("stale-a", types.CanvasMobile, nil)
		st.Add("stale-b", types.CanvasMobile, nil)

		result, err := e.Copy(types.CanvasDesktop, types.CanvasMobile)
		require.NoError(t, err)
		assert.Equal(t, 1, result.CopiedCount)

		list := st.List(types.CanvasMobile)
		require.Len(t, list, 1)
		assert.Equal(t, "keepme", list[0].Name)
	})

	t.Run("ids regenerated, values and order preserved", func(t *testing.T) {
		e, st := newTestEngine(nil)
		first, _ := st.Add("hero", types.CanvasDesktop, &store.AddOptions{
			Props:          map[string]interface{}{"title": "hi"},
			StyleOverrides: map[string]string{"color": "blue"},
			Position:       &types.Position{X: 1, Y: 2},
			Size:           &types.Size{Width: 100, Height: 50},
		})
		second, _ := st.Add("cta", types.CanvasDesktop, nil)

		result, err := e.Copy(types.CanvasDesktop, types.CanvasMobile)
		require.NoError(t, err)
		require.Len(t, result.Instances, 2)

		a, b := result.Instances[0], result.Instances[1]
		assert.Equal(t, "hero", a.Name)
		assert.Equal(t, "cta", b.Name)
		assert.NotEqual(t, first.ID, a.ID)
		assert.NotEqual(t, second.ID, b.ID)
		assert.Equal(t, types.CanvasMobile, a.Canvas)
		assert.Equal(t, "hi", a.Props["title"])
		assert.Equal(t, "blue", a.StyleOverrides["color"])
		assert.Equal(t, &types.Position{X: 1, Y: 2}, a.Position)
		assert.Equal(t, &types.Size{Width: 100, Height: 50}, a.Size)
	})

	t.Run("source canvas untouched", func(t *testing.T) {
		e, st := newTestEngine(nil)
		st.Add("hero", types.CanvasDesktop, nil)

		_, err := e.Copy(types.CanvasDesktop, types.CanvasMobile)
		require.NoError(t, err)

		desktop, mobile := st.Counts()
		assert.Equal(t, 1, desktop)
		assert.Equal(t, 1, mobile)
	})

	t.Run("selection cleared", func(t *testing.T) {
		e, st := newTestEngine(nil)
		inst, _ := st.Add("hero", types.CanvasDesktop, nil)
		require.True(t, st.Select(&inst.ID))

		_, err := e.Copy(types.CanvasDesktop, types.CanvasMobile)
		require.NoError(t, err)
		assert.Nil(t, st.State().SelectedID)
	})
}

func TestCopyRemapping(t *testing.T) {
	registry := schema.NewRegistry()
	registry.Register("hero", &schema.Definition{
		Defaults: map[string]interface{}{
			"columns": 3,
			"label":   "default-label",
		},
		Overrides: map[string]map[string]interface{}{
			"mobile": {"columns": 1},
		},
	})

	t.Run("mobile overrides applied toward mobile", func(t *testing.T) {
		e, st := newTestEngine(registry)
		st.Add("hero", types.CanvasDesktop, &store.AddOptions{
			Props: map[string]interface{}{"columns": 3, "label": "custom"},
		})

		result, err := e.Copy(types.CanvasDesktop, types.CanvasMobile)
		require.NoError(t, err)
		require.Len(t, result.Instances, 1)

		props := result.Instances[0].Props
		assert.Equal(t, 1, props["columns"], "mobile override wins")
		assert.Equal(t, "custom", props["label"], "non-conditional values carried")
	})

	t.Run("override values do not leak back to desktop", func(t *testing.T) {
		e, st := newTestEngine(registry)
		st.Add("hero", types.CanvasMobile, &store.AddOptions{
			Props: map[string]interface{}{"columns": 1, "label": "custom"},
		})

		result, err := e.Copy(types.CanvasMobile, types.CanvasDesktop)
		require.NoError(t, err)
		require.Len(t, result.Instances, 1)

		props := result.Instances[0].Props
		assert.Equal(t, 3, props["columns"], "desktop falls back to the default")
		assert.Equal(t, "custom", props["label"])
	})

	t.Run("round trip restores desktop values", func(t *testing.T) {
		e, st := newTestEngine(registry)
		st.Add("hero", types.CanvasDesktop, &store.AddOptions{
			Props: map[string]interface{}{"columns": 3, "label": "mine"},
		})

		_, err := e.Copy(types.CanvasDesktop, types.CanvasMobile)
		require.NoError(t, err)
		result, err := e.Copy(types.CanvasMobile, types.CanvasDesktop)
		require.NoError(t, err)

		props := result.Instances[0].Props
		assert.Equal(t, 3, props["columns"])
		assert.Equal(t, "mine", props["label"])
	})

	t.Run("widget without schema copies verbatim", func(t *testing.T) {
		e, st := newTestEngine(registry)
		st.Add("unregistered", types.CanvasDesktop, &store.AddOptions{
			Props: map[string]interface{}{"anything": "goes"},
		})

		result, err := e.Copy(types.CanvasDesktop, types.CanvasMobile)
		require.NoError(t, err)
		assert.Equal(t, "goes", result.Instances[0].Props["anything"])
	})
}

func TestCopyOverlap(t *testing.T) {
	e, st := newTestEngine(nil)
	st.Add("hero", types.CanvasDesktop, nil)

	assert.False(t, e.InProgress())
	_, err := e.Copy(types.CanvasDesktop, types.CanvasMobile)
	require.NoError(t, err)
	assert.False(t, e.InProgress(), "flag released after completion")
}
