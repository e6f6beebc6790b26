package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagecraft/backend/internal/shared/types"
)

func TestDefinition(t *testing.T) {
	def := &Definition{
		Defaults: map[string]interface{}{"columns": 3, "label": "hi"},
		Overrides: map[string]map[string]interface{}{
			"mobile": {"columns": 1},
		},
	}

	t.Run("defaults are copies", func(t *testing.T) {
		got := def.DefaultValues()
		got["columns"] = 99
		assert.Equal(t, 3, def.Defaults["columns"])
	})

	t.Run("overrides scoped by canvas", func(t *testing.T) {
		assert.Equal(t, 1, def.CanvasOverrides(types.CanvasMobile)["columns"])
		assert.Empty(t, def.CanvasOverrides(types.CanvasDesktop))
	})

	t.Run("values snapshot", func(t *testing.T) {
		vals := def.Values()
		assert.Contains(t, vals, "defaults")
		assert.Contains(t, vals, "overrides")
	})

	t.Run("no overrides section omitted", func(t *testing.T) {
		bare := &Definition{Defaults: map[string]interface{}{"x": 1}}
		assert.Nil(t, bare.CanvasOverrides(types.CanvasMobile))
		assert.NotContains(t, bare.Values(), "overrides")
	})
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	t.Run("missing widget", func(t *testing.T) {
		_, ok := r.SchemaFor("ghost")
		assert.False(t, ok)
	})

	t.Run("register and fetch", func(t *testing.T) {
		def := &Definition{Defaults: map[string]interface{}{"a": 1}}
		r.Register("hero", def)

		got, ok := r.SchemaFor("hero")
		require.True(t, ok)
		assert.Equal(t, 1, got.DefaultValues()["a"])
	})

	t.Run("register replaces", func(t *testing.T) {
		r.Register("hero", &Definition{Defaults: map[string]interface{}{"a": 2}})
		got, _ := r.SchemaFor("hero")
		assert.Equal(t, 2, got.DefaultValues()["a"])
	})

	t.Run("widgets listed", func(t *testing.T) {
		r.Register("card", &Definition{})
		assert.ElementsMatch(t, []string{"hero", "card"}, r.Widgets())
	})
}
