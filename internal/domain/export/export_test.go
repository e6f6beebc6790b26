package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagecraft/backend/internal/domain/schema"
	"github.com/pagecraft/backend/internal/shared/types"
)

func sampleState() types.BuilderState {
	return types.BuilderState{
		Desktop: []types.ComponentInstance{
			{
				ID:             "cmp_1",
				Name:           "hero",
				Canvas:         types.CanvasDesktop,
				Props:          map[string]interface{}{"title": "welcome"},
				StyleOverrides: map[string]string{"color": "blue"},
				Position:       &types.Position{X: 0, Y: 0},
				Size:           &types.Size{Width: 1200, Height: 400},
			},
			{
				ID:     "cmp_2",
				Name:   "cta",
				Canvas: types.CanvasDesktop,
				Size:   &types.Size{Width: 200, Height: 60},
			},
		},
		Mobile: []types.ComponentInstance{
			{ID: "cmp_3", Name: "hero", Canvas: types.CanvasMobile},
		},
		Metadata: types.StateMetadata{Version: 7, ProjectName: "landing"},
	}
}

func TestBuild(t *testing.T) {
	doc := Build(sampleState(), nil)

	assert.Equal(t, "landing", doc.Project.Metadata.Name)
	assert.Equal(t, 7, doc.Project.Metadata.Version)
	assert.False(t, doc.Project.Metadata.ExportedAt.IsZero())
	assert.Len(t, doc.Components, 3)

	stats := doc.Project.Statistics
	assert.Equal(t, 3, stats.TotalComponents)
	assert.Equal(t, 2, stats.ByCanvas["desktop"])
	assert.Equal(t, 1, stats.ByCanvas["mobile"])
	assert.Equal(t, 2, stats.ByWidget["hero"])
	assert.InDelta(t, 700.0, stats.MeanWidth, 0.001)
	assert.InDelta(t, 230.0, stats.MeanHeight, 0.001)
}

func TestBuildEmbedsSchemas(t *testing.T) {
	registry := schema.NewRegistry()
	registry.Register("hero", &schema.Definition{
		Defaults: map[string]interface{}{"columns": 3},
	})

	doc := Build(sampleState(), registry)
	require.Contains(t, doc.Project.Metadata.Schemas, "hero")
	assert.NotContains(t, doc.Project.Metadata.Schemas, "cta",
		"only widgets with registered schemas are embedded")
}

func TestRoundTrip(t *testing.T) {
	doc := Build(sampleState(), nil)
	data, err := Marshal(doc)
	require.NoError(t, err)

	state, err := Parse(data)
	require.NoError(t, err)

	require.Len(t, state.Desktop, 2)
	require.Len(t, state.Mobile, 1)
	assert.Equal(t, "landing", state.Metadata.ProjectName)
	assert.Equal(t, 7, state.Metadata.Version)

	hero := state.Desktop[0]
	assert.Equal(t, "cmp_1", hero.ID)
	assert.Equal(t, "welcome", hero.Props["title"])
	assert.Equal(t, "blue", hero.StyleOverrides["color"])
	assert.Equal(t, &types.Position{X: 0, Y: 0}, hero.Position)
	assert.Equal(t, &types.Size{Width: 1200, Height: 400}, hero.Size)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	assert.Error(t, err)
}
