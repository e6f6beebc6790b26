// Package export builds the canonical at-rest representation of a
// builder state snapshot: a JSON document that round-trips losslessly
// for props, style overrides, position, and size.
package export

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"gonum.org/v1/gonum/stat"

	"github.com/pagecraft/backend/internal/domain/schema"
	"github.com/pagecraft/backend/internal/shared/types"
)

// Document is the export artifact
type Document struct {
	Project    Project                   `json:"project"`
	Components []types.ComponentInstance `json:"components"`
}

// Project holds document metadata and derived statistics
type Project struct {
	Metadata   Metadata   `json:"metadata"`
	Statistics Statistics `json:"statistics"`
}

// Metadata describes the exported snapshot
type Metadata struct {
	Name       string                            `json:"name,omitempty"`
	Version    int                               `json:"version"`
	ExportedAt time.Time                         `json:"exported_at"`
	Schemas    map[string]map[string]interface{} `json:"schemas,omitempty"`
}

// Statistics summarizes the composition
type Statistics struct {
	TotalComponents int            `json:"total_components"`
	ByCanvas        map[string]int `json:"by_canvas"`
	ByWidget        map[string]int `json:"by_widget"`
	MeanWidth       float64        `json:"mean_width,omitempty"`
	StdDevWidth     float64        `json:"stddev_width,omitempty"`
	MeanHeight      float64        `json:"mean_height,omitempty"`
	StdDevHeight    float64        `json:"stddev_height,omitempty"`
}

// Build produces the export document for a state snapshot. Schemas, when
// available, are embedded so a consumer can reproduce defaults.
func Build(state types.BuilderState, schemas *schema.Registry) *Document {
	components := make([]types.ComponentInstance, 0, len(state.Desktop)+len(state.Mobile))
	for i := range state.Desktop {
		components = append(components, state.Desktop[i].Clone())
	}
	for i := range state.Mobile {
		components = append(components, state.Mobile[i].Clone())
	}

	doc := &Document{
		Project: Project{
			Metadata: Metadata{
				Name:       state.Metadata.ProjectName,
				Version:    state.Metadata.Version,
				ExportedAt: time.Now(),
			},
			Statistics: computeStatistics(components),
		},
		Components: components,
	}

	if schemas != nil {
		snap := make(map[string]map[string]interface{})
		for _, c := range components {
			if _, seen := snap[c.Name]; seen {
				continue
			}
			if s, ok := schemas.SchemaFor(c.Name); ok {
				snap[c.Name] = s.Values()
			}
		}
		if len(snap) > 0 {
			doc.Project.Metadata.Schemas = snap
		}
	}

	return doc
}

// Marshal serializes the document
func Marshal(doc *Document) ([]byte, error) {
	data, err := sonic.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return data, nil
}

// Parse restores a builder state from an export document. The inverse of
// Build for props, style overrides, position, and size.
func Parse(data []byte) (types.BuilderState, error) {
	var doc Document
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return types.BuilderState{}, fmt.Errorf("unmarshal export: %w", err)
	}

	state := types.BuilderState{
		Desktop: []types.ComponentInstance{},
		Mobile:  []types.ComponentInstance{},
		Metadata: types.StateMetadata{
			ProjectName:  doc.Project.Metadata.Name,
			Version:      doc.Project.Metadata.Version,
			LastModified: doc.Project.Metadata.ExportedAt,
		},
	}
	for _, c := range doc.Components {
		switch c.Canvas {
		case types.CanvasMobile:
			state.Mobile = append(state.Mobile, c)
		default:
			state.Desktop = append(state.Desktop, c)
		}
	}
	return state, nil
}

func computeStatistics(components []types.ComponentInstance) Statistics {
	s := Statistics{
		TotalComponents: len(components),
		ByCanvas:        map[string]int{},
		ByWidget:        map[string]int{},
	}

	var widths, heights []float64
	for _, c := range components {
		s.ByCanvas[string(c.Canvas)]++
		s.ByWidget[c.Name]++
		if c.Size != nil {
			widths = append(widths, float64(c.Size.Width))
			heights = append(heights, float64(c.Size.Height))
		}
	}

	if len(widths) > 0 {
		s.MeanWidth = stat.Mean(widths, nil)
		s.MeanHeight = stat.Mean(heights, nil)
	}
	if len(widths) > 1 {
		s.StdDevWidth = stat.StdDev(widths, nil)
		s.StdDevHeight = stat.StdDev(heights, nil)
	}
	return s
}
