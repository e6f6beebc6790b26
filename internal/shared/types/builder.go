package types

import "time"

// Canvas identifies one of the two placement surfaces
type Canvas string

const (
	CanvasDesktop Canvas = "desktop"
	CanvasMobile  Canvas = "mobile"
)

// Valid reports whether c names a known canvas
func (c Canvas) Valid() bool {
	return c == CanvasDesktop || c == CanvasMobile
}

// Other returns the opposite canvas
func (c Canvas) Other() Canvas {
	if c == CanvasDesktop {
		return CanvasMobile
	}
	return CanvasDesktop
}

// Position is a placement offset on a canvas
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is the rendered dimensions of a placed component
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ComponentInstance is a single placed, configured occurrence of a widget.
// Instances are created by the store and mutated only through its update
// operation; external readers always receive copies.
type ComponentInstance struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Canvas         Canvas                 `json:"canvas"`
	Props          map[string]interface{} `json:"props"`
	StyleOverrides map[string]string      `json:"style_overrides"`
	Position       *Position              `json:"position,omitempty"`
	Size           *Size                  `json:"size,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// Clone returns a deep copy of the instance
func (ci *ComponentInstance) Clone() ComponentInstance {
	c := *ci
	c.Props = CloneValueMap(ci.Props)
	c.StyleOverrides = CloneStringMap(ci.StyleOverrides)
	if ci.Position != nil {
		pos := *ci.Position
		c.Position = &pos
	}
	if ci.Size != nil {
		size := *ci.Size
		c.Size = &size
	}
	return c
}

// StateMetadata describes a builder state document
type StateMetadata struct {
	Version      int       `json:"version"`
	LastModified time.Time `json:"last_modified"`
	ProjectName  string    `json:"project_name,omitempty"`
}

// BuilderState holds both canvases and selection. An instance appears in
// exactly one of the two sequences.
type BuilderState struct {
	Desktop    []ComponentInstance `json:"desktop"`
	Mobile     []ComponentInstance `json:"mobile"`
	Metadata   StateMetadata       `json:"metadata"`
	SelectedID *string             `json:"selected_id,omitempty"`
}

// Clone returns a deep copy of the state
func (s *BuilderState) Clone() BuilderState {
	c := BuilderState{
		Desktop:  make([]ComponentInstance, len(s.Desktop)),
		Mobile:   make([]ComponentInstance, len(s.Mobile)),
		Metadata: s.Metadata,
	}
	for i := range s.Desktop {
		c.Desktop[i] = s.Desktop[i].Clone()
	}
	for i := range s.Mobile {
		c.Mobile[i] = s.Mobile[i].Clone()
	}
	if s.SelectedID != nil {
		id := *s.SelectedID
		c.SelectedID = &id
	}
	return c
}

// CanvasFor returns the sequence for the named canvas
func (s *BuilderState) CanvasFor(canvas Canvas) []ComponentInstance {
	if canvas == CanvasMobile {
		return s.Mobile
	}
	return s.Desktop
}

// CloneValueMap deep-copies a props mapping, descending into nested
// maps and slices produced by JSON decoding
func CloneValueMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	c := make(map[string]interface{}, len(m))
	for k, v := range m {
		c[k] = cloneValue(v)
	}
	return c
}

// CloneStringMap copies a flat string mapping
func CloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return CloneValueMap(t)
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}
