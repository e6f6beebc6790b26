package types

// ArtifactKind classifies a source artifact within a bundle
type ArtifactKind string

const (
	KindScript ArtifactKind = "script"
	KindStyle  ArtifactKind = "style"
)

// SourceArtifact is one file of a widget bundle, immutable once fetched
type SourceArtifact struct {
	FileName    string       `json:"file_name"`
	Kind        ArtifactKind `json:"kind"`
	Content     string       `json:"content"`
	GroupPrefix string       `json:"group_prefix"`
}

// Existence describes what a widget bundle contains without fetching it
type Existence struct {
	Exists      bool `json:"exists"`
	HasScript   bool `json:"has_script"`
	HasStyle    bool `json:"has_style"`
	HasSettings bool `json:"has_settings"`
}

// ScriptExtensions are the conventional extensions tried when resolving
// a script reference without one
var ScriptExtensions = []string{".js", ".jsx", ".ts", ".tsx"}

// StyleExtensions are the conventional extensions tried for style references
var StyleExtensions = []string{".css", ".scss"}

// ExtensionsFor returns the conventional extension list for a kind
func ExtensionsFor(kind ArtifactKind) []string {
	if kind == KindStyle {
		return StyleExtensions
	}
	return ScriptExtensions
}
