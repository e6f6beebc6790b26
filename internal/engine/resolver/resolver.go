package resolver

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/pagecraft/backend/internal/shared/types"
)

// ErrNotFound indicates no artifact satisfies a reference. Callers must
// treat this as recoverable; an unmatched import degrades to a
// placeholder module, never a crash.
var ErrNotFound = errors.New("no artifact matches reference")

// Resolve answers which artifact in the bundle satisfies a reference
// name for the requested kind. Matching rules, first match wins:
//
//  1. Exact match on file name and kind.
//  2. Reference with each conventional extension for the kind appended.
//  3. Reference with its own extension stripped, then rule 2 again.
//  4. Fuzzy fallback: any artifact of the kind whose extension-stripped
//     file name case-insensitively contains, or is contained by, the
//     reference name.
//
// The result is deterministic: bundle order decides ties within a rule.
func Resolve(bundle []types.SourceArtifact, ref string, kind types.ArtifactKind) (*types.SourceArtifact, error) {
	ref = normalizeRef(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrNotFound)
	}

	// Rule 1: exact name and kind
	for i := range bundle {
		if bundle[i].Kind == kind && bundle[i].FileName == ref {
			return &bundle[i], nil
		}
	}

	// Rule 2: conventional extensions appended
	if art := matchWithExtensions(bundle, ref, kind); art != nil {
		return art, nil
	}

	// Rule 3: strip the reference's own extension, retry rule 2
	if stripped := stripExtension(ref); stripped != ref {
		for i := range bundle {
			if bundle[i].Kind == kind && bundle[i].FileName == stripped {
				return &bundle[i], nil
			}
		}
		if art := matchWithExtensions(bundle, stripped, kind); art != nil {
			return art, nil
		}
	}

	// Rule 4: fuzzy containment on extension-stripped names
	needle := strings.ToLower(stripExtension(ref))
	for i := range bundle {
		if bundle[i].Kind != kind {
			continue
		}
		name := strings.ToLower(stripExtension(bundle[i].FileName))
		if name == "" {
			continue
		}
		if strings.Contains(name, needle) || strings.Contains(needle, name) {
			return &bundle[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %q (%s)", ErrNotFound, ref, kind)
}

// EntryScript picks the bundle's entry point: an "index" script if one
// resolves, the script named after the widget otherwise, else the first
// script in bundle order.
func EntryScript(bundle []types.SourceArtifact, widget string) (*types.SourceArtifact, error) {
	if art, err := Resolve(bundle, "index", types.KindScript); err == nil {
		return art, nil
	}
	if art, err := Resolve(bundle, widget, types.KindScript); err == nil {
		return art, nil
	}
	for i := range bundle {
		if bundle[i].Kind == types.KindScript {
			return &bundle[i], nil
		}
	}
	return nil, fmt.Errorf("%w: bundle has no scripts", ErrNotFound)
}

func matchWithExtensions(bundle []types.SourceArtifact, ref string, kind types.ArtifactKind) *types.SourceArtifact {
	for _, ext := range types.ExtensionsFor(kind) {
		candidate := ref + ext
		for i := range bundle {
			if bundle[i].Kind == kind && bundle[i].FileName == candidate {
				return &bundle[i]
			}
		}
	}
	return nil
}

// normalizeRef drops relative path prefixes so "./button" and "button"
// resolve identically
func normalizeRef(ref string) string {
	ref = strings.TrimSpace(ref)
	for strings.HasPrefix(ref, "./") {
		ref = ref[2:]
	}
	ref = strings.TrimPrefix(ref, "/")
	return ref
}

func stripExtension(name string) string {
	ext := path.Ext(name)
	if ext == "" {
		return name
	}
	return strings.TrimSuffix(name, ext)
}
