// Package bundle supplies named widget bundles to the resolution
// engine. Bundles live on disk (uploaded widget directories) or behind
// a remote widget service; both are consumed through the same narrow
// interface.
package bundle

import (
	"context"
	"errors"

	"github.com/pagecraft/backend/internal/shared/types"
)

// ErrWidgetNotFound indicates no bundle exists for a widget name
var ErrWidgetNotFound = errors.New("widget bundle not found")

// Provider supplies widget bundles. Fetching is the engine's only
// suspension point and honors context cancellation.
type Provider interface {
	FetchBundle(ctx context.Context, widget string) ([]types.SourceArtifact, error)
	CheckExists(ctx context.Context, widget string) (*types.Existence, error)
}
