package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pagecraft/backend/internal/engine/cache"
	"github.com/pagecraft/backend/internal/engine/extract"
	"github.com/pagecraft/backend/internal/engine/resolver"
	"github.com/pagecraft/backend/internal/engine/sandbox"
	"github.com/pagecraft/backend/internal/infrastructure/logging"
	"github.com/pagecraft/backend/internal/infrastructure/monitoring"
	"github.com/pagecraft/backend/internal/shared/types"
)

// ErrNotRenderable indicates a bundle evaluated cleanly but exported
// nothing render-capable
var ErrNotRenderable = errors.New("bundle export is not a renderable unit")

// BundleProvider supplies named widget bundles. It is an external
// collaborator consumed through this narrow interface; fetching is the
// engine's only suspension point.
type BundleProvider interface {
	FetchBundle(ctx context.Context, widget string) ([]types.SourceArtifact, error)
	CheckExists(ctx context.Context, widget string) (*types.Existence, error)
}

// Engine turns widget names into renderable units: fetch the bundle,
// resolve its entry script, evaluate it in the sandbox, extract the
// unit, and memoize the outcome by content fingerprint.
type Engine struct {
	provider     BundleProvider
	evaluator    *sandbox.Evaluator
	cache        *cache.Cache
	metrics      *monitoring.Metrics
	logger       *logging.Logger
	fetchTimeout time.Duration
}

// Options configures engine construction
type Options struct {
	Provider     BundleProvider
	Evaluator    *sandbox.Evaluator
	Cache        *cache.Cache
	Metrics      *monitoring.Metrics
	Logger       *logging.Logger
	FetchTimeout time.Duration
}

// New creates a resolution engine
func New(opts Options) *Engine {
	if opts.Cache == nil {
		opts.Cache = cache.New()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	return &Engine{
		provider:     opts.Provider,
		evaluator:    opts.Evaluator,
		cache:        opts.Cache,
		metrics:      opts.Metrics,
		logger:       opts.Logger.Named("engine"),
		fetchTimeout: opts.FetchTimeout,
	}
}

// Render returns the renderable unit for a widget. Results are memoized
// by (widget, entry script content); a failed resolution is memoized too
// so known-bad content is not re-evaluated per request.
func (e *Engine) Render(ctx context.Context, widget string) (*extract.Unit, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	bundle, err := e.provider.FetchBundle(fetchCtx, widget)
	if err != nil {
		e.record("transport_error")
		return nil, fmt.Errorf("fetch bundle %q: %w", widget, err)
	}

	entry, err := resolver.EntryScript(bundle, widget)
	if err != nil {
		e.record("no_entry")
		return nil, fmt.Errorf("widget %q: %w", widget, err)
	}

	if unit, hit := e.cache.Get(widget, entry.Content); hit {
		if e.metrics != nil {
			e.metrics.CacheHits.Inc()
		}
		if unit == nil {
			return nil, fmt.Errorf("widget %q: %w", widget, ErrNotRenderable)
		}
		return unit, nil
	}
	if e.metrics != nil {
		e.metrics.CacheMisses.Inc()
	}

	start := time.Now()
	result, err := e.evaluator.Evaluate(ctx, entry, bundle)
	if e.metrics != nil {
		e.metrics.RecordEvaluation(time.Since(start), err)
	}
	if err != nil {
		// Memoize the failure: same content will fail the same way
		e.cache.Put(widget, entry.Content, nil)
		e.record("eval_error")
		e.logger.Warn("widget evaluation failed",
			zap.String("widget", widget),
			zap.Error(err),
		)
		return nil, err
	}

	unit := extract.Extract(result.VM, result.Exports)
	if unit == nil {
		e.cache.Put(widget, entry.Content, nil)
		e.record("not_renderable")
		return nil, fmt.Errorf("widget %q: %w", widget, ErrNotRenderable)
	}

	unit.Widget = widget
	e.cache.Put(widget, entry.Content, unit)
	e.record("ok")
	e.logger.Debug("widget resolved",
		zap.String("widget", widget),
		zap.Strings("modules", result.Modules),
		zap.Duration("duration", result.Duration),
	)
	return unit, nil
}

// CheckExists reports what a widget's bundle contains
func (e *Engine) CheckExists(ctx context.Context, widget string) (*types.Existence, error) {
	ctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()
	return e.provider.CheckExists(ctx, widget)
}

// Evict invalidates memoized units whose widget name contains the
// substring; used when a widget's bundle is replaced
func (e *Engine) Evict(widgetSubstring string) int {
	n := e.cache.Evict(widgetSubstring)
	if e.metrics != nil {
		e.metrics.CacheEvictions.Add(float64(n))
	}
	return n
}

// CacheStats exposes cache contents for diagnostics
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

func (e *Engine) record(outcome string) {
	if e.metrics != nil {
		e.metrics.RecordResolution(outcome)
	}
}
