package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pagecraft/backend/internal/engine"
	"github.com/pagecraft/backend/internal/engine/sandbox"
	"github.com/pagecraft/backend/internal/providers/bundle"
	"github.com/pagecraft/backend/internal/shared/types"
)

// ResolveWidget resolves a widget name to a renderable unit. A widget
// that fails to evaluate reports its error inline; the canvas keeps
// rendering everything else.
func (h *Handlers) ResolveWidget(c *gin.Context) {
	widget := c.Param("name")

	unit, err := h.engine.Render(c.Request.Context(), widget)
	if err != nil {
		var evalErr *sandbox.EvalError
		switch {
		case errors.As(err, &evalErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"widget":   widget,
				"error":    "evaluation_failed",
				"artifact": evalErr.Artifact,
				"message":  evalErr.Cause.Error(),
			})
		case errors.Is(err, engine.ErrNotRenderable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"widget":  widget,
				"error":   "not_renderable",
				"message": err.Error(),
			})
		case errors.Is(err, bundle.ErrWidgetNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"widget": widget,
				"error":  "widget_not_found",
			})
		default:
			c.JSON(http.StatusBadGateway, gin.H{
				"widget":  widget,
				"error":   "bundle_fetch_failed",
				"message": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"widget": unit.Widget,
		"kind":   unit.Kind,
	})
}

// CheckWidget reports what a widget's bundle contains
func (h *Handlers) CheckWidget(c *gin.Context) {
	widget := c.Param("name")
	existence, err := h.engine.CheckExists(c.Request.Context(), widget)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, existence)
}

// EvictCacheRequest selects cache entries by widget-name substring
type EvictCacheRequest struct {
	WidgetSubstring string `json:"widget_substring"`
}

// EvictCache invalidates memoized units, typically after a widget's
// bundle is replaced
func (h *Handlers) EvictCache(c *gin.Context) {
	var req EvictCacheRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid eviction request"})
		return
	}
	evicted := h.engine.Evict(req.WidgetSubstring)
	c.JSON(http.StatusOK, gin.H{"evicted": evicted})
}

// CacheStats exposes unit cache contents
func (h *Handlers) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.CacheStats())
}

// DownloadRequest names bundles for archive download
type DownloadRequest struct {
	Widgets        []string                          `json:"widgets" binding:"required"`
	PropsByName    map[string]map[string]interface{} `json:"props_by_name"`
	LanguageByName map[string]string                 `json:"language_by_name"`
	Canvas         string                            `json:"canvas"`
}

// DownloadBundles streams a gzip tarball of the named widget bundles
func (h *Handlers) DownloadBundles(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid download request"})
		return
	}
	if len(req.Widgets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no widgets requested"})
		return
	}

	filename := fmt.Sprintf("bundles-%s.tar.gz", time.Now().Format("20060102-150405"))
	c.Header("Content-Type", "application/gzip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	opts := &bundle.DownloadOptions{
		PropsByName:    req.PropsByName,
		LanguageByName: req.LanguageByName,
		Canvas:         types.Canvas(req.Canvas),
	}
	if err := bundle.WriteArchive(c.Request.Context(), c.Writer, h.bundles, req.Widgets, opts); err != nil {
		// Headers are possibly flushed; log and terminate the stream
		h.logger.Error("bundle archive failed: " + err.Error())
		c.Abort()
	}
}
