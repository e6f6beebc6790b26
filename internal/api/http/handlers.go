package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pagecraft/backend/internal/domain/crosscopy"
	"github.com/pagecraft/backend/internal/domain/layout"
	"github.com/pagecraft/backend/internal/domain/schema"
	"github.com/pagecraft/backend/internal/domain/store"
	"github.com/pagecraft/backend/internal/engine"
	"github.com/pagecraft/backend/internal/infrastructure/logging"
	"github.com/pagecraft/backend/internal/providers/bundle"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	engine  *engine.Engine
	store   *store.Store
	copier  *crosscopy.Engine
	layouts *layout.Manager
	schemas *schema.Registry
	bundles bundle.Provider
	logger  *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(
	eng *engine.Engine,
	st *store.Store,
	copier *crosscopy.Engine,
	layouts *layout.Manager,
	schemas *schema.Registry,
	bundles bundle.Provider,
	logger *logging.Logger,
) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		engine:  eng,
		store:   st,
		copier:  copier,
		layouts: layouts,
		schemas: schemas,
		bundles: bundles,
		logger:  logger.Named("http"),
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Pagecraft Builder Backend",
		"version": "0.3.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	desktop, mobile := h.store.Counts()
	undo, redo := h.store.HistoryDepths()

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"store": gin.H{
			"desktop_components": desktop,
			"mobile_components":  mobile,
			"undo_depth":         undo,
			"redo_depth":         redo,
		},
		"cache":            h.engine.CacheStats(),
		"copy_in_progress": h.copier.InProgress(),
	})
}
