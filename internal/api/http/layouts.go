package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pagecraft/backend/internal/domain/layout"
)

// ListLayouts returns every stored project id
func (h *Handlers) ListLayouts(c *gin.Context) {
	ids, err := h.layouts.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"projects": ids})
}

// GetLayout returns a project's layout document. Unknown projects yield
// an empty document.
func (h *Handlers) GetLayout(c *gin.Context) {
	doc, err := h.layouts.Get(c.Param("project"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// SaveLayoutRequest carries a whole-document layout overwrite
type SaveLayoutRequest struct {
	Layouts  map[string]interface{} `json:"layouts"`
	ViewMode string                 `json:"view_mode"`
	Metadata map[string]interface{} `json:"metadata"`
}

// SaveLayout overwrites a project's layout document
func (h *Handlers) SaveLayout(c *gin.Context) {
	var req SaveLayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid layout payload"})
		return
	}

	doc := &layout.Document{
		ProjectID: c.Param("project"),
		Layouts:   req.Layouts,
		ViewMode:  req.ViewMode,
		Metadata:  req.Metadata,
	}
	if err := h.layouts.Save(doc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DeleteLayout removes a project's layout document
func (h *Handlers) DeleteLayout(c *gin.Context) {
	if err := h.layouts.Delete(c.Param("project")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("project")})
}
