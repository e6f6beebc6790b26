package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pagecraft/backend/internal/domain/export"
)

// ExportState serializes the current builder state as a portable
// document with embedded schemas and composition statistics
func (h *Handlers) ExportState(c *gin.Context) {
	doc := export.Build(h.store.State(), h.schemas)
	data, err := export.Marshal(doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// ImportState replaces the builder state from an export document. The
// previous state stays reachable through undo.
func (h *Handlers) ImportState(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	state, err := export.Parse(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.store.Replace(state)
	desktop, mobile := h.store.Counts()
	c.JSON(http.StatusOK, gin.H{
		"imported": true,
		"desktop":  desktop,
		"mobile":   mobile,
	})
}
