package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pagecraft/backend/internal/domain/crosscopy"
	"github.com/pagecraft/backend/internal/domain/store"
	"github.com/pagecraft/backend/internal/shared/types"
)

// GetState returns the full builder state document
func (h *Handlers) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.State())
}

// AddComponentRequest places a new component on a canvas
type AddComponentRequest struct {
	Name           string                 `json:"name" binding:"required"`
	Canvas         string                 `json:"canvas" binding:"required"`
	Props          map[string]interface{} `json:"props"`
	StyleOverrides map[string]string      `json:"style_overrides"`
	Position       *types.Position        `json:"position"`
	Size           *types.Size            `json:"size"`
}

// AddComponent handles component placement
func (h *Handlers) AddComponent(c *gin.Context) {
	var req AddComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and canvas are required"})
		return
	}

	instance, err := h.store.Add(req.Name, types.Canvas(req.Canvas), &store.AddOptions{
		Props:          sanitizeProps(req.Props),
		StyleOverrides: req.StyleOverrides,
		Position:       req.Position,
		Size:           req.Size,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, instance)
}

// UpdateComponentRequest carries partial fields for an update
type UpdateComponentRequest struct {
	Name           *string                `json:"name"`
	Props          map[string]interface{} `json:"props"`
	StyleOverrides map[string]string      `json:"style_overrides"`
	Position       *types.Position        `json:"position"`
	Size           *types.Size            `json:"size"`
}

// UpdateComponent handles partial instance updates
func (h *Handlers) UpdateComponent(c *gin.Context) {
	componentID := c.Param("id")

	var req UpdateComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update request"})
		return
	}

	ok := h.store.Update(componentID, store.Patch{
		Name:           req.Name,
		Props:          sanitizeProps(req.Props),
		StyleOverrides: req.StyleOverrides,
		Position:       req.Position,
		Size:           req.Size,
	})
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "component not found"})
		return
	}

	instance, _ := h.store.Find(componentID)
	c.JSON(http.StatusOK, instance)
}

// RemoveComponent handles instance deletion
func (h *Handlers) RemoveComponent(c *gin.Context) {
	componentID := c.Param("id")
	if !h.store.Remove(componentID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "component not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": componentID})
}

// SelectComponentRequest names the instance to select; a null id clears
// the selection
type SelectComponentRequest struct {
	ComponentID *string `json:"component_id"`
}

// SelectComponent handles selection changes
func (h *Handlers) SelectComponent(c *gin.Context) {
	var req SelectComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid selection request"})
		return
	}
	if !h.store.Select(req.ComponentID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "component not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": req.ComponentID})
}

// Undo restores the previous state snapshot
func (h *Handlers) Undo(c *gin.Context) {
	if !h.store.Undo() {
		c.JSON(http.StatusConflict, gin.H{"error": "nothing to undo"})
		return
	}
	c.JSON(http.StatusOK, h.store.State())
}

// Redo reapplies the most recently undone state
func (h *Handlers) Redo(c *gin.Context) {
	if !h.store.Redo() {
		c.JSON(http.StatusConflict, gin.H{"error": "nothing to redo"})
		return
	}
	c.JSON(http.StatusOK, h.store.State())
}

// ClearState resets both canvases
func (h *Handlers) ClearState(c *gin.Context) {
	h.store.Clear()
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// CopyCanvasRequest names the source and target surfaces
type CopyCanvasRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

// CopyCanvas replaces the target canvas with remapped clones of the
// source canvas
func (h *Handlers) CopyCanvas(c *gin.Context) {
	var req CopyCanvasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	result, err := h.copier.Copy(types.Canvas(req.From), types.Canvas(req.To))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, crosscopy.ErrInProgress) {
			status = http.StatusConflict
		}
		c.JSON(status, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
