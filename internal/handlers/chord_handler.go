package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AndrewDonelson/viola-flow/internal/apperr"
	"github.com/AndrewDonelson/viola-flow/pkg/chords"
)

// ChordHandler serves chord diagrams
type ChordHandler struct{}

// NewChordHandler creates a new chord handler
func NewChordHandler() *ChordHandler {
	return &ChordHandler{}
}

// List returns every chord with a diagram
func (h *ChordHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chords": chords.Names()})
}

// GetShape returns the fingering of one chord
func (h *ChordHandler) GetShape(c *gin.Context) {
	name := chords.Normalize(c.Param("name"))
	shape, ok := chords.Lookup(name)
	if !ok {
		respondError(c, apperr.NotFound("Unknown chord "+name))
		return
	}

	c.JSON(http.StatusOK, gin.H{"name": name, "shape": shape})
}

// GetSVG renders a chord diagram; unknown chords get a placeholder
func (h *ChordHandler) GetSVG(c *gin.Context) {
	dark := c.Query("theme") == "dark"
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/svg+xml", []byte(chords.SVG(c.Param("name"), dark)))
}
