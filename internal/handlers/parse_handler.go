package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AndrewDonelson/viola-flow/internal/models"
)

// CifraParser scrapes a chord sheet page
type CifraParser interface {
	Parse(ctx context.Context, pageURL string) (*models.ParsedCifra, error)
}

// ParseHandler exposes the scraper
type ParseHandler struct {
	parser CifraParser
}

// NewParseHandler creates a new parse handler
func NewParseHandler(parser CifraParser) *ParseHandler {
	return &ParseHandler{parser: parser}
}

// Parse scrapes ?url= and returns the parsed sheet
func (h *ParseHandler) Parse(c *gin.Context) {
	parsed, err := h.parser.Parse(c.Request.Context(), c.Query("url"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": parsed})
}
