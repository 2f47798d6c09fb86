package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AndrewDonelson/viola-flow/internal/database"
	"github.com/AndrewDonelson/viola-flow/internal/models"
)

// PreferencesHandler handles UI preference requests
type PreferencesHandler struct {
	repo *database.PreferencesRepository
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(repo *database.PreferencesRepository) *PreferencesHandler {
	return &PreferencesHandler{repo: repo}
}

// Get returns the preferences
func (h *PreferencesHandler) Get(c *gin.Context) {
	prefs, err := h.repo.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// Update replaces the preferences
func (h *PreferencesHandler) Update(c *gin.Context) {
	var prefs models.Preferences
	if err := bindJSON(c, &prefs); err != nil {
		respondError(c, err)
		return
	}

	if err := h.repo.Update(c.Request.Context(), &prefs); err != nil {
		respondError(c, err)
		return
	}

	// Return updated preferences
	updated, err := h.repo.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
