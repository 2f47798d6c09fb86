package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AndrewDonelson/viola-flow/internal/apperr"
	"github.com/AndrewDonelson/viola-flow/internal/database"
	"github.com/AndrewDonelson/viola-flow/internal/models"
	"github.com/AndrewDonelson/viola-flow/pkg/chords"
	"github.com/AndrewDonelson/viola-flow/pkg/sheet"
)

// SongHandler handles song-related requests
type SongHandler struct {
	repo *database.SongRepository
}

// NewSongHandler creates a new song handler
func NewSongHandler(repo *database.SongRepository) *SongHandler {
	return &SongHandler{repo: repo}
}

// GetAll returns all songs, most recently updated first
func (h *SongHandler) GetAll(c *gin.Context) {
	songs, err := h.repo.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if songs == nil {
		songs = []models.Song{}
	}

	c.JSON(http.StatusOK, songs)
}

// GetByID returns a song by ID
func (h *SongHandler) GetByID(c *gin.Context) {
	id, err := songID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	song, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, song)
}

// Create creates a new song
func (h *SongHandler) Create(c *gin.Context) {
	var in models.SongInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}

	song := in.Song()
	if err := h.repo.Create(c.Request.Context(), song); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, song)
}

// Update applies a partial update
func (h *SongHandler) Update(c *gin.Context) {
	id, err := songID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var patch models.SongPatch
	if err := bindJSON(c, &patch); err != nil {
		respondError(c, err)
		return
	}
	if err := patch.Validate(); err != nil {
		respondError(c, apperr.InvalidInput(err.Error()))
		return
	}

	song, err := h.repo.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, song)
}

// Delete deletes a song
func (h *SongHandler) Delete(c *gin.Context) {
	id, err := songID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Find looks up a song by title and artist. A miss is a null body, not a 404.
func (h *SongHandler) Find(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	artist := strings.TrimSpace(c.Query("artist"))
	if title == "" || artist == "" {
		respondError(c, apperr.InvalidInput("title and artist are required"))
		return
	}

	song, err := h.repo.FindByTitleAndArtist(c.Request.Context(), title, artist)
	if err != nil {
		respondError(c, err)
		return
	}
	if song == nil {
		c.JSON(http.StatusOK, nil)
		return
	}

	c.JSON(http.StatusOK, song)
}

type sheetResponse struct {
	SongID           int64 `json:"songId"`
	HideTabs         bool  `json:"hideTabs"`
	ScrollIntervalMs int64 `json:"scrollIntervalMs"`
	*sheet.Sheet
}

// GetSheet returns the analyzed chord sheet. ?hideTabs overrides the stored flag.
func (h *SongHandler) GetSheet(c *gin.Context) {
	id, err := songID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	song, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	hideTabs := song.HideTabs
	if v := c.Query("hideTabs"); v != "" {
		if hideTabs, err = strconv.ParseBool(v); err != nil {
			respondError(c, apperr.InvalidInput("hideTabs must be a boolean"))
			return
		}
	}

	content := song.Content
	if hideTabs {
		content = sheet.HideTabs(content)
	}

	c.JSON(http.StatusOK, sheetResponse{
		SongID:           song.ID,
		HideTabs:         hideTabs,
		ScrollIntervalMs: sheet.ScrollInterval(song.Speed).Milliseconds(),
		Sheet:            sheet.Analyze(content),
	})
}

type songChord struct {
	Name       string `json:"name"`
	HasDiagram bool   `json:"hasDiagram"`
}

// GetChords lists the chords a song uses
func (h *SongHandler) GetChords(c *gin.Context) {
	id, err := songID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	song, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	names := sheet.Chords(song.Content)
	out := make([]songChord, 0, len(names))
	for _, n := range names {
		out = append(out, songChord{Name: n, HasDiagram: chords.Has(n)})
	}

	c.JSON(http.StatusOK, gin.H{"songId": song.ID, "chords": out})
}
