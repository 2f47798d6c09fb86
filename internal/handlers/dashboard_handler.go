package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AndrewDonelson/viola-flow/internal/database"
	"github.com/AndrewDonelson/viola-flow/internal/importer"
	"github.com/AndrewDonelson/viola-flow/internal/models"
	"github.com/AndrewDonelson/viola-flow/internal/services"
)

type DashboardHandler struct {
	songs       *database.SongRepository
	registry    *importer.Registry
	broadcaster *services.ProgressBroadcaster
	now         func() time.Time
}

func NewDashboardHandler(songs *database.SongRepository, registry *importer.Registry, broadcaster *services.ProgressBroadcaster) *DashboardHandler {
	return &DashboardHandler{
		songs:       songs,
		registry:    registry,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

// ImportStats counts the batches currently held in memory
type ImportStats struct {
	Batches        int            `json:"batches"`
	RunningBatches int            `json:"runningBatches"`
	Rows           map[string]int `json:"rows"`
}

type DashboardStats struct {
	Library          *models.LibraryStats `json:"library"`
	Imports          ImportStats          `json:"imports"`
	ConnectedClients int                  `json:"connectedClients"`
}

// GetStats returns library and import statistics
func (h *DashboardHandler) GetStats(c *gin.Context) {
	now := h.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	library, err := h.songs.Stats(c.Request.Context(), today)
	if err != nil {
		respondError(c, err)
		return
	}

	stats := DashboardStats{
		Library: library,
		Imports: importStats(h.registry.List()),
	}
	if h.broadcaster != nil {
		stats.ConnectedClients = h.broadcaster.ClientCount()
	}

	c.JSON(http.StatusOK, stats)
}

func importStats(batches []models.ImportBatch) ImportStats {
	s := ImportStats{
		Batches: len(batches),
		Rows: map[string]int{
			models.ImportPending: 0,
			models.ImportLoading: 0,
			models.ImportDone:    0,
			models.ImportError:   0,
			models.ImportExists:  0,
		},
	}
	for _, b := range batches {
		if b.Running {
			s.RunningBatches++
		}
		for _, row := range b.Rows {
			s.Rows[row.Status]++
		}
	}
	return s
}
