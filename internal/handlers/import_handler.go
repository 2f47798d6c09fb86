package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AndrewDonelson/viola-flow/internal/apperr"
	"github.com/AndrewDonelson/viola-flow/internal/importer"
	"github.com/AndrewDonelson/viola-flow/internal/models"
	"github.com/AndrewDonelson/viola-flow/pkg/logger"
)

// BatchQueue starts import batches in the background
type BatchQueue interface {
	Enqueue(batchID string) (models.ImportBatch, error)
}

// ImportHandler manages batch imports
type ImportHandler struct {
	importer *importer.Importer
	queue    BatchQueue
	host     string
	logsDir  string
}

// NewImportHandler creates a new import handler. host filters pasted lines.
func NewImportHandler(im *importer.Importer, queue BatchQueue, host, logsDir string) *ImportHandler {
	return &ImportHandler{
		importer: im,
		queue:    queue,
		host:     host,
		logsDir:  logsDir,
	}
}

// rowRequest may be blank; blank rows stay pending and are never processed
type rowRequest struct {
	CifraURL   string `json:"cifraUrl"`
	YoutubeURL string `json:"youtubeUrl"`
}

// rowsRequest accepts explicit rows, pasted spreadsheet text, or both
type rowsRequest struct {
	Rows []rowRequest `json:"rows"`
	Text string       `json:"text"`
}

func (r rowsRequest) inputs(host string) []importer.RowInput {
	inputs := make([]importer.RowInput, 0, len(r.Rows))
	for _, row := range r.Rows {
		inputs = append(inputs, importer.RowInput{CifraURL: row.CifraURL, YoutubeURL: row.YoutubeURL})
	}
	return append(inputs, importer.ParsePaste(r.Text, host)...)
}

type resolveRequest struct {
	Decision models.DuplicateDecision `json:"decision" binding:"required"`
}

func (h *ImportHandler) readRows(c *gin.Context) ([]importer.RowInput, error) {
	var req rowsRequest
	if err := bindJSON(c, &req); err != nil {
		return nil, err
	}
	rows := req.inputs(h.host)
	if len(rows) == 0 {
		return nil, apperr.InvalidInput("No rows to import")
	}
	return rows, nil
}

// Create registers a batch and starts it
func (h *ImportHandler) Create(c *gin.Context) {
	rows, err := h.readRows(c)
	if err != nil {
		respondError(c, err)
		return
	}

	registry := h.importer.Registry()
	batch := registry.Create(rows)

	started, err := h.queue.Enqueue(batch.ID)
	if err != nil {
		_ = registry.Delete(batch.ID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, started)
}

// List returns every batch
func (h *ImportHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.importer.Registry().List())
}

// Get returns one batch
func (h *ImportHandler) Get(c *gin.Context) {
	batch, err := h.importer.Registry().Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, batch)
}

// AddRows appends rows to an idle batch without starting it
func (h *ImportHandler) AddRows(c *gin.Context) {
	rows, err := h.readRows(c)
	if err != nil {
		respondError(c, err)
		return
	}

	batch, err := h.importer.Registry().AddRows(c.Param("id"), rows)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, batch)
}

// RemoveRow drops one row
func (h *ImportHandler) RemoveRow(c *gin.Context) {
	batch, err := h.importer.Registry().RemoveRow(c.Param("id"), c.Param("rowId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, batch)
}

// Start re-runs every eligible row of a batch
func (h *ImportHandler) Start(c *gin.Context) {
	batch, err := h.queue.Enqueue(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, batch)
}

// Resolve settles a duplicate row with "overwrite" or "skip"
func (h *ImportHandler) Resolve(c *gin.Context) {
	var req resolveRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	batch, err := h.importer.Resolve(c.Request.Context(), c.Param("id"), c.Param("rowId"), req.Decision)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, batch)
}

// Delete clears a batch
func (h *ImportHandler) Delete(c *gin.Context) {
	if err := h.importer.Registry().Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetLog returns the import log of a batch as plain text
func (h *ImportHandler) GetLog(c *gin.Context) {
	// ids are UUIDs; anything else must not reach the filesystem
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, importer.ErrBatchNotFound)
		return
	}

	content, err := os.ReadFile(logger.BatchLogPath(h.logsDir, id.String()))
	if errors.Is(err, fs.ErrNotExist) {
		respondError(c, apperr.NotFound("No import log found for this batch"))
		return
	}
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", content)
}
