package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AndrewDonelson/viola-flow/internal/services"
)

const defaultKeepalive = 30 * time.Second

// ProgressHandler streams import progress
type ProgressHandler struct {
	broadcaster *services.ProgressBroadcaster
	keepalive   time.Duration
	log         *zap.Logger
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(broadcaster *services.ProgressBroadcaster, log *zap.Logger) *ProgressHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProgressHandler{
		broadcaster: broadcaster,
		keepalive:   defaultKeepalive,
		log:         log,
	}
}

// StreamProgress streams import events via Server-Sent Events.
// ?batchId= limits the stream to one batch.
func (h *ProgressHandler) StreamProgress(c *gin.Context) {
	batchID := c.Query("batchId")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	clientChan := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(clientChan)

	clientGone := c.Request.Context().Done()

	fmt.Fprintf(c.Writer, "event: connected\ndata: {\"timestamp\":%q}\n\n", time.Now().Format(time.RFC3339))
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-clientGone:
			h.log.Debug("Client disconnected from import stream")
			return
		case event, ok := <-clientChan:
			if !ok {
				return
			}
			if batchID != "" && event.BatchID != batchID {
				continue
			}
			data := services.FormatSSE(event)
			if data == "" {
				continue
			}
			if _, err := c.Writer.WriteString(data); err != nil {
				h.log.Debug("Error writing SSE data", zap.Error(err))
				return
			}
			c.Writer.Flush()
		case <-ticker.C:
			c.Writer.WriteString(": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}

// GetStats returns broadcaster statistics
func (h *ProgressHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connectedClients": h.broadcaster.ClientCount(),
		"timestamp":        time.Now(),
	})
}
