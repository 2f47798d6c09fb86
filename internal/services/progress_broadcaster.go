package services

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/AndrewDonelson/viola-flow/internal/models"
)

// ImportEvent is one row transition in an import batch
type ImportEvent struct {
	BatchID   string    `json:"batchId"`
	RowID     string    `json:"rowId,omitempty"`
	Index     int       `json:"index"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	SongID    *int64    `json:"songId,omitempty"`
	Current   int       `json:"current"`
	Total     int       `json:"total"`
	Running   bool      `json:"running"`
	Timestamp time.Time `json:"timestamp"`
}

// ProgressBroadcaster fans import events out to SSE subscribers
type ProgressBroadcaster struct {
	clients map[chan ImportEvent]bool
	mutex   sync.RWMutex
	log     *zap.Logger
}

// NewProgressBroadcaster creates a new progress broadcaster
func NewProgressBroadcaster(log *zap.Logger) *ProgressBroadcaster {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProgressBroadcaster{
		clients: make(map[chan ImportEvent]bool),
		log:     log,
	}
}

// Subscribe adds a new client to receive import events
func (pb *ProgressBroadcaster) Subscribe() chan ImportEvent {
	pb.mutex.Lock()
	defer pb.mutex.Unlock()

	client := make(chan ImportEvent, 10)
	pb.clients[client] = true
	pb.log.Debug("Client subscribed to import events", zap.Int("clients", len(pb.clients)))
	return client
}

// Unsubscribe removes a client and closes its channel
func (pb *ProgressBroadcaster) Unsubscribe(client chan ImportEvent) {
	pb.mutex.Lock()
	defer pb.mutex.Unlock()

	if _, ok := pb.clients[client]; ok {
		delete(pb.clients, client)
		close(client)
		pb.log.Debug("Client unsubscribed from import events", zap.Int("clients", len(pb.clients)))
	}
}

// Broadcast sends an event to every client without blocking on slow ones
func (pb *ProgressBroadcaster) Broadcast(event ImportEvent) {
	pb.mutex.RLock()
	defer pb.mutex.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	for client := range pb.clients {
		select {
		case client <- event:
		default:
			pb.log.Warn("Client buffer full, dropping import event",
				zap.String("batch_id", event.BatchID),
				zap.Int("index", event.Index))
		}
	}
}

// BroadcastRow converts a batch row to an event and broadcasts it
func (pb *ProgressBroadcaster) BroadcastRow(batch *models.ImportBatch, index int) {
	if index < 0 || index >= len(batch.Rows) {
		return
	}
	row := batch.Rows[index]
	pb.Broadcast(ImportEvent{
		BatchID: batch.ID,
		RowID:   row.ID,
		Index:   index,
		Status:  row.Status,
		Message: row.Error,
		SongID:  row.SongID,
		Current: batch.Progress.Current,
		Total:   batch.Progress.Total,
		Running: batch.Running,
	})
}

// ClientCount returns the number of connected clients
func (pb *ProgressBroadcaster) ClientCount() int {
	pb.mutex.RLock()
	defer pb.mutex.RUnlock()
	return len(pb.clients)
}

// FormatSSE formats an event as a Server-Sent Event frame
func FormatSSE(event ImportEvent) string {
	data, err := json.Marshal(event)
	if err != nil {
		return ""
	}
	return "event: import\ndata: " + string(data) + "\n\n"
}
