package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/AndrewDonelson/viola-flow/internal/apperr"
	"github.com/AndrewDonelson/viola-flow/internal/importer"
	"github.com/AndrewDonelson/viola-flow/internal/models"
)

// ErrQueueFull is returned when too many batches are waiting
var ErrQueueFull = apperr.Conflict("Import queue is full")

// Worker runs queued import batches one at a time
type Worker struct {
	importer *importer.Importer
	queue    chan string
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	once     sync.Once
	started  atomic.Bool
}

// NewWorker creates a new import worker holding up to queueSize waiting batches
func NewWorker(im *importer.Importer, queueSize int, log *zap.Logger) *Worker {
	if queueSize < 1 {
		queueSize = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		importer: im,
		queue:    make(chan string, queueSize),
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Enqueue marks the batch as running and hands it to the worker
func (w *Worker) Enqueue(batchID string) (models.ImportBatch, error) {
	batch, err := w.importer.Prepare(batchID)
	if err != nil {
		return models.ImportBatch{}, err
	}

	select {
	case w.queue <- batchID:
		w.log.Debug("Import batch queued", zap.String("batch_id", batchID))
		return batch, nil
	default:
		w.importer.Abandon(batchID)
		return models.ImportBatch{}, ErrQueueFull
	}
}

// Start processes queued batches until Stop is called
func (w *Worker) Start() {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	defer close(w.done)
	w.log.Info("Import worker started")

	for {
		select {
		case <-w.ctx.Done():
			w.drain()
			w.log.Info("Import worker stopped")
			return
		case batchID := <-w.queue:
			w.process(batchID)
		}
	}
}

// Stop cancels the running batch and waits for Start to return
func (w *Worker) Stop() {
	w.once.Do(func() {
		w.log.Info("Stopping import worker...")
		w.cancel()
	})
	if w.started.Load() {
		<-w.done
	}
}

func (w *Worker) process(batchID string) {
	batch, err := w.importer.Process(w.ctx, batchID)
	if err != nil {
		w.log.Warn("Import batch ended early", zap.String("batch_id", batchID), zap.Error(err))
		return
	}
	w.log.Info("Import batch completed",
		zap.String("batch_id", batchID),
		zap.Int("processed", batch.Progress.Current),
		zap.Int("total", batch.Progress.Total))
}

// drain releases batches that were queued but never started
func (w *Worker) drain() {
	for {
		select {
		case batchID := <-w.queue:
			w.importer.Abandon(batchID)
		default:
			return
		}
	}
}
