package importer

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AndrewDonelson/viola-flow/internal/apperr"
	"github.com/AndrewDonelson/viola-flow/internal/models"
)

var (
	ErrBatchNotFound  = apperr.NotFound("Import batch not found")
	ErrRowNotFound    = apperr.NotFound("Import row not found")
	ErrBatchRunning   = apperr.Conflict("Import batch is running")
	ErrRowBusy        = apperr.Conflict("Import row is being processed")
	ErrNotResolvable  = apperr.Conflict("Import row is not awaiting a decision")
	ErrNothingToQueue = apperr.InvalidInput("No valid rows to import")
)

// RowInput is a row as submitted by a client
type RowInput struct {
	CifraURL   string `json:"cifraUrl"`
	YoutubeURL string `json:"youtubeUrl"`
}

// Registry keeps import batches in memory. Callers only ever see copies.
type Registry struct {
	mu      sync.Mutex
	batches map[string]*models.ImportBatch
	now     func() time.Time
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		batches: make(map[string]*models.ImportBatch),
		now:     time.Now,
	}
}

// Create registers a batch holding rows
func (r *Registry) Create(rows []RowInput) models.ImportBatch {
	b := &models.ImportBatch{
		ID:        uuid.NewString(),
		Rows:      make([]models.ImportRow, 0, len(rows)),
		CreatedAt: r.now().UTC(),
	}
	for _, in := range rows {
		b.Rows = append(b.Rows, newRow(in))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[b.ID] = b
	return cloneBatch(b)
}

// Get returns a copy of the batch
func (r *Registry) Get(id string) (models.ImportBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.batches[id]
	if !ok {
		return models.ImportBatch{}, ErrBatchNotFound
	}
	return cloneBatch(b), nil
}

// List returns every batch, oldest first
func (r *Registry) List() []models.ImportBatch {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.ImportBatch, 0, len(r.batches))
	for _, b := range r.batches {
		out = append(out, cloneBatch(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// AddRows appends rows to an idle batch
func (r *Registry) AddRows(id string, rows []RowInput) (models.ImportBatch, error) {
	return r.update(id, func(b *models.ImportBatch) error {
		if b.Running {
			return ErrBatchRunning
		}
		for _, in := range rows {
			b.Rows = append(b.Rows, newRow(in))
		}
		return nil
	})
}

// RemoveRow drops a row that is not currently loading
func (r *Registry) RemoveRow(id, rowID string) (models.ImportBatch, error) {
	return r.update(id, func(b *models.ImportBatch) error {
		i := indexOf(b, rowID)
		if i < 0 {
			return ErrRowNotFound
		}
		if b.Rows[i].Status == models.ImportLoading {
			return ErrRowBusy
		}
		b.Rows = append(b.Rows[:i], b.Rows[i+1:]...)
		return nil
	})
}

// Delete removes an idle batch
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.batches[id]
	if !ok {
		return ErrBatchNotFound
	}
	if b.Running {
		return ErrBatchRunning
	}
	delete(r.batches, id)
	return nil
}

// update runs fn on the live batch under the lock and returns a copy of the result
func (r *Registry) update(id string, fn func(b *models.ImportBatch) error) (models.ImportBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.batches[id]
	if !ok {
		return models.ImportBatch{}, ErrBatchNotFound
	}
	if err := fn(b); err != nil {
		return models.ImportBatch{}, err
	}
	return cloneBatch(b), nil
}

// updateRow is update narrowed to one row; it also returns the row's index
func (r *Registry) updateRow(id, rowID string, fn func(b *models.ImportBatch, row *models.ImportRow) error) (models.ImportBatch, int, error) {
	index := -1
	snap, err := r.update(id, func(b *models.ImportBatch) error {
		index = indexOf(b, rowID)
		if index < 0 {
			return ErrRowNotFound
		}
		return fn(b, &b.Rows[index])
	})
	if err != nil {
		return models.ImportBatch{}, -1, err
	}
	return snap, index, nil
}

// removeIf deletes the batch when cond still holds
func (r *Registry) removeIf(id string, cond func(b *models.ImportBatch) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.batches[id]
	if !ok || !cond(b) {
		return false
	}
	delete(r.batches, id)
	return true
}

func indexOf(b *models.ImportBatch, rowID string) int {
	for i := range b.Rows {
		if b.Rows[i].ID == rowID {
			return i
		}
	}
	return -1
}

func newRow(in RowInput) models.ImportRow {
	return models.ImportRow{
		ID:         uuid.NewString(),
		CifraURL:   in.CifraURL,
		YoutubeURL: in.YoutubeURL,
		Status:     models.ImportPending,
	}
}

func cloneBatch(b *models.ImportBatch) models.ImportBatch {
	out := *b
	out.Rows = make([]models.ImportRow, len(b.Rows))
	for i, row := range b.Rows {
		out.Rows[i] = cloneRow(row)
	}
	if b.CompletedAt != nil {
		t := *b.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

func cloneRow(row models.ImportRow) models.ImportRow {
	out := row
	if row.ParsedData != nil {
		p := *row.ParsedData
		if p.Capo != nil {
			c := *p.Capo
			p.Capo = &c
		}
		out.ParsedData = &p
	}
	if row.ExistingSongID != nil {
		id := *row.ExistingSongID
		out.ExistingSongID = &id
	}
	if row.SongID != nil {
		id := *row.SongID
		out.SongID = &id
	}
	return out
}
