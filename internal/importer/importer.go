// Package importer runs batches of chord sheet URLs through the parser and
// into the song store, one row at a time.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AndrewDonelson/viola-flow/internal/apperr"
	"github.com/AndrewDonelson/viola-flow/internal/models"
	"github.com/AndrewDonelson/viola-flow/internal/services"
	"github.com/AndrewDonelson/viola-flow/internal/youtube"
	"github.com/AndrewDonelson/viola-flow/pkg/logger"
)

// Row messages shown to the user
const (
	MsgParseFailed     = "Falha ao processar cifra"
	MsgIncomplete      = "Cifra incompleta"
	MsgOverwriteFailed = "Erro ao sobrescrever"
)

// Defaults for Options
const (
	DefaultRowDelay   = 500 * time.Millisecond
	DefaultClearDelay = time.Second
)

// SheetParser fetches and parses one chord sheet URL
type SheetParser interface {
	Parse(ctx context.Context, pageURL string) (*models.ParsedCifra, error)
	Accepts(pageURL string) bool
}

// SongStore is the slice of the song repository the importer writes through
type SongStore interface {
	FindByTitleAndArtist(ctx context.Context, title, artist string) (*models.Song, error)
	Create(ctx context.Context, song *models.Song) error
	Update(ctx context.Context, id int64, patch models.SongPatch) (*models.Song, error)
}

// Options tunes an Importer. Zero delays fall back to the defaults.
type Options struct {
	RowDelay    time.Duration
	ClearDelay  time.Duration
	LogsDir     string // per-batch logs are skipped when empty
	Broadcaster *services.ProgressBroadcaster
	Logger      *zap.Logger
}

// Importer processes the batches held by a Registry
type Importer struct {
	registry    *Registry
	parser      SheetParser
	songs       SongStore
	rowDelay    time.Duration
	clearDelay  time.Duration
	logsDir     string
	broadcaster *services.ProgressBroadcaster
	log         *zap.Logger
	sleep       func(ctx context.Context, d time.Duration) error
	now         func() time.Time
}

// New creates an importer
func New(registry *Registry, parser SheetParser, songs SongStore, opts Options) *Importer {
	im := &Importer{
		registry:    registry,
		parser:      parser,
		songs:       songs,
		rowDelay:    opts.RowDelay,
		clearDelay:  opts.ClearDelay,
		logsDir:     opts.LogsDir,
		broadcaster: opts.Broadcaster,
		log:         opts.Logger,
		sleep:       sleepCtx,
		now:         time.Now,
	}
	if im.rowDelay <= 0 {
		im.rowDelay = DefaultRowDelay
	}
	if im.clearDelay <= 0 {
		im.clearDelay = DefaultClearDelay
	}
	if im.log == nil {
		im.log = zap.NewNop()
	}
	return im
}

// Registry returns the batches this importer works on
func (im *Importer) Registry() *Registry {
	return im.registry
}

// Prepare marks a batch as running and sizes its progress. It fails when the
// batch is already running or holds no row with a source URL.
func (im *Importer) Prepare(batchID string) (models.ImportBatch, error) {
	return im.registry.update(batchID, func(b *models.ImportBatch) error {
		if b.Running {
			return ErrBatchRunning
		}
		total := 0
		for _, row := range b.Rows {
			if im.parser.Accepts(row.CifraURL) {
				total++
			}
		}
		if total == 0 {
			return ErrNothingToQueue
		}
		b.Running = true
		b.Progress = models.ImportProgress{Total: total}
		b.CompletedAt = nil
		return nil
	})
}

// Abandon releases a prepared batch that will not be processed
func (im *Importer) Abandon(batchID string) {
	im.registry.update(batchID, func(b *models.ImportBatch) error {
		b.Running = false
		return nil
	})
}

// Run prepares and processes a batch synchronously
func (im *Importer) Run(ctx context.Context, batchID string) (models.ImportBatch, error) {
	if _, err := im.Prepare(batchID); err != nil {
		return models.ImportBatch{}, err
	}
	return im.Process(ctx, batchID)
}

// Process works through the eligible rows of a prepared batch in order.
// A failing row never stops the rest; a cancelled ctx does.
func (im *Importer) Process(ctx context.Context, batchID string) (models.ImportBatch, error) {
	batch, err := im.registry.Get(batchID)
	if err != nil {
		return models.ImportBatch{}, err
	}

	bl := im.openBatchLog(batchID)
	im.log.Info("Import started",
		zap.String("batch_id", batchID),
		zap.Int("rows", len(batch.Rows)),
		zap.Int("eligible", batch.Progress.Total))

	rowIDs := make([]string, len(batch.Rows))
	for i, row := range batch.Rows {
		rowIDs[i] = row.ID
	}

	processed := 0
	for _, rowID := range rowIDs {
		if ctx.Err() != nil {
			break
		}
		current, err := im.registry.Get(batchID)
		if err != nil {
			break
		}
		i := indexOf(&current, rowID)
		if i < 0 || !im.eligible(current.Rows[i]) {
			continue
		}

		if processed > 0 {
			if err := im.sleep(ctx, im.rowDelay); err != nil {
				break
			}
		}
		processed++
		im.processRow(ctx, batchID, rowID, bl)
	}

	return im.finish(ctx, batchID, bl)
}

func (im *Importer) eligible(row models.ImportRow) bool {
	if !im.parser.Accepts(row.CifraURL) {
		return false
	}
	return row.Status != models.ImportDone && row.Status != models.ImportExists
}

func (im *Importer) processRow(ctx context.Context, batchID, rowID string, bl *logger.BatchLogger) {
	var row models.ImportRow
	snap, index, err := im.registry.updateRow(batchID, rowID, func(b *models.ImportBatch, r *models.ImportRow) error {
		r.Status = models.ImportLoading
		r.Error = ""
		b.Progress.Current++
		row = cloneRow(*r)
		return nil
	})
	if err != nil {
		return
	}
	im.notify(snap, index)

	sourceURL := strings.TrimSpace(row.CifraURL)

	parsed, err := im.parser.Parse(ctx, sourceURL)
	if err != nil {
		im.failRow(batchID, rowID, rowMessage(err, MsgParseFailed), err, bl)
		return
	}
	if strings.TrimSpace(parsed.Title) == "" || strings.TrimSpace(parsed.Content) == "" {
		im.failRow(batchID, rowID, MsgIncomplete, nil, bl)
		return
	}

	payload := *parsed
	payload.CifraClubURL = sourceURL
	if override := strings.TrimSpace(row.YoutubeURL); override != "" {
		payload.YoutubeURL = canonicalVideoURL(override)
	}

	existing, err := im.songs.FindByTitleAndArtist(ctx, payload.Title, payload.Artist)
	if err != nil {
		im.failRow(batchID, rowID, rowMessage(err, MsgParseFailed), err, bl)
		return
	}

	if existing != nil {
		existingID := existing.ID
		im.setRow(batchID, rowID, bl, func(r *models.ImportRow) {
			r.Status = models.ImportExists
			r.ParsedData = &payload
			r.ExistingSongID = &existingID
		})
		return
	}

	song := &models.Song{
		Title:        payload.Title,
		Artist:       payload.Artist,
		Content:      payload.Content,
		CifraClubURL: sourceURL,
		YoutubeURL:   payload.YoutubeURL,
		Tone:         payload.Tone,
		Capo:         payload.Capo,
		Speed:        models.DefaultSpeed,
		FontSize:     models.DefaultFontSize,
		HideTabs:     false,
	}
	if err := im.songs.Create(ctx, song); err != nil {
		im.failRow(batchID, rowID, rowMessage(err, MsgParseFailed), err, bl)
		return
	}

	songID := song.ID
	im.setRow(batchID, rowID, bl, func(r *models.ImportRow) {
		r.Status = models.ImportDone
		r.SongID = &songID
	})
}

func (im *Importer) failRow(batchID, rowID, message string, cause error, bl *logger.BatchLogger) {
	fields := []zap.Field{
		zap.String("batch_id", batchID),
		zap.String("row_id", rowID),
		zap.String("message", message),
		zap.Error(cause),
	}
	if status := apperr.FetchStatus(cause); status != 0 {
		fields = append(fields, zap.Int("upstream_status", status))
	}
	im.log.Warn("Import row failed", fields...)

	im.setRow(batchID, rowID, bl, func(r *models.ImportRow) {
		r.Status = models.ImportError
		r.Error = message
	})
}

// setRow applies fn to the row, then broadcasts and logs the new state
func (im *Importer) setRow(batchID, rowID string, bl *logger.BatchLogger, fn func(r *models.ImportRow)) {
	snap, index, err := im.registry.updateRow(batchID, rowID, func(_ *models.ImportBatch, r *models.ImportRow) error {
		fn(r)
		return nil
	})
	if err != nil {
		return
	}
	im.notify(snap, index)

	if bl != nil {
		row := snap.Rows[index]
		bl.Row(index, row.CifraURL, row.Status, row.Error)
	}
}

func (im *Importer) finish(ctx context.Context, batchID string, bl *logger.BatchLogger) (models.ImportBatch, error) {
	snap, err := im.registry.update(batchID, func(b *models.ImportBatch) error {
		now := im.now().UTC()
		b.Running = false
		b.CompletedAt = &now
		return nil
	})
	if err != nil {
		if bl != nil {
			bl.Close("batch removed while running")
		}
		return models.ImportBatch{}, err
	}

	summary := summarize(snap)
	if bl != nil {
		if ctx.Err() != nil {
			bl.Error("Import interrupted: %v", ctx.Err())
		}
		if err := bl.Close(summary); err != nil {
			im.log.Warn("Failed to close import log", zap.String("batch_id", batchID), zap.Error(err))
		}
	}

	im.broadcast(snap, -1, "completed", summary)
	im.log.Info("Import finished", zap.String("batch_id", batchID), zap.String("summary", summary))
	im.scheduleClear(snap)

	return snap, ctx.Err()
}

// Resolve settles a row whose song already exists. DecisionAdoptParsed writes
// the parsed sheet over the stored song; DecisionKeepExisting drops the row.
func (im *Importer) Resolve(ctx context.Context, batchID, rowID string, decision models.DuplicateDecision) (models.ImportBatch, error) {
	if !decision.Valid() {
		return models.ImportBatch{}, apperr.InvalidInput(fmt.Sprintf("Invalid decision %q", decision))
	}

	var row models.ImportRow
	snap, index, err := im.registry.updateRow(batchID, rowID, func(_ *models.ImportBatch, r *models.ImportRow) error {
		if r.Status != models.ImportExists || r.ParsedData == nil || r.ExistingSongID == nil {
			return ErrNotResolvable
		}
		row = cloneRow(*r)
		if decision == models.DecisionAdoptParsed {
			r.Status = models.ImportLoading
		}
		return nil
	})
	if err != nil {
		return models.ImportBatch{}, err
	}

	if decision == models.DecisionKeepExisting {
		snap, err = im.registry.update(batchID, func(b *models.ImportBatch) error {
			if i := indexOf(b, rowID); i >= 0 {
				b.Rows = append(b.Rows[:i], b.Rows[i+1:]...)
			}
			return nil
		})
		if err != nil {
			return models.ImportBatch{}, err
		}
		im.broadcastRemoved(snap, index, rowID)
		im.scheduleClear(snap)
		return snap, nil
	}

	im.notify(snap, index)

	bl := im.openBatchLog(batchID)
	defer func() {
		if bl != nil {
			bl.Close("resolve " + string(decision))
		}
	}()

	p := row.ParsedData
	sourceURL := strings.TrimSpace(row.CifraURL)
	speed, fontSize, hideTabs := models.DefaultSpeed, models.DefaultFontSize, false
	patch := models.SongPatch{
		Title:        &p.Title,
		Artist:       &p.Artist,
		Content:      &p.Content,
		CifraClubURL: &sourceURL,
		YoutubeURL:   &p.YoutubeURL,
		Tone:         &p.Tone,
		Capo:         models.SetInt(p.Capo),
		Speed:        &speed,
		FontSize:     &fontSize,
		HideTabs:     &hideTabs,
	}

	song, err := im.songs.Update(ctx, *row.ExistingSongID, patch)
	if err != nil {
		im.failRow(batchID, rowID, MsgOverwriteFailed, err, bl)
	} else {
		songID := song.ID
		im.setRow(batchID, rowID, bl, func(r *models.ImportRow) {
			r.Status = models.ImportDone
			r.SongID = &songID
		})
	}

	final, err := im.registry.Get(batchID)
	if err != nil {
		return models.ImportBatch{}, err
	}
	im.scheduleClear(final)
	return final, nil
}

// scheduleClear drops a finished batch after the clear delay when every row
// with a source URL ended up done
func (im *Importer) scheduleClear(snap models.ImportBatch) {
	if snap.Running || !im.allDone(&snap) {
		return
	}
	time.AfterFunc(im.clearDelay, func() {
		removed := im.registry.removeIf(snap.ID, func(b *models.ImportBatch) bool {
			return !b.Running && im.allDone(b)
		})
		if removed {
			im.log.Debug("Import batch cleared", zap.String("batch_id", snap.ID))
		}
	})
}

func (im *Importer) allDone(b *models.ImportBatch) bool {
	for _, row := range b.Rows {
		if im.parser.Accepts(row.CifraURL) && row.Status != models.ImportDone {
			return false
		}
	}
	return true
}

func (im *Importer) notify(snap models.ImportBatch, index int) {
	if index < 0 || index >= len(snap.Rows) {
		return
	}
	if im.broadcaster != nil {
		im.broadcaster.BroadcastRow(&snap, index)
	}
}

func (im *Importer) broadcast(snap models.ImportBatch, index int, status, message string) {
	if im.broadcaster == nil {
		return
	}
	im.broadcaster.Broadcast(services.ImportEvent{
		BatchID: snap.ID,
		Index:   index,
		Status:  status,
		Message: message,
		Current: snap.Progress.Current,
		Total:   snap.Progress.Total,
		Running: snap.Running,
	})
}

func (im *Importer) broadcastRemoved(snap models.ImportBatch, index int, rowID string) {
	if im.broadcaster == nil {
		return
	}
	im.broadcaster.Broadcast(services.ImportEvent{
		BatchID: snap.ID,
		RowID:   rowID,
		Index:   index,
		Status:  "skipped",
		Current: snap.Progress.Current,
		Total:   snap.Progress.Total,
		Running: snap.Running,
	})
}

func (im *Importer) openBatchLog(batchID string) *logger.BatchLogger {
	if im.logsDir == "" {
		return nil
	}
	bl, err := logger.NewBatchLogger(im.logsDir, batchID)
	if err != nil {
		im.log.Warn("Import log unavailable", zap.String("batch_id", batchID), zap.Error(err))
		return nil
	}
	return bl
}

// rowMessage is the user-facing text for a row failure
func rowMessage(err error, fallback string) string {
	if e, ok := apperr.As(err); ok && e.Message != "" {
		return e.Message
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fallback
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}

func summarize(b models.ImportBatch) string {
	counts := map[string]int{}
	for _, row := range b.Rows {
		counts[row.Status]++
	}
	return fmt.Sprintf("%d done, %d exists, %d error, %d pending",
		counts[models.ImportDone], counts[models.ImportExists], counts[models.ImportError], counts[models.ImportPending])
}

// canonicalVideoURL rewrites short, embed and shorts links to the watch page.
// Links without a recognisable id are kept as typed.
func canonicalVideoURL(raw string) string {
	id, err := youtube.ExtractVideoID(raw)
	if err != nil {
		return raw
	}
	return youtube.WatchURL(id)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
