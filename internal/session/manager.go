// Package session keeps the song currently open in an editor in sync with the
// store: edits are saved automatically after a quiet period.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AndrewDonelson/viola-flow/internal/apperr"
	"github.com/AndrewDonelson/viola-flow/internal/models"
)

// DefaultDebounce is the quiet period before an edit is saved
const DefaultDebounce = time.Second

var (
	ErrNoSong     = apperr.InvalidInput("No song is open")
	ErrSuperseded = apperr.Conflict("Session changed while parsing")
	ErrInvalidURL = apperr.InvalidInput("Invalid CifraClub URL")
)

// Store is the song persistence the session writes through
type Store interface {
	Get(ctx context.Context, id int64) (*models.Song, error)
	Create(ctx context.Context, song *models.Song) error
	Update(ctx context.Context, id int64, patch models.SongPatch) (*models.Song, error)
	Delete(ctx context.Context, id int64) error
	FindByTitleAndArtist(ctx context.Context, title, artist string) (*models.Song, error)
}

// Parser turns a source URL into a chord sheet
type Parser interface {
	Parse(ctx context.Context, pageURL string) (*models.ParsedCifra, error)
	Accepts(pageURL string) bool
}

// Fields are the editable values of the open song
type Fields struct {
	Title     string
	Artist    string
	Tone      string
	Capo      *int
	Content   string
	SourceURL string
	VideoURL  string
	Speed     int
	FontSize  int
	HideTabs  bool
}

// DecideFunc picks what to do when a parsed sheet is already in the library
type DecideFunc func(existing models.Song, parsed models.ParsedCifra) models.DuplicateDecision

// ParseOutcome reports what Parse found and did
type ParseOutcome struct {
	Parsed   *models.ParsedCifra
	Existing *models.Song
	Decision models.DuplicateDecision // empty when nothing matched
}

// Options tunes a Manager
type Options struct {
	Debounce time.Duration
	Logger   *zap.Logger
	OnSave   func(song models.Song)
}

// Manager holds one open song
type Manager struct {
	store    Store
	parser   Parser
	debounce time.Duration
	log      *zap.Logger
	onSave   func(models.Song)

	saveMu sync.Mutex // one save at a time

	mu         sync.Mutex
	id         int64
	fields     Fields
	dirty      bool
	parsing    bool
	generation uint64 // bumped by every edit and cancellation
	epoch      uint64 // bumped whenever a different song is opened
	timer      *time.Timer
	closed     bool
	lastErr    error
}

// New creates a manager with an empty session
func New(store Store, parser Parser, opts Options) *Manager {
	m := &Manager{
		store:    store,
		parser:   parser,
		debounce: opts.Debounce,
		log:      opts.Logger,
		onSave:   opts.OnSave,
		fields:   emptyFields(),
	}
	if m.debounce <= 0 {
		m.debounce = DefaultDebounce
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	return m
}

func emptyFields() Fields {
	return Fields{Speed: models.DefaultSpeed, FontSize: models.DefaultFontSize}
}

func fieldsFromSong(s *models.Song) Fields {
	f := Fields{
		Title:     s.Title,
		Artist:    s.Artist,
		Tone:      s.Tone,
		Content:   s.Content,
		SourceURL: s.CifraClubURL,
		VideoURL:  s.YoutubeURL,
		Speed:     s.Speed,
		FontSize:  s.FontSize,
		HideTabs:  s.HideTabs,
	}
	if s.Capo != nil {
		c := *s.Capo
		f.Capo = &c
	}
	return f
}

// ID returns the id of the open song, 0 when it was never saved
func (m *Manager) ID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

// Fields returns a copy of the open song's values
func (m *Manager) Fields() Fields {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.fields
	if f.Capo != nil {
		c := *f.Capo
		f.Capo = &c
	}
	return f
}

// Dirty reports unsaved edits
func (m *Manager) Dirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty
}

// Parsing reports whether a Parse is in flight
func (m *Manager) Parsing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.parsing
}

// Err returns the error of the last background save, if it failed
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Select opens a stored song
func (m *Manager) Select(ctx context.Context, id int64) error {
	song, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelLocked()
	m.epoch++
	m.id = song.ID
	m.fields = fieldsFromSong(song)
	m.dirty = false
	return nil
}

// Clear closes the open song, dropping any pending save
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

func (m *Manager) resetLocked() {
	m.cancelLocked()
	m.epoch++
	m.id = 0
	m.fields = emptyFields()
	m.dirty = false
}

// Edit applies fn to the open song and schedules a save once the song has
// an id or a title
func (m *Manager) Edit(fn func(f *Fields)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn(&m.fields)
	m.dirty = true
	m.generation++
	if m.id != 0 || strings.TrimSpace(m.fields.Title) != "" {
		m.scheduleLocked()
	}
}

func (m *Manager) scheduleLocked() {
	if m.closed {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	gen := m.generation
	m.timer = time.AfterFunc(m.debounce, func() { m.fire(gen) })
}

func (m *Manager) cancelLocked() {
	m.generation++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) fire(gen uint64) {
	m.mu.Lock()
	stale := gen != m.generation || m.closed
	m.mu.Unlock()
	if stale {
		return
	}

	if err := m.save(context.Background()); err != nil {
		m.log.Warn("Autosave failed", zap.Error(err))
		m.mu.Lock()
		m.lastErr = err
		m.mu.Unlock()
	}
}

// Flush saves pending edits now
func (m *Manager) Flush(ctx context.Context) error {
	m.mu.Lock()
	m.cancelLocked()
	m.mu.Unlock()
	return m.save(ctx)
}

// save writes the session when it is dirty, complete and not parsing
func (m *Manager) save(ctx context.Context) error {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.mu.Lock()
	if !m.dirty || m.parsing {
		m.mu.Unlock()
		return nil
	}
	f := m.fields
	id, gen, epoch := m.id, m.generation, m.epoch
	m.mu.Unlock()

	if strings.TrimSpace(f.Title) == "" || strings.TrimSpace(f.Content) == "" {
		return nil
	}

	var saved *models.Song
	if id == 0 {
		song := songFromFields(f)
		if err := m.store.Create(ctx, song); err != nil {
			return err
		}
		saved = song
	} else {
		song, err := m.store.Update(ctx, id, patchFromFields(f))
		if err != nil {
			return err
		}
		saved = song
	}

	m.mu.Lock()
	if m.epoch == epoch {
		m.id = saved.ID
		if m.generation == gen {
			m.dirty = false
		}
		m.lastErr = nil
	}
	m.mu.Unlock()

	m.log.Debug("Song saved", zap.Int64("song_id", saved.ID), zap.Bool("created", id == 0))
	if m.onSave != nil {
		m.onSave(*saved)
	}
	return nil
}

func songFromFields(f Fields) *models.Song {
	s := &models.Song{
		Title:        f.Title,
		Artist:       f.Artist,
		Content:      f.Content,
		CifraClubURL: f.SourceURL,
		YoutubeURL:   f.VideoURL,
		Tone:         f.Tone,
		Capo:         f.Capo,
		Speed:        f.Speed,
		FontSize:     f.FontSize,
		HideTabs:     f.HideTabs,
	}
	s.ApplyDefaults()
	return s
}

func patchFromFields(f Fields) models.SongPatch {
	s := songFromFields(f)
	return models.SongPatch{
		Title:        &s.Title,
		Artist:       &s.Artist,
		Content:      &s.Content,
		CifraClubURL: &s.CifraClubURL,
		YoutubeURL:   &s.YoutubeURL,
		Tone:         &s.Tone,
		Capo:         models.SetInt(s.Capo),
		Speed:        &s.Speed,
		FontSize:     &s.FontSize,
		HideTabs:     &s.HideTabs,
	}
}

// Delete removes the open song from the store and clears the session
func (m *Manager) Delete(ctx context.Context) error {
	id := m.ID()
	if id == 0 {
		return ErrNoSong
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.id == id {
		m.resetLocked()
	}
	return nil
}

// Parse opens the sheet at pageURL. When the library already holds the same
// title and artist, decide chooses between adopting the parsed sheet into the
// stored song and opening the stored song unchanged; a nil decide adopts.
func (m *Manager) Parse(ctx context.Context, pageURL string, decide DecideFunc) (*ParseOutcome, error) {
	pageURL = strings.TrimSpace(pageURL)
	if !m.parser.Accepts(pageURL) {
		return nil, ErrInvalidURL
	}

	m.mu.Lock()
	m.resetLocked()
	m.fields.SourceURL = pageURL
	m.parsing = true
	epoch := m.epoch
	m.mu.Unlock()

	finished := false
	defer func() {
		if !finished {
			m.mu.Lock()
			m.parsing = false
			m.mu.Unlock()
		}
	}()

	parsed, err := m.parser.Parse(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	existing, err := m.store.FindByTitleAndArtist(ctx, parsed.Title, parsed.Artist)
	if err != nil {
		return nil, err
	}

	outcome := &ParseOutcome{Parsed: parsed, Existing: existing}
	if existing != nil {
		outcome.Decision = models.DecisionAdoptParsed
		if decide != nil {
			outcome.Decision = decide(*existing, *parsed)
		}
		if !outcome.Decision.Valid() {
			outcome.Decision = models.DecisionKeepExisting
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.parsing = false
	finished = true

	if m.epoch != epoch {
		return outcome, ErrSuperseded
	}

	switch {
	case existing == nil:
		m.fields = Fields{
			Title:     parsed.Title,
			Artist:    parsed.Artist,
			Tone:      parsed.Tone,
			Capo:      parsed.Capo,
			Content:   parsed.Content,
			SourceURL: pageURL,
			VideoURL:  parsed.YoutubeURL,
			Speed:     models.DefaultSpeed,
			FontSize:  models.DefaultFontSize,
		}
		m.dirty = true
		m.generation++
		if strings.TrimSpace(m.fields.Title) != "" {
			m.scheduleLocked()
		}

	case outcome.Decision == models.DecisionAdoptParsed:
		f := fieldsFromSong(existing)
		f.Title = parsed.Title
		f.Artist = parsed.Artist
		f.Tone = parsed.Tone
		f.Capo = parsed.Capo
		f.Content = parsed.Content
		f.SourceURL = pageURL
		if parsed.YoutubeURL != "" {
			f.VideoURL = parsed.YoutubeURL
		}
		m.id = existing.ID
		m.fields = f
		m.dirty = true
		m.generation++
		m.scheduleLocked()

	default:
		m.id = existing.ID
		m.fields = fieldsFromSong(existing)
		if m.fields.SourceURL == "" {
			m.fields.SourceURL = pageURL
		}
		m.dirty = false
	}

	return outcome, nil
}

// Close stops the autosave timer. Pending edits are not saved; call Flush first.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.cancelLocked()
}
