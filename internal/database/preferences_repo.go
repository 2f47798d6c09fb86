package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/AndrewDonelson/viola-flow/internal/models"
)

// PreferencesRepository handles the UI preferences row
type PreferencesRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPreferencesRepository creates a new preferences repository
func NewPreferencesRepository(store *Store) *PreferencesRepository {
	return &PreferencesRepository{db: store.DB(), now: time.Now}
}

// Get retrieves the preferences (always ID = 1)
func (r *PreferencesRepository) Get(ctx context.Context) (*models.Preferences, error) {
	query := `
		SELECT theme, left_panel_width, middle_panel_width, chords_panel_width, last_song_id, updated_at
		FROM preferences
		WHERE id = 1
	`

	var (
		prefs     models.Preferences
		middle    sql.NullInt64
		lastSong  sql.NullInt64
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx, query).Scan(
		&prefs.Theme,
		&prefs.LeftPanelWidth,
		&middle,
		&prefs.ChordsPanelWidth,
		&lastSong,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		// Create default preferences if they don't exist
		return r.createDefault(ctx)
	}
	if err != nil {
		return nil, err
	}

	if middle.Valid {
		w := int(middle.Int64)
		prefs.MiddlePanelWidth = &w
	}
	if lastSong.Valid {
		id := lastSong.Int64
		prefs.LastSongID = &id
	}
	if prefs.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &prefs, nil
}

// Update replaces the preferences
func (r *PreferencesRepository) Update(ctx context.Context, prefs *models.Preferences) error {
	if prefs.Theme == "" {
		prefs.Theme = "light"
	}

	query := `
		INSERT INTO preferences (id, theme, left_panel_width, middle_panel_width, chords_panel_width, last_song_id, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		    theme = excluded.theme,
		    left_panel_width = excluded.left_panel_width,
		    middle_panel_width = excluded.middle_panel_width,
		    chords_panel_width = excluded.chords_panel_width,
		    last_song_id = excluded.last_song_id,
		    updated_at = excluded.updated_at
	`

	var lastSong sql.NullInt64
	if prefs.LastSongID != nil {
		lastSong = sql.NullInt64{Int64: *prefs.LastSongID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		prefs.Theme,
		prefs.LeftPanelWidth,
		nullInt(prefs.MiddlePanelWidth),
		prefs.ChordsPanelWidth,
		lastSong,
		formatTime(r.now()),
	)
	return err
}

// createDefault inserts the default row
func (r *PreferencesRepository) createDefault(ctx context.Context) (*models.Preferences, error) {
	query := `INSERT INTO preferences (id) VALUES (1) ON CONFLICT(id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return nil, err
	}

	return r.Get(ctx)
}
