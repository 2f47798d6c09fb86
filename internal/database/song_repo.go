package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AndrewDonelson/viola-flow/internal/apperr"
	"github.com/AndrewDonelson/viola-flow/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// ErrSongNotFound is returned when no song has the requested id
var ErrSongNotFound = apperr.NotFound("Song not found")

const songColumns = `id, title, artist, content,
	COALESCE(cifra_club_url, '') AS cifra_club_url,
	COALESCE(youtube_url, '') AS youtube_url,
	COALESCE(tone, '') AS tone,
	capo, speed, font_size, hide_tabs,
	created_at, updated_at`

// SongRepository handles song database operations over prepared statements
type SongRepository struct {
	db  *sql.DB
	now func() time.Time

	listStmt   *sql.Stmt
	getStmt    *sql.Stmt
	insertStmt *sql.Stmt
	updateStmt *sql.Stmt
	deleteStmt *sql.Stmt
	findStmt   *sql.Stmt
}

// NewSongRepository prepares the song statements on store
func NewSongRepository(ctx context.Context, store *Store) (*SongRepository, error) {
	r := &SongRepository{db: store.DB(), now: time.Now}

	queries := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&r.listStmt, `SELECT ` + songColumns + ` FROM songs ORDER BY updated_at DESC, id DESC`},
		{&r.getStmt, `SELECT ` + songColumns + ` FROM songs WHERE id = ?`},
		{&r.insertStmt, `INSERT INTO songs (title, artist, content, cifra_club_url, youtube_url,
			tone, capo, speed, font_size, hide_tabs, match_key, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`},
		{&r.updateStmt, `UPDATE songs SET title = ?, artist = ?, content = ?, cifra_club_url = ?,
			youtube_url = ?, tone = ?, capo = ?, speed = ?, font_size = ?, hide_tabs = ?,
			match_key = ?, updated_at = ?
			WHERE id = ?`},
		{&r.deleteStmt, `DELETE FROM songs WHERE id = ?`},
		{&r.findStmt, `SELECT ` + songColumns + ` FROM songs WHERE match_key = ? ORDER BY id ASC LIMIT 1`},
	}

	for _, q := range queries {
		stmt, err := store.prepare(ctx, q.query)
		if err != nil {
			return nil, err
		}
		*q.dst = stmt
	}

	return r, nil
}

// SetClock overrides the time source, used by tests
func (r *SongRepository) SetClock(now func() time.Time) {
	r.now = now
}

// List returns all songs, most recently updated first
func (r *SongRepository) List(ctx context.Context) ([]models.Song, error) {
	rows, err := r.listStmt.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	songs := []models.Song{}
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, *s)
	}

	return songs, rows.Err()
}

// Get returns a song by ID
func (r *SongRepository) Get(ctx context.Context, id int64) (*models.Song, error) {
	s, err := scanSong(r.getStmt.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSongNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts song and assigns its ID and timestamps
func (r *SongRepository) Create(ctx context.Context, song *models.Song) error {
	song.ApplyDefaults()
	now := r.now().UTC()

	result, err := r.insertStmt.ExecContext(ctx,
		song.Title, song.Artist, song.Content,
		nullString(song.CifraClubURL), nullString(song.YoutubeURL), nullString(song.Tone),
		nullInt(song.Capo), song.Speed, song.FontSize, boolToInt(song.HideTabs),
		MatchKey(song.Title, song.Artist), formatTime(now), formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	song.ID = id
	song.CreatedAt = now
	song.UpdatedAt = now
	return nil
}

// Update merges patch over the stored song and returns the result
func (r *SongRepository) Update(ctx context.Context, id int64, patch models.SongPatch) (*models.Song, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	song, err := scanSong(tx.StmtContext(ctx, r.getStmt).QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSongNotFound
	}
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return song, nil
	}
	patch.Apply(song)

	// updatedAt must move forward even when the clock has not
	now := r.now().UTC()
	if !now.After(song.UpdatedAt) {
		now = song.UpdatedAt.Add(time.Nanosecond)
	}
	song.UpdatedAt = now

	_, err = tx.StmtContext(ctx, r.updateStmt).ExecContext(ctx,
		song.Title, song.Artist, song.Content,
		nullString(song.CifraClubURL), nullString(song.YoutubeURL), nullString(song.Tone),
		nullInt(song.Capo), song.Speed, song.FontSize, boolToInt(song.HideTabs),
		MatchKey(song.Title, song.Artist), formatTime(now), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update song: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return song, nil
}

// Delete removes a song
func (r *SongRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.deleteStmt.ExecContext(ctx, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSongNotFound
	}
	return nil
}

// FindByTitleAndArtist returns the first song whose trimmed, case-folded
// title and artist match, or nil when there is none
func (r *SongRepository) FindByTitleAndArtist(ctx context.Context, title, artist string) (*models.Song, error) {
	s, err := scanSong(r.findStmt.QueryRowContext(ctx, MatchKey(title, artist)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// MatchKey builds the de-duplication key for a title and artist pair
func MatchKey(title, artist string) string {
	return foldText(title) + "\x1f" + foldText(artist)
}

func foldText(s string) string {
	// Casers are stateful, so one per call
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSong(row rowScanner) (*models.Song, error) {
	var (
		s                    models.Song
		capo                 sql.NullInt64
		hideTabs             int64
		createdAt, updatedAt string
	)

	err := row.Scan(
		&s.ID, &s.Title, &s.Artist, &s.Content,
		&s.CifraClubURL, &s.YoutubeURL, &s.Tone,
		&capo, &s.Speed, &s.FontSize, &hideTabs,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if capo.Valid {
		v := int(capo.Int64)
		s.Capo = &v
	}
	s.HideTabs = hideTabs != 0

	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &s, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
