package database

import (
	"context"
	"time"

	"github.com/AndrewDonelson/viola-flow/internal/models"
)

// topN bounds the recent and distribution lists
const topN = 10

// artistKey groups spellings of one artist that differ in case or padding
const artistKey = "LOWER(TRIM(artist))"

// Stats summarizes the library. Songs updated at or after since count as
// updated today.
func (r *SongRepository) Stats(ctx context.Context, since time.Time) (*models.LibraryStats, error) {
	stats := &models.LibraryStats{
		RecentSongs:        []models.RecentSong{},
		ArtistDistribution: []models.CountByName{},
		ToneDistribution:   []models.CountByName{},
	}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT `+artistKey+`),
			COALESCE(SUM(CASE WHEN COALESCE(youtube_url, '') <> '' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN capo IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN updated_at >= ? THEN 1 ELSE 0 END), 0)
		FROM songs
	`, formatTime(since)).Scan(
		&stats.TotalSongs,
		&stats.TotalArtists,
		&stats.WithVideo,
		&stats.WithCapo,
		&stats.UpdatedToday,
	)
	if err != nil {
		return nil, err
	}

	// Recent songs (last 10)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, artist, updated_at
		FROM songs
		ORDER BY updated_at DESC, id DESC
		LIMIT ?
	`, topN)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			s         models.RecentSong
			updatedAt string
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.Artist, &updatedAt); err != nil {
			return nil, err
		}
		if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		stats.RecentSongs = append(stats.RecentSongs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// same key as TotalArtists; the bucket shows one of its spellings
	if stats.ArtistDistribution, err = r.countBy(ctx, "TRIM(artist)", artistKey); err != nil {
		return nil, err
	}
	tone := "COALESCE(NULLIF(tone, ''), '?')"
	if stats.ToneDistribution, err = r.countBy(ctx, tone, tone); err != nil {
		return nil, err
	}

	return stats, nil
}

// countBy groups songs by key and names each group by the smallest label in
// it, largest groups first. Neither expression is ever user input.
func (r *SongRepository) countBy(ctx context.Context, label, key string) ([]models.CountByName, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT MIN(`+label+`) AS label, COUNT(*) AS total
		FROM songs
		GROUP BY `+key+`
		ORDER BY total DESC, label ASC
		LIMIT ?
	`, topN)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.CountByName{}
	for rows.Next() {
		var c models.CountByName
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
