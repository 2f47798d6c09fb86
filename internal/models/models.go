package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Song defaults applied on creation
const (
	DefaultSpeed    = 30
	DefaultFontSize = 16
)

// Song represents a stored chord sheet
type Song struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Artist       string    `json:"artist" db:"artist"`
	Content      string    `json:"content" db:"content"`
	CifraClubURL string    `json:"cifraClubUrl" db:"cifra_club_url"`
	YoutubeURL   string    `json:"youtubeUrl" db:"youtube_url"`
	Tone         string    `json:"tone" db:"tone"`
	Capo         *int      `json:"capo" db:"capo"` // nil means no capo
	Speed        int       `json:"speed" db:"speed"`
	FontSize     int       `json:"fontSize" db:"font_size"`
	HideTabs     bool      `json:"hideTabs" db:"hide_tabs"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// ApplyDefaults fills zero speed and font size
func (s *Song) ApplyDefaults() {
	if s.Speed == 0 {
		s.Speed = DefaultSpeed
	}
	if s.FontSize == 0 {
		s.FontSize = DefaultFontSize
	}
}

// SongInput is the body accepted when creating a song
type SongInput struct {
	Title        string `json:"title" binding:"required"`
	Artist       string `json:"artist"`
	Content      string `json:"content" binding:"required"`
	CifraClubURL string `json:"cifraClubUrl"`
	YoutubeURL   string `json:"youtubeUrl"`
	Tone         string `json:"tone" binding:"max=8"`
	Capo         *int   `json:"capo" binding:"omitempty,min=0"`
	Speed        int    `json:"speed" binding:"min=0"`
	FontSize     int    `json:"fontSize" binding:"min=0"`
	HideTabs     bool   `json:"hideTabs"`
}

// Song converts the input into an unsaved song with defaults applied
func (in SongInput) Song() *Song {
	s := &Song{
		Title:        in.Title,
		Artist:       in.Artist,
		Content:      in.Content,
		CifraClubURL: in.CifraClubURL,
		YoutubeURL:   in.YoutubeURL,
		Tone:         in.Tone,
		Capo:         in.Capo,
		Speed:        in.Speed,
		FontSize:     in.FontSize,
		HideTabs:     in.HideTabs,
	}
	s.ApplyDefaults()
	return s
}

// OptionalInt distinguishes an absent JSON field from an explicit null
type OptionalInt struct {
	Set   bool
	Value *int
}

// SetInt returns an OptionalInt holding v (nil clears the value)
func SetInt(v *int) OptionalInt {
	return OptionalInt{Set: true, Value: v}
}

// UnmarshalJSON records that the field was present
func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	o.Set = true
	if strings.TrimSpace(string(data)) == "null" {
		o.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// MarshalJSON writes the value or null
func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// SongPatch is a partial update; nil fields are left untouched
type SongPatch struct {
	Title        *string     `json:"title"`
	Artist       *string     `json:"artist"`
	Content      *string     `json:"content"`
	CifraClubURL *string     `json:"cifraClubUrl"`
	YoutubeURL   *string     `json:"youtubeUrl"`
	Tone         *string     `json:"tone" binding:"omitempty,max=8"`
	Capo         OptionalInt `json:"capo"`
	Speed        *int        `json:"speed" binding:"omitempty,min=1"`
	FontSize     *int        `json:"fontSize" binding:"omitempty,min=1"`
	HideTabs     *bool       `json:"hideTabs"`
}

// IsEmpty reports whether the patch changes nothing
func (p SongPatch) IsEmpty() bool {
	return p.Title == nil && p.Artist == nil && p.Content == nil &&
		p.CifraClubURL == nil && p.YoutubeURL == nil && p.Tone == nil &&
		!p.Capo.Set && p.Speed == nil && p.FontSize == nil && p.HideTabs == nil
}

// Validate rejects values a stored song may not hold
func (p SongPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return errors.New("title cannot be empty")
	}
	if p.Content != nil && strings.TrimSpace(*p.Content) == "" {
		return errors.New("content cannot be empty")
	}
	if p.Capo.Value != nil && *p.Capo.Value < 0 {
		return errors.New("capo cannot be negative")
	}
	return nil
}

// Apply merges the patch over s
func (p SongPatch) Apply(s *Song) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Artist != nil {
		s.Artist = *p.Artist
	}
	if p.Content != nil {
		s.Content = *p.Content
	}
	if p.CifraClubURL != nil {
		s.CifraClubURL = *p.CifraClubURL
	}
	if p.YoutubeURL != nil {
		s.YoutubeURL = *p.YoutubeURL
	}
	if p.Tone != nil {
		s.Tone = *p.Tone
	}
	if p.Capo.Set {
		s.Capo = p.Capo.Value
	}
	if p.Speed != nil {
		s.Speed = *p.Speed
	}
	if p.FontSize != nil {
		s.FontSize = *p.FontSize
	}
	if p.HideTabs != nil {
		s.HideTabs = *p.HideTabs
	}
}

// ParsedCifra is the normalized result of scraping a chord sheet page
type ParsedCifra struct {
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	Tone         string `json:"tone"`
	Capo         *int   `json:"capo"`
	Content      string `json:"content"`
	YoutubeURL   string `json:"youtubeUrl"`
	CifraClubURL string `json:"cifraClubUrl"`
}

// DuplicateDecision chooses what happens when a parsed sheet matches a stored song
type DuplicateDecision string

const (
	// DecisionAdoptParsed keeps the stored identity and takes the parsed fields
	DecisionAdoptParsed DuplicateDecision = "overwrite"
	// DecisionKeepExisting discards the parse in favour of the stored song
	DecisionKeepExisting DuplicateDecision = "skip"
)

// Valid reports whether d is a known decision
func (d DuplicateDecision) Valid() bool {
	return d == DecisionAdoptParsed || d == DecisionKeepExisting
}

// Import row statuses
const (
	ImportPending = "pending"
	ImportLoading = "loading"
	ImportDone    = "done"
	ImportError   = "error"
	ImportExists  = "exists"
)

// ImportRow is one URL waiting to be imported
type ImportRow struct {
	ID             string       `json:"id"`
	CifraURL       string       `json:"cifraUrl"`
	YoutubeURL     string       `json:"youtubeUrl"`
	Status         string       `json:"status"`
	Error          string       `json:"error,omitempty"`
	ParsedData     *ParsedCifra `json:"parsedData,omitempty"`
	ExistingSongID *int64       `json:"existingSongId,omitempty"`
	SongID         *int64       `json:"songId,omitempty"`
}

// Terminal reports whether the row has finished processing
func (r ImportRow) Terminal() bool {
	return r.Status == ImportDone || r.Status == ImportError || r.Status == ImportExists
}

// ImportProgress counts processed rows of a running batch
type ImportProgress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// ImportBatch is an in-memory group of rows imported together
type ImportBatch struct {
	ID          string         `json:"id"`
	Rows        []ImportRow    `json:"rows"`
	Running     bool           `json:"running"`
	Progress    ImportProgress `json:"progress"`
	CreatedAt   time.Time      `json:"createdAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

// Preferences holds UI settings (singleton row)
type Preferences struct {
	Theme            string    `json:"theme" binding:"omitempty,oneof=light dark"`
	LeftPanelWidth   int       `json:"leftPanelWidth" binding:"min=0"`
	MiddlePanelWidth *int      `json:"middlePanelWidth" binding:"omitempty,min=0"`
	ChordsPanelWidth int       `json:"chordsPanelWidth" binding:"min=0"`
	LastSongID       *int64    `json:"lastSongId"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// RecentSong is a short reference to a recently edited song
type RecentSong struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CountByName is one bucket of a distribution
type CountByName struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// LibraryStats summarizes the stored songs
type LibraryStats struct {
	TotalSongs         int           `json:"totalSongs"`
	TotalArtists       int           `json:"totalArtists"`
	WithVideo          int           `json:"withVideo"`
	WithCapo           int           `json:"withCapo"`
	UpdatedToday       int           `json:"updatedToday"`
	RecentSongs        []RecentSong  `json:"recentSongs"`
	ArtistDistribution []CountByName `json:"artistDistribution"`
	ToneDistribution   []CountByName `json:"toneDistribution"`
}
