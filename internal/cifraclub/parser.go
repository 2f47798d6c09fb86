// Package cifraclub scrapes chord sheets from CifraClub pages.
//
// Extraction is best effort: every field degrades to an empty value when the
// markup does not match. Only an invalid URL or a failed page fetch is an error.
package cifraclub

import (
	"context"
	"strings"

	"github.com/AndrewDonelson/viola-flow/internal/apperr"
	"github.com/AndrewDonelson/viola-flow/internal/models"
	"go.uber.org/zap"
)

// DefaultHost is the substring a source URL must contain
const DefaultHost = "cifraclub.com.br"

// PageFetcher downloads a page body
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// VideoFinder resolves "<title> <artist>" to a watch URL
type VideoFinder interface {
	Find(ctx context.Context, query string) (string, error)
}

// Parser fetches and extracts chord sheets
type Parser struct {
	host    string
	fetcher PageFetcher
	videos  VideoFinder
	log     *zap.Logger
}

// Option configures a Parser
type Option func(*Parser)

// WithHost changes the accepted host substring
func WithHost(host string) Option {
	return func(p *Parser) {
		if host != "" {
			p.host = host
		}
	}
}

// WithVideoFinder enables the companion video lookup
func WithVideoFinder(f VideoFinder) Option {
	return func(p *Parser) {
		p.videos = f
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(p *Parser) {
		if log != nil {
			p.log = log
		}
	}
}

// NewParser creates a parser over fetcher
func NewParser(fetcher PageFetcher, opts ...Option) *Parser {
	p := &Parser{
		host:    DefaultHost,
		fetcher: fetcher,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Host returns the accepted host substring
func (p *Parser) Host() string {
	return p.host
}

// Accepts reports whether pageURL belongs to the source site
func (p *Parser) Accepts(pageURL string) bool {
	return IsSourceURL(pageURL, p.host)
}

// IsSourceURL reports whether s is non-blank and contains host
func IsSourceURL(s, host string) bool {
	s = strings.TrimSpace(s)
	return s != "" && strings.Contains(s, host)
}

// Parse fetches pageURL and extracts a chord sheet from it
func (p *Parser) Parse(ctx context.Context, pageURL string) (*models.ParsedCifra, error) {
	pageURL = strings.TrimSpace(pageURL)
	if !p.Accepts(pageURL) {
		return nil, apperr.InvalidInput("Invalid CifraClub URL")
	}

	page, err := p.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		p.log.Warn("Chord sheet fetch failed", zap.String("url", pageURL), zap.Error(err))
		return nil, err
	}

	parsed := ParsePage(page)
	parsed.CifraClubURL = pageURL

	if parsed.Title == "" || parsed.Content == "" {
		p.log.Debug("Chord sheet parsed partially",
			zap.String("url", pageURL),
			zap.Bool("has_title", parsed.Title != ""),
			zap.Bool("has_content", parsed.Content != ""))
	}

	if p.videos != nil && parsed.Title != "" && parsed.Artist != "" {
		videoURL, err := p.videos.Find(ctx, parsed.Title+" "+parsed.Artist)
		if err != nil {
			p.log.Debug("Video lookup skipped", zap.String("url", pageURL), zap.Error(err))
		} else {
			parsed.YoutubeURL = videoURL
		}
	}

	return &parsed, nil
}

// ParsePage extracts every field from an already downloaded page
func ParsePage(page string) models.ParsedCifra {
	return models.ParsedCifra{
		Title:   extractTitle(page),
		Artist:  extractArtist(page),
		Tone:    extractTone(page),
		Capo:    extractCapo(page),
		Content: extractContent(page),
	}
}
