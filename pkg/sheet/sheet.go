// Package sheet analyzes plain-text chord sheets: sections, chord lines,
// tablature and the chords a song uses.
package sheet

import (
	"regexp"
	"strings"
	"time"
)

// LineKind classifies a line of a chord sheet
type LineKind string

const (
	KindBlank   LineKind = "blank"
	KindSection LineKind = "section" // "[Refrão]"
	KindChord   LineKind = "chord"
	KindTab     LineKind = "tab"
	KindLyric   LineKind = "lyric"
)

// Line is one classified line
type Line struct {
	Number int      `json:"number"` // zero based
	Text   string   `json:"text"`
	Kind   LineKind `json:"kind"`
}

// Section is a run of lines introduced by a bracketed marker
type Section struct {
	Name      string `json:"name"`
	Number    int    `json:"number"` // which occurrence of Name
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

// Sheet is the analysis of a whole chord sheet
type Sheet struct {
	Lines    []Line    `json:"lines"`
	Sections []Section `json:"sections"`
	Chords   []string  `json:"chords"`
	HasTabs  bool      `json:"hasTabs"`
}

var (
	sectionPattern = regexp.MustCompile(`^\[([^\]]+)\]`)
	tabPattern     = regexp.MustCompile(`(?i)^[EBGDA]\|[-0-9/hpbs~x()\s]+\|?\s*$`)
	chordToken     = regexp.MustCompile(`^[A-G][#b]?(m|M|dim|aug|sus|add|maj|min)?(2|4|5|6|7|9|11|13|7M)?(sus|add|aug|dim)?(2|4|5|6|9|11|13)?(\([^)]+\))?(/[A-G][#b]?)?$`)
	lyricPattern   = regexp.MustCompile(`[a-z]{3,}`)

	// Single letters inside lyrics are almost never chords, so lyric lines
	// only yield chords that carry an accidental or a modifier
	strictChords = regexp.MustCompile(`\b([A-G][#b])(m|M|dim|aug|sus|add|maj|min)?(2|4|5|6|7|9|11|13|7M)?|\b([A-G])(m|M|dim|aug|sus|add|maj|min|2|4|5|6|7|9|11|13|7M)(2|4|5|6|7|9|11|13|7M)?`)
	looseChords  = regexp.MustCompile(`\b([A-G][#b]?)(m|M|dim|aug|sus|add|maj|min)?(2|4|5|6|7|9|11|13|7M)?(sus|add|aug|dim)?(2|4|5|6|9|11|13)?(\([^)]+\))?(/[A-G][#b]?)?\b`)
)

// Analyze classifies every line of content and groups sections
func Analyze(content string) *Sheet {
	raw := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	s := &Sheet{
		Lines:    make([]Line, 0, len(raw)),
		Sections: []Section{},
		Chords:   Chords(content),
	}

	counts := map[string]int{}
	current := -1

	for i, text := range raw {
		kind := classify(text)
		s.Lines = append(s.Lines, Line{Number: i, Text: text, Kind: kind})

		switch kind {
		case KindTab:
			s.HasTabs = true
		case KindSection:
			if current >= 0 {
				s.Sections[current].EndLine = i - 1
			}
			name := strings.TrimSpace(sectionPattern.FindStringSubmatch(strings.TrimSpace(text))[1])
			counts[strings.ToLower(name)]++
			s.Sections = append(s.Sections, Section{
				Name:      name,
				Number:    counts[strings.ToLower(name)],
				StartLine: i,
			})
			current = len(s.Sections) - 1
		}
	}

	if current >= 0 {
		s.Sections[current].EndLine = len(raw) - 1
	}

	return s
}

func classify(text string) LineKind {
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == "":
		return KindBlank
	case sectionPattern.MatchString(trimmed):
		return KindSection
	case tabPattern.MatchString(trimmed):
		return KindTab
	case isChordLine(trimmed):
		return KindChord
	default:
		return KindLyric
	}
}

func isChordLine(trimmed string) bool {
	tokens := strings.Fields(trimmed)
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if !chordToken.MatchString(tok) {
			return false
		}
	}
	return true
}

// Chords returns the distinct chords of content in order of first appearance.
// Tablature is ignored and slash chords are reduced to their base chord.
func Chords(content string) []string {
	seen := map[string]bool{}
	chords := []string{}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if tabPattern.MatchString(trimmed) {
			continue
		}
		// section markers are labels, not lyrics
		trimmed = sectionPattern.ReplaceAllString(trimmed, "")

		pattern := looseChords
		if lyricPattern.MatchString(trimmed) {
			pattern = strictChords
		}

		for _, match := range pattern.FindAllString(trimmed, -1) {
			base := strings.SplitN(match, "/", 2)[0]
			if !seen[base] {
				seen[base] = true
				chords = append(chords, base)
			}
		}
	}

	return chords
}

// HideTabs drops tablature lines from content
func HideTabs(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !tabPattern.MatchString(strings.TrimSpace(line)) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// ScrollInterval is the tick period that advances the viewer one pixel at speed
func ScrollInterval(speed int) time.Duration {
	if speed <= 0 {
		speed = 30
	}
	return time.Second / time.Duration(speed)
}
