// Package chords holds guitar chord shapes and renders them as SVG diagrams.
package chords

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// Muted marks a string that is not played
const Muted = -1

// Barre is one finger pressing several strings on the same fret
type Barre struct {
	Fret int `json:"fret"`
	From int `json:"fromString"`
	To   int `json:"toString"`
}

// Shape is a six string voicing. Frets are absolute; 0 is an open string.
type Shape struct {
	Frets    [6]int  `json:"frets"`
	Fingers  [6]int  `json:"fingers"`
	Barres   []Barre `json:"barres,omitempty"`
	BaseFret int     `json:"baseFret,omitempty"`
}

var aliases = strings.NewReplacer("maj7", "7M", "Maj7", "7M")

// Normalize maps alternative spellings onto the names used by the shape table
func Normalize(name string) string {
	return aliases.Replace(strings.TrimSpace(name))
}

// Lookup returns the shape for name
func Lookup(name string) (Shape, bool) {
	s, ok := shapes[Normalize(name)]
	return s, ok
}

// Has reports whether a diagram exists for name
func Has(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// Names lists every known chord, sorted
func Names() []string {
	names := make([]string, 0, len(shapes))
	for n := range shapes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

const (
	stringSpacing = 12
	fretSpacing   = 16
	startX        = 10
	startY        = 30
	numFrets      = 5
)

type palette struct {
	stroke, text, dot, open, finger string
}

var (
	lightPalette = palette{stroke: "#333", text: "#333", dot: "#333", open: "#666", finger: "#fff"}
	darkPalette  = palette{stroke: "#888", text: "#fff", dot: "#fff", open: "#888", finger: "#333"}
)

// SVG renders the diagram for name. Unknown chords get a placeholder with a
// question mark.
func SVG(name string, dark bool) string {
	label := html.EscapeString(name)

	shape, ok := Lookup(name)
	if !ok {
		text, muted := "#333", "#999"
		if dark {
			text, muted = "#fff", "#888"
		}
		return `<svg viewBox="0 0 80 100" class="chord-diagram">` +
			fmt.Sprintf(`<text x="40" y="15" text-anchor="middle" font-size="12" font-weight="bold" fill="%s">%s</text>`, text, label) +
			fmt.Sprintf(`<text x="40" y="60" text-anchor="middle" font-size="10" fill="%s">?</text>`, muted) +
			`</svg>`
	}

	p := lightPalette
	if dark {
		p = darkPalette
	}

	base := shape.BaseFret
	if base < 1 {
		base = 1
	}

	var b strings.Builder
	b.WriteString(`<svg viewBox="0 0 80 110" class="chord-diagram">`)
	fmt.Fprintf(&b, `<text x="40" y="12" text-anchor="middle" font-size="11" font-weight="bold" fill="%s">%s</text>`, p.text, label)

	if base > 1 {
		fmt.Fprintf(&b, `<text x="2" y="%d" font-size="9" fill="%s">%da</text>`, startY+fretSpacing, p.text, base)
	} else {
		// nut
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="4" fill="%s"/>`, startX, startY-2, stringSpacing*5, p.stroke)
	}

	for i := 0; i <= numFrets; i++ {
		y := startY + i*fretSpacing
		fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1"/>`,
			startX, y, startX+stringSpacing*5, y, p.stroke)
	}
	for i := 0; i < 6; i++ {
		x := startX + i*stringSpacing
		fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1"/>`,
			x, startY, x, startY+numFrets*fretSpacing, p.stroke)
	}

	for _, barre := range shape.Barres {
		y := startY + (barre.Fret-base)*fretSpacing + fretSpacing/2
		fromX := startX + barre.From*stringSpacing
		toX := startX + barre.To*stringSpacing
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="10" rx="5" fill="%s"/>`,
			fromX-4, y-5, toX-fromX+8, p.dot)
	}

	for i, fret := range shape.Frets {
		x := startX + i*stringSpacing
		switch {
		case fret == Muted:
			fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle" font-size="10" fill="%s">x</text>`, x, startY-6, p.open)
		case fret == 0:
			fmt.Fprintf(&b, `<circle cx="%d" cy="%d" r="4" fill="none" stroke="%s" stroke-width="1.5"/>`, x, startY-8, p.open)
		case shape.underBarre(i, fret):
			// covered by the barre
		default:
			y := startY + (fret-base)*fretSpacing + fretSpacing/2
			fmt.Fprintf(&b, `<circle cx="%d" cy="%d" r="5" fill="%s"/>`, x, y, p.dot)
			if finger := shape.Fingers[i]; finger > 0 {
				fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle" font-size="7" fill="%s">%d</text>`, x, y+3, p.finger, finger)
			}
		}
	}

	b.WriteString(`</svg>`)
	return b.String()
}

func (s Shape) underBarre(str, fret int) bool {
	for _, barre := range s.Barres {
		if fret == barre.Fret && str >= barre.From && str <= barre.To {
			return true
		}
	}
	return false
}
