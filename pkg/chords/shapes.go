package chords

// shapes holds common open and barre voicings, strings ordered low E to high e
var shapes = map[string]Shape{
	// Major chords
	"A": {Frets: [6]int{-1, 0, 2, 2, 2, 0}, Fingers: [6]int{0, 0, 1, 2, 3, 0}},
	"B": {Frets: [6]int{-1, 2, 4, 4, 4, 2}, Fingers: [6]int{0, 1, 2, 3, 4, 1}, Barres: []Barre{{Fret: 2, From: 1, To: 5}}},
	"C": {Frets: [6]int{-1, 3, 2, 0, 1, 0}, Fingers: [6]int{0, 3, 2, 0, 1, 0}},
	"D": {Frets: [6]int{-1, -1, 0, 2, 3, 2}, Fingers: [6]int{0, 0, 0, 1, 3, 2}},
	"E": {Frets: [6]int{0, 2, 2, 1, 0, 0}, Fingers: [6]int{0, 2, 3, 1, 0, 0}},
	"F": {Frets: [6]int{1, 3, 3, 2, 1, 1}, Fingers: [6]int{1, 3, 4, 2, 1, 1}, Barres: []Barre{{Fret: 1, From: 0, To: 5}}},
	"G": {Frets: [6]int{3, 2, 0, 0, 0, 3}, Fingers: [6]int{2, 1, 0, 0, 0, 3}},

	// Minor chords
	"Am": {Frets: [6]int{-1, 0, 2, 2, 1, 0}, Fingers: [6]int{0, 0, 2, 3, 1, 0}},
	"Bm": {Frets: [6]int{-1, 2, 4, 4, 3, 2}, Fingers: [6]int{0, 1, 3, 4, 2, 1}, Barres: []Barre{{Fret: 2, From: 1, To: 5}}},
	"Cm": {Frets: [6]int{-1, 3, 5, 5, 4, 3}, Fingers: [6]int{0, 1, 3, 4, 2, 1}, Barres: []Barre{{Fret: 3, From: 1, To: 5}}, BaseFret: 3},
	"Dm": {Frets: [6]int{-1, -1, 0, 2, 3, 1}, Fingers: [6]int{0, 0, 0, 2, 3, 1}},
	"Em": {Frets: [6]int{0, 2, 2, 0, 0, 0}, Fingers: [6]int{0, 2, 3, 0, 0, 0}},
	"Fm": {Frets: [6]int{1, 3, 3, 1, 1, 1}, Fingers: [6]int{1, 3, 4, 1, 1, 1}, Barres: []Barre{{Fret: 1, From: 0, To: 5}}},
	"Gm": {Frets: [6]int{3, 5, 5, 3, 3, 3}, Fingers: [6]int{1, 3, 4, 1, 1, 1}, Barres: []Barre{{Fret: 3, From: 0, To: 5}}, BaseFret: 3},

	// 7th chords
	"A7": {Frets: [6]int{-1, 0, 2, 0, 2, 0}, Fingers: [6]int{0, 0, 1, 0, 2, 0}},
	"B7": {Frets: [6]int{-1, 2, 1, 2, 0, 2}, Fingers: [6]int{0, 2, 1, 3, 0, 4}},
	"C7": {Frets: [6]int{-1, 3, 2, 3, 1, 0}, Fingers: [6]int{0, 3, 2, 4, 1, 0}},
	"D7": {Frets: [6]int{-1, -1, 0, 2, 1, 2}, Fingers: [6]int{0, 0, 0, 2, 1, 3}},
	"E7": {Frets: [6]int{0, 2, 0, 1, 0, 0}, Fingers: [6]int{0, 2, 0, 1, 0, 0}},
	"F7": {Frets: [6]int{1, 3, 1, 2, 1, 1}, Fingers: [6]int{1, 3, 1, 2, 1, 1}, Barres: []Barre{{Fret: 1, From: 0, To: 5}}},
	"G7": {Frets: [6]int{3, 2, 0, 0, 0, 1}, Fingers: [6]int{3, 2, 0, 0, 0, 1}},

	// Major 7th chords
	"A7M": {Frets: [6]int{-1, 0, 2, 1, 2, 0}, Fingers: [6]int{0, 0, 2, 1, 3, 0}},
	"C7M": {Frets: [6]int{-1, 3, 2, 0, 0, 0}, Fingers: [6]int{0, 3, 2, 0, 0, 0}},
	"D7M": {Frets: [6]int{-1, -1, 0, 2, 2, 2}, Fingers: [6]int{0, 0, 0, 1, 1, 1}},
	"E7M": {Frets: [6]int{0, 2, 1, 1, 0, 0}, Fingers: [6]int{0, 3, 1, 2, 0, 0}},
	"F7M": {Frets: [6]int{1, -1, 2, 2, 1, 0}, Fingers: [6]int{1, 0, 3, 4, 2, 0}},
	"G7M": {Frets: [6]int{3, 2, 0, 0, 0, 2}, Fingers: [6]int{2, 1, 0, 0, 0, 3}},

	// Minor 7th chords
	"Am7": {Frets: [6]int{-1, 0, 2, 0, 1, 0}, Fingers: [6]int{0, 0, 2, 0, 1, 0}},
	"Bm7": {Frets: [6]int{-1, 2, 4, 2, 3, 2}, Fingers: [6]int{0, 1, 3, 1, 2, 1}, Barres: []Barre{{Fret: 2, From: 1, To: 5}}},
	"Cm7": {Frets: [6]int{-1, 3, 5, 3, 4, 3}, Fingers: [6]int{0, 1, 3, 1, 2, 1}, Barres: []Barre{{Fret: 3, From: 1, To: 5}}, BaseFret: 3},
	"Dm7": {Frets: [6]int{-1, -1, 0, 2, 1, 1}, Fingers: [6]int{0, 0, 0, 2, 1, 1}},
	"Em7": {Frets: [6]int{0, 2, 0, 0, 0, 0}, Fingers: [6]int{0, 2, 0, 0, 0, 0}},
	"Fm7": {Frets: [6]int{1, 3, 1, 1, 1, 1}, Fingers: [6]int{1, 3, 1, 1, 1, 1}, Barres: []Barre{{Fret: 1, From: 0, To: 5}}},
	"Gm7": {Frets: [6]int{3, 5, 3, 3, 3, 3}, Fingers: [6]int{1, 3, 1, 1, 1, 1}, Barres: []Barre{{Fret: 3, From: 0, To: 5}}, BaseFret: 3},

	// Sus chords
	"Asus4": {Frets: [6]int{-1, 0, 2, 2, 3, 0}, Fingers: [6]int{0, 0, 1, 2, 3, 0}},
	"Asus2": {Frets: [6]int{-1, 0, 2, 2, 0, 0}, Fingers: [6]int{0, 0, 1, 2, 0, 0}},
	"Dsus4": {Frets: [6]int{-1, -1, 0, 2, 3, 3}, Fingers: [6]int{0, 0, 0, 1, 2, 3}},
	"Dsus2": {Frets: [6]int{-1, -1, 0, 2, 3, 0}, Fingers: [6]int{0, 0, 0, 1, 2, 0}},
	"Esus4": {Frets: [6]int{0, 2, 2, 2, 0, 0}, Fingers: [6]int{0, 2, 3, 4, 0, 0}},

	// Add chords
	"Cadd9": {Frets: [6]int{-1, 3, 2, 0, 3, 0}, Fingers: [6]int{0, 2, 1, 0, 3, 0}},
	"Gadd9": {Frets: [6]int{3, 2, 0, 2, 0, 3}, Fingers: [6]int{2, 1, 0, 3, 0, 4}},
	"Dadd9": {Frets: [6]int{-1, -1, 0, 2, 3, 0}, Fingers: [6]int{0, 0, 0, 1, 2, 0}},
	"Aadd9": {Frets: [6]int{-1, 0, 2, 2, 2, 0}, Fingers: [6]int{0, 0, 1, 2, 3, 0}},
	"Eadd9": {Frets: [6]int{0, 2, 2, 1, 0, 2}, Fingers: [6]int{0, 2, 3, 1, 0, 4}},

	// Dominant 9ths
	"C9": {Frets: [6]int{-1, 3, 2, 3, 3, 3}, Fingers: [6]int{0, 2, 1, 3, 3, 3}},
	"G9": {Frets: [6]int{3, 2, 0, 2, 0, 1}, Fingers: [6]int{3, 2, 0, 4, 0, 1}},
	"D9": {Frets: [6]int{-1, -1, 0, 2, 1, 0}, Fingers: [6]int{0, 0, 0, 2, 1, 0}},
	"A9": {Frets: [6]int{-1, 0, 2, 4, 2, 3}, Fingers: [6]int{0, 0, 1, 3, 1, 2}},
	"E9": {Frets: [6]int{0, 2, 0, 1, 0, 2}, Fingers: [6]int{0, 2, 0, 1, 0, 3}},
	"F9": {Frets: [6]int{1, 0, 1, 2, 1, -1}, Fingers: [6]int{1, 0, 2, 4, 3, 0}},
	"B9": {Frets: [6]int{-1, 2, 1, 2, 2, 2}, Fingers: [6]int{0, 2, 1, 3, 3, 4}},

	// Sharp/Flat variations
	"A#": {Frets: [6]int{-1, 1, 3, 3, 3, 1}, Fingers: [6]int{0, 1, 2, 3, 4, 1}, Barres: []Barre{{Fret: 1, From: 1, To: 5}}},
	"Bb": {Frets: [6]int{-1, 1, 3, 3, 3, 1}, Fingers: [6]int{0, 1, 2, 3, 4, 1}, Barres: []Barre{{Fret: 1, From: 1, To: 5}}},
	"C#": {Frets: [6]int{-1, 4, 6, 6, 6, 4}, Fingers: [6]int{0, 1, 2, 3, 4, 1}, Barres: []Barre{{Fret: 4, From: 1, To: 5}}, BaseFret: 4},
	"Db": {Frets: [6]int{-1, 4, 6, 6, 6, 4}, Fingers: [6]int{0, 1, 2, 3, 4, 1}, Barres: []Barre{{Fret: 4, From: 1, To: 5}}, BaseFret: 4},
	"D#": {Frets: [6]int{-1, 6, 8, 8, 8, 6}, Fingers: [6]int{0, 1, 2, 3, 4, 1}, Barres: []Barre{{Fret: 6, From: 1, To: 5}}, BaseFret: 6},
	"Eb": {Frets: [6]int{-1, 6, 8, 8, 8, 6}, Fingers: [6]int{0, 1, 2, 3, 4, 1}, Barres: []Barre{{Fret: 6, From: 1, To: 5}}, BaseFret: 6},
	"F#": {Frets: [6]int{2, 4, 4, 3, 2, 2}, Fingers: [6]int{1, 3, 4, 2, 1, 1}, Barres: []Barre{{Fret: 2, From: 0, To: 5}}},
	"Gb": {Frets: [6]int{2, 4, 4, 3, 2, 2}, Fingers: [6]int{1, 3, 4, 2, 1, 1}, Barres: []Barre{{Fret: 2, From: 0, To: 5}}},
	"G#": {Frets: [6]int{4, 6, 6, 5, 4, 4}, Fingers: [6]int{1, 3, 4, 2, 1, 1}, Barres: []Barre{{Fret: 4, From: 0, To: 5}}, BaseFret: 4},
	"Ab": {Frets: [6]int{4, 6, 6, 5, 4, 4}, Fingers: [6]int{1, 3, 4, 2, 1, 1}, Barres: []Barre{{Fret: 4, From: 0, To: 5}}, BaseFret: 4},

	// Sharp/Flat minors
	"A#m": {Frets: [6]int{-1, 1, 3, 3, 2, 1}, Fingers: [6]int{0, 1, 3, 4, 2, 1}, Barres: []Barre{{Fret: 1, From: 1, To: 5}}},
	"Bbm": {Frets: [6]int{-1, 1, 3, 3, 2, 1}, Fingers: [6]int{0, 1, 3, 4, 2, 1}, Barres: []Barre{{Fret: 1, From: 1, To: 5}}},
	"C#m": {Frets: [6]int{-1, 4, 6, 6, 5, 4}, Fingers: [6]int{0, 1, 3, 4, 2, 1}, Barres: []Barre{{Fret: 4, From: 1, To: 5}}, BaseFret: 4},
	"Dbm": {Frets: [6]int{-1, 4, 6, 6, 5, 4}, Fingers: [6]int{0, 1, 3, 4, 2, 1}, Barres: []Barre{{Fret: 4, From: 1, To: 5}}, BaseFret: 4},
	"D#m": {Frets: [6]int{-1, 6, 8, 8, 7, 6}, Fingers: [6]int{0, 1, 3, 4, 2, 1}, Barres: []Barre{{Fret: 6, From: 1, To: 5}}, BaseFret: 6},
	"Ebm": {Frets: [6]int{-1, 6, 8, 8, 7, 6}, Fingers: [6]int{0, 1, 3, 4, 2, 1}, Barres: []Barre{{Fret: 6, From: 1, To: 5}}, BaseFret: 6},
	"F#m": {Frets: [6]int{2, 4, 4, 2, 2, 2}, Fingers: [6]int{1, 3, 4, 1, 1, 1}, Barres: []Barre{{Fret: 2, From: 0, To: 5}}},
	"Gbm": {Frets: [6]int{2, 4, 4, 2, 2, 2}, Fingers: [6]int{1, 3, 4, 1, 1, 1}, Barres: []Barre{{Fret: 2, From: 0, To: 5}}},
	"G#m": {Frets: [6]int{4, 6, 6, 4, 4, 4}, Fingers: [6]int{1, 3, 4, 1, 1, 1}, Barres: []Barre{{Fret: 4, From: 0, To: 5}}, BaseFret: 4},
	"Abm": {Frets: [6]int{4, 6, 6, 4, 4, 4}, Fingers: [6]int{1, 3, 4, 1, 1, 1}, Barres: []Barre{{Fret: 4, From: 0, To: 5}}, BaseFret: 4},

	// Additional 7th variations
	"F#m7": {Frets: [6]int{2, 4, 2, 2, 2, 2}, Fingers: [6]int{1, 3, 1, 1, 1, 1}, Barres: []Barre{{Fret: 2, From: 0, To: 5}}},
	"G#m7": {Frets: [6]int{4, 6, 4, 4, 4, 4}, Fingers: [6]int{1, 3, 1, 1, 1, 1}, Barres: []Barre{{Fret: 4, From: 0, To: 5}}, BaseFret: 4},
	"C#m7": {Frets: [6]int{-1, 4, 6, 4, 5, 4}, Fingers: [6]int{0, 1, 3, 1, 2, 1}, Barres: []Barre{{Fret: 4, From: 1, To: 5}}, BaseFret: 4},

	// Dim chords
	"Adim": {Frets: [6]int{-1, 0, 1, 2, 1, -1}, Fingers: [6]int{0, 0, 1, 3, 2, 0}},
	"Bdim": {Frets: [6]int{-1, 2, 3, 4, 3, -1}, Fingers: [6]int{0, 1, 2, 4, 3, 0}},
	"Cdim": {Frets: [6]int{-1, 3, 4, 5, 4, -1}, Fingers: [6]int{0, 1, 2, 4, 3, 0}, BaseFret: 3},
	"Ddim": {Frets: [6]int{-1, -1, 0, 1, 0, 1}, Fingers: [6]int{0, 0, 0, 1, 0, 2}},
	"Edim": {Frets: [6]int{0, 1, 2, 0, 2, 0}, Fingers: [6]int{0, 1, 2, 0, 3, 0}},

	// Aug chords
	"Caug": {Frets: [6]int{-1, 3, 2, 1, 1, 0}, Fingers: [6]int{0, 4, 3, 1, 2, 0}},
	"Eaug": {Frets: [6]int{0, 3, 2, 1, 1, 0}, Fingers: [6]int{0, 4, 3, 1, 2, 0}},
	"Gaug": {Frets: [6]int{3, 2, 1, 0, 0, 3}, Fingers: [6]int{3, 2, 1, 0, 0, 4}},

	// 4 chords (sus4 alternative notation)
	"A4": {Frets: [6]int{-1, 0, 2, 2, 3, 0}, Fingers: [6]int{0, 0, 1, 2, 3, 0}},
	"D4": {Frets: [6]int{-1, -1, 0, 2, 3, 3}, Fingers: [6]int{0, 0, 0, 1, 2, 3}},
	"E4": {Frets: [6]int{0, 2, 2, 2, 0, 0}, Fingers: [6]int{0, 2, 3, 4, 0, 0}},
	"G4": {Frets: [6]int{3, 3, 0, 0, 1, 3}, Fingers: [6]int{2, 3, 0, 0, 1, 4}},

	// Power chords (5)
	"A5": {Frets: [6]int{-1, 0, 2, 2, -1, -1}, Fingers: [6]int{0, 0, 1, 2, 0, 0}},
	"B5": {Frets: [6]int{-1, 2, 4, 4, -1, -1}, Fingers: [6]int{0, 1, 3, 4, 0, 0}},
	"C5": {Frets: [6]int{-1, 3, 5, 5, -1, -1}, Fingers: [6]int{0, 1, 3, 4, 0, 0}},
	"D5": {Frets: [6]int{-1, -1, 0, 2, 3, -1}, Fingers: [6]int{0, 0, 0, 1, 2, 0}},
	"E5": {Frets: [6]int{0, 2, 2, -1, -1, -1}, Fingers: [6]int{0, 1, 2, 0, 0, 0}},
	"F5": {Frets: [6]int{1, 3, 3, -1, -1, -1}, Fingers: [6]int{1, 3, 4, 0, 0, 0}},
	"G5": {Frets: [6]int{3, 5, 5, -1, -1, -1}, Fingers: [6]int{1, 3, 4, 0, 0, 0}},
}
