// Package chord defines the chord model shared by the instrument and the
// static chord grid (12 roots x 7 chord types).
package chord

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-omnichord/tuning"
)

// Chord is an immutable chord definition. Intervals are semitone offsets
// from Root, in strum order; they need not be sorted or unique.
type Chord struct {
	Name      string
	Root      tuning.PitchClass
	Intervals []int
	TypeName  string
	// Color is an opaque UI attribute.
	Color uint32
	Row   int
	Col   int
}

// Type is one row of the chord grid.
type Type struct {
	Suffix    string
	Intervals []int
	Name      string
}

// Types lists the chord grid rows in display order.
var Types = []Type{
	{Suffix: "", Intervals: []int{0, 4, 7}, Name: "Major"},
	{Suffix: "m", Intervals: []int{0, 3, 7}, Name: "Minor"},
	{Suffix: "M7", Intervals: []int{0, 4, 7, 11}, Name: "Major 7"},
	{Suffix: "m7", Intervals: []int{0, 3, 7, 10}, Name: "Minor 7"},
	{Suffix: "7", Intervals: []int{0, 4, 7, 10}, Name: "Dominant"},
	{Suffix: "+", Intervals: []int{0, 4, 8}, Name: "Augmented"},
	{Suffix: "°", Intervals: []int{0, 3, 6}, Name: "Diminished"},
}

var columnColors = [12]uint32{
	0xFBE0E5, 0xFDCEDF, 0xFDFFBC, 0xFFF89A,
	0xE8D5FD, 0xDFCCFB, 0xD0BFFF, 0xBEADFA,
	0xD6EAFF, 0xB4E4FF, 0xD7F7E5, 0xCCF6C8,
}

// New builds a chord, copying intervals so the caller's slice can be reused.
func New(root tuning.PitchClass, intervals []int, name string) (Chord, error) {
	if !root.Valid() {
		return Chord{}, fmt.Errorf("invalid root %v", root)
	}
	if len(intervals) == 0 {
		return Chord{}, fmt.Errorf("chord %q has no intervals", name)
	}
	iv := make([]int, len(intervals))
	copy(iv, intervals)
	if name == "" {
		name = root.String()
	}
	return Chord{Name: name, Root: root, Intervals: iv}, nil
}

// Grid returns the full chord grid in row-major order (type, then root).
func Grid() []Chord {
	roots := tuning.PitchClasses()
	out := make([]Chord, 0, len(Types)*len(roots))
	for row, ct := range Types {
		for col, root := range roots {
			iv := make([]int, len(ct.Intervals))
			copy(iv, ct.Intervals)
			out = append(out, Chord{
				Name:      root.String() + ct.Suffix,
				Root:      root,
				Intervals: iv,
				TypeName:  ct.Name,
				Color:     columnColors[col],
				Row:       row,
				Col:       col,
			})
		}
	}
	return out
}

// Lookup finds a grid chord by name, e.g. "C", "F#m7", "Bb+", "Edim".
func Lookup(name string) (Chord, bool) {
	s := strings.TrimSpace(name)
	if s == "" {
		return Chord{}, false
	}
	n := 1
	if len(s) > 1 && (s[1] == '#' || s[1] == 'b') {
		n = 2
	}
	root, ok := tuning.ParsePitchClass(s[:n])
	if !ok {
		return Chord{}, false
	}
	suffix := s[n:]
	if suffix == "dim" || suffix == "o" {
		suffix = "°"
	}
	if suffix == "aug" {
		suffix = "+"
	}
	for row, ct := range Types {
		if ct.Suffix != suffix {
			continue
		}
		col := root.Semitone()
		iv := make([]int, len(ct.Intervals))
		copy(iv, ct.Intervals)
		return Chord{
			Name:      root.String() + ct.Suffix,
			Root:      root,
			Intervals: iv,
			TypeName:  ct.Name,
			Color:     columnColors[col],
			Row:       row,
			Col:       col,
		}, true
	}
	return Chord{}, false
}

// ToneOffset returns the semitone offset from the root for strum position
// noteIndex. Indices past the last interval wrap into higher octaves.
func (c Chord) ToneOffset(noteIndex int) (int, error) {
	n := len(c.Intervals)
	if n == 0 {
		return 0, fmt.Errorf("chord %q has no intervals", c.Name)
	}
	if noteIndex < 0 {
		return 0, fmt.Errorf("negative note index %d", noteIndex)
	}
	return c.Intervals[noteIndex%n] + 12*(noteIndex/n), nil
}

// RootFrequency returns the frequency of the root in octave.
func (c Chord) RootFrequency(octave int) float64 {
	return tuning.FrequencyOf(c.Root, octave)
}

// MIDINotes returns the MIDI key of each interval with the root in octave.
func (c Chord) MIDINotes(octave int) []int {
	base := tuning.MIDINote(c.Root, octave)
	out := make([]int, len(c.Intervals))
	for i, iv := range c.Intervals {
		out[i] = base + iv
	}
	return out
}

func (c Chord) String() string {
	return c.Name
}
