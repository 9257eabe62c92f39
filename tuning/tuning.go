// Package tuning maps pitch names to 12-tone equal temperament frequencies
// referenced to A4 = 440 Hz.
package tuning

import (
	"fmt"
	"math"
	"strings"
)

const (
	// ReferenceFreq is the frequency of A4.
	ReferenceFreq = 440.0
	// ReferenceOctave is the octave of the reference pitch.
	ReferenceOctave = 4
	// DefaultOctave is the octave chord roots are voiced in.
	DefaultOctave = 4
	// FallbackFreq is returned for unknown pitch names.
	FallbackFreq = 440.0

	semitonesPerOctave = 12
	referenceSemitone  = 9 // A
)

// PitchClass is one of the 12 chromatic pitch names, C = 0 .. B = 11.
type PitchClass int

const (
	C PitchClass = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

var pitchNames = [semitonesPerOctave]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchClasses returns all pitch classes in chromatic order starting at C.
func PitchClasses() []PitchClass {
	out := make([]PitchClass, semitonesPerOctave)
	for i := range out {
		out[i] = PitchClass(i)
	}
	return out
}

// Valid reports whether p is one of the 12 pitch classes.
func (p PitchClass) Valid() bool {
	return p >= C && p <= B
}

// Semitone returns the index of p above C.
func (p PitchClass) Semitone() int {
	return int(p)
}

func (p PitchClass) String() string {
	if !p.Valid() {
		return fmt.Sprintf("PitchClass(%d)", int(p))
	}
	return pitchNames[p]
}

// ParsePitchClass parses "C", "C#", "Db", ... Flats are accepted and
// normalised to their sharp spelling.
func ParsePitchClass(name string) (PitchClass, bool) {
	s := strings.TrimSpace(name)
	if s == "" {
		return 0, false
	}
	for i, n := range pitchNames {
		if strings.EqualFold(s, n) {
			return PitchClass(i), true
		}
	}
	if len(s) == 2 && (s[1] == 'b' || s[1] == 'B') {
		base, ok := ParsePitchClass(s[:1])
		if !ok {
			return 0, false
		}
		return PitchClass((int(base) + semitonesPerOctave - 1) % semitonesPerOctave), true
	}
	return 0, false
}

// FrequencyOf returns the frequency of pitch class p in the given octave.
// Octaves outside 2..6 extrapolate the same formula. An invalid pitch class
// yields FallbackFreq.
func FrequencyOf(p PitchClass, octave int) float64 {
	if !p.Valid() {
		return FallbackFreq
	}
	// Offset within the reference octave, then scale by whole octaves with
	// Ldexp so octave doubling is exact.
	n := p.Semitone() - referenceSemitone
	f := ReferenceFreq * math.Pow(2, float64(n)/semitonesPerOctave)
	return math.Ldexp(f, octave-ReferenceOctave)
}

// FrequencyOfName resolves a pitch name and returns its frequency, falling
// back to FallbackFreq when the name is unknown.
func FrequencyOfName(name string, octave int) float64 {
	p, ok := ParsePitchClass(name)
	if !ok {
		return FallbackFreq
	}
	return FrequencyOf(p, octave)
}

// IntervalFrequency returns rootFreq shifted by semitoneOffset equal-tempered
// semitones. Whole octaves are applied exactly.
func IntervalFrequency(rootFreq float64, semitoneOffset int) float64 {
	octaves := floorDiv(semitoneOffset, semitonesPerOctave)
	rem := semitoneOffset - octaves*semitonesPerOctave
	f := rootFreq
	if rem != 0 {
		f *= math.Pow(2, float64(rem)/semitonesPerOctave)
	}
	return math.Ldexp(f, octaves)
}

// MIDINote returns the MIDI key number of p in octave (C4 = 60).
func MIDINote(p PitchClass, octave int) int {
	return (octave+1)*semitonesPerOctave + p.Semitone()
}

// MIDINoteToFreq converts a MIDI key number to its frequency.
func MIDINoteToFreq(note int) float64 {
	return IntervalFrequency(ReferenceFreq, note-69)
}

// NearestMIDINote returns the MIDI key closest to freq and the deviation from
// it in cents. ok is false for non-positive or non-finite input.
func NearestMIDINote(freq float64) (note int, cents float64, ok bool) {
	if !(freq > 0) || math.IsInf(freq, 0) {
		return 0, 0, false
	}
	exact := 69 + semitonesPerOctave*math.Log2(freq/ReferenceFreq)
	note = int(math.Round(exact))
	return note, (exact - float64(note)) * 100, true
}

// NoteName formats a MIDI key as pitch class and octave, e.g. "A4".
func NoteName(note int) string {
	octave := floorDiv(note, semitonesPerOctave) - 1
	return fmt.Sprintf("%s%d", PitchClass(note-(octave+1)*semitonesPerOctave), octave)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
