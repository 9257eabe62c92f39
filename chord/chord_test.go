package chord

import (
	"testing"

	"github.com/cwbudde/algo-omnichord/tuning"
)

func TestGridLayout(t *testing.T) {
	g := Grid()
	if len(g) != 84 {
		t.Fatalf("expected 84 grid chords, got %d", len(g))
	}
	first := g[0]
	if first.Name != "C" || first.Row != 0 || first.Col != 0 || first.Color != 0xFBE0E5 {
		t.Fatalf("unexpected first chord: %+v", first)
	}
	last := g[len(g)-1]
	if last.Name != "B°" || last.Row != 6 || last.Col != 11 || last.TypeName != "Diminished" {
		t.Fatalf("unexpected last chord: %+v", last)
	}
}

func TestGridChordsDoNotShareIntervals(t *testing.T) {
	g := Grid()
	g[0].Intervals[0] = 99
	if Grid()[0].Intervals[0] != 0 {
		t.Fatalf("grid chords must not alias the type table")
	}
	if Types[0].Intervals[0] != 0 {
		t.Fatalf("type table mutated through grid chord")
	}
}

func TestLookup(t *testing.T) {
	cases := []struct {
		name      string
		want      string
		root      tuning.PitchClass
		intervals []int
	}{
		{"C", "C", tuning.C, []int{0, 4, 7}},
		{"F#m7", "F#m7", tuning.FSharp, []int{0, 3, 7, 10}},
		{"Bb+", "A#+", tuning.ASharp, []int{0, 4, 8}},
		{"Edim", "E°", tuning.E, []int{0, 3, 6}},
		{"GM7", "GM7", tuning.G, []int{0, 4, 7, 11}},
	}
	for _, tc := range cases {
		c, ok := Lookup(tc.name)
		if !ok {
			t.Fatalf("Lookup(%q) failed", tc.name)
		}
		if c.Name != tc.want || c.Root != tc.root {
			t.Fatalf("Lookup(%q) = %s/%v want %s/%v", tc.name, c.Name, c.Root, tc.want, tc.root)
		}
		if len(c.Intervals) != len(tc.intervals) {
			t.Fatalf("Lookup(%q) intervals=%v want %v", tc.name, c.Intervals, tc.intervals)
		}
		for i := range tc.intervals {
			if c.Intervals[i] != tc.intervals[i] {
				t.Fatalf("Lookup(%q) intervals=%v want %v", tc.name, c.Intervals, tc.intervals)
			}
		}
	}
	for _, bad := range []string{"", "H", "Cmaj9", "X7"} {
		if _, ok := Lookup(bad); ok {
			t.Fatalf("Lookup(%q) should fail", bad)
		}
	}
}

func TestToneOffsetWrapsByOctave(t *testing.T) {
	c, _ := Lookup("C")
	for i := 0; i < 3; i++ {
		lo, err := c.ToneOffset(i)
		if err != nil {
			t.Fatalf("ToneOffset(%d): %v", i, err)
		}
		hi, err := c.ToneOffset(i + 3)
		if err != nil {
			t.Fatalf("ToneOffset(%d): %v", i+3, err)
		}
		if hi != lo+12 {
			t.Fatalf("index %d should be one octave above %d: %d vs %d", i+3, i, hi, lo)
		}
	}
	big, err := c.ToneOffset(3*10 + 1)
	if err != nil || big != 4+120 {
		t.Fatalf("large index: got=%d err=%v want=124", big, err)
	}
	if _, err := c.ToneOffset(-1); err == nil {
		t.Fatalf("expected error for negative index")
	}
	if _, err := (Chord{Name: "empty"}).ToneOffset(0); err == nil {
		t.Fatalf("expected error for empty chord")
	}
}

func TestNewCopiesIntervals(t *testing.T) {
	iv := []int{0, 7, 12}
	c, err := New(tuning.D, iv, "D5")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	iv[0] = 5
	if c.Intervals[0] != 0 {
		t.Fatalf("chord aliased caller intervals")
	}
	if _, err := New(tuning.D, nil, "none"); err == nil {
		t.Fatalf("expected error for empty intervals")
	}
}

func TestMIDINotes(t *testing.T) {
	c, _ := Lookup("Am")
	got := c.MIDINotes(4)
	want := []int{69, 72, 76}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MIDINotes=%v want %v", got, want)
		}
	}
}
