package tuning

import (
	"math"
	"testing"
)

func TestReferencePitchIsExact(t *testing.T) {
	if got := FrequencyOf(A, 4); got != 440.0 {
		t.Fatalf("A4 mismatch: got=%v want=440", got)
	}
}

func TestOctaveDoubling(t *testing.T) {
	for _, p := range PitchClasses() {
		for o := 0; o < 9; o++ {
			lo := FrequencyOf(p, o)
			hi := FrequencyOf(p, o+1)
			if hi != 2*lo {
				t.Fatalf("%s%d->%d not doubled: %v vs %v", p, o, o+1, lo, hi)
			}
		}
	}
}

func TestFrequencyMatchesClosedForm(t *testing.T) {
	for _, p := range PitchClasses() {
		for o := 2; o <= 6; o++ {
			n := float64(12*(o-4) + p.Semitone() - 9)
			want := 440 * math.Pow(2, n/12)
			got := FrequencyOf(p, o)
			if math.Abs(got-want) > want*1e-12 {
				t.Fatalf("%s%d: got=%v want=%v", p, o, got, want)
			}
		}
	}
}

func TestUnknownPitchFallsBack(t *testing.T) {
	if got := FrequencyOfName("H", 4); got != FallbackFreq {
		t.Fatalf("expected fallback for unknown name, got %v", got)
	}
	if got := FrequencyOf(PitchClass(42), 4); got != FallbackFreq {
		t.Fatalf("expected fallback for invalid pitch class, got %v", got)
	}
}

func TestIntervalFrequency(t *testing.T) {
	for _, f := range []float64{27.5, 261.6255653005986, 440, 1234.5} {
		if got := IntervalFrequency(f, 0); got != f {
			t.Fatalf("unison changed frequency: got=%v want=%v", got, f)
		}
		if got := IntervalFrequency(f, 12); got != 2*f {
			t.Fatalf("octave up mismatch: got=%v want=%v", got, 2*f)
		}
		if got := IntervalFrequency(f, -12); got != f/2 {
			t.Fatalf("octave down mismatch: got=%v want=%v", got, f/2)
		}
		down := IntervalFrequency(f, -5)
		want := f * math.Pow(2, -5.0/12.0)
		if math.Abs(down-want) > want*1e-12 {
			t.Fatalf("-5 semitones: got=%v want=%v", down, want)
		}
	}
}

func TestMajorTriadFromC4(t *testing.T) {
	root := FrequencyOf(C, 4)
	want := []float64{261.63, 329.63, 391.995}
	for i, interval := range []int{0, 4, 7} {
		got := IntervalFrequency(root, interval)
		if math.Abs(got-want[i]) > 0.01 {
			t.Fatalf("interval %d: got=%v want~%v", interval, got, want[i])
		}
	}
}

func TestParsePitchClass(t *testing.T) {
	cases := []struct {
		in   string
		want PitchClass
		ok   bool
	}{
		{"C", C, true},
		{"c#", CSharp, true},
		{" A ", A, true},
		{"Bb", ASharp, true},
		{"Cb", B, true},
		{"", 0, false},
		{"X", 0, false},
		{"C##", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParsePitchClass(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("ParsePitchClass(%q) = %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestMIDINote(t *testing.T) {
	if got := MIDINote(C, 4); got != 60 {
		t.Fatalf("C4 midi note: got=%d want=60", got)
	}
	if got := MIDINote(A, 4); got != 69 {
		t.Fatalf("A4 midi note: got=%d want=69", got)
	}
	if got := MIDINoteToFreq(69); got != 440 {
		t.Fatalf("MIDI 69 frequency: got=%v want=440", got)
	}
}

func TestNearestMIDINote(t *testing.T) {
	note, cents, ok := NearestMIDINote(440)
	if !ok || note != 69 || math.Abs(cents) > 1e-9 {
		t.Fatalf("440 Hz: got=%d %.3f %v", note, cents, ok)
	}
	note, cents, ok = NearestMIDINote(MIDINoteToFreq(60) * centsRatio(20))
	if !ok || note != 60 || math.Abs(cents-20) > 1e-6 {
		t.Fatalf("C4+20c: got=%d %.3f", note, cents)
	}
	if _, _, ok := NearestMIDINote(0); ok {
		t.Fatalf("expected 0 Hz to be rejected")
	}
	if got := NoteName(69); got != "A4" {
		t.Fatalf("NoteName(69) = %q", got)
	}
	if got := NoteName(0); got != "C-1" {
		t.Fatalf("NoteName(0) = %q", got)
	}
}

func centsRatio(c float64) float64 {
	return math.Pow(2, c/1200)
}
