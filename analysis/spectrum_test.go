package analysis

import (
	"errors"
	"math"
	"testing"
)

func sine(freq float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return out
}

func TestDominantFrequencyFindsSine(t *testing.T) {
	for _, f := range []float64{110, 261.63, 440, 1760} {
		got, err := DominantFrequency(sine(f, 48000, 16384), 48000)
		if err != nil {
			t.Fatalf("DominantFrequency(%v): %v", f, err)
		}
		if math.Abs(got-f) > 2 {
			t.Fatalf("dominant frequency: got=%f want=%f", got, f)
		}
	}
}

func TestDominantFrequencyRejectsShortInput(t *testing.T) {
	if _, err := DominantFrequency(make([]float64, 100), 48000); !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
}

func TestSilenceHasNoDominantFrequency(t *testing.T) {
	got, err := DominantFrequency(make([]float64, 4096), 48000)
	if err != nil || got != 0 {
		t.Fatalf("silence: got=%f err=%v", got, err)
	}
}

func TestLevels(t *testing.T) {
	x := sine(440, 48000, 48000)
	if r := RMS(x); math.Abs(r-1/math.Sqrt2) > 1e-3 {
		t.Fatalf("RMS of unit sine: got=%f", r)
	}
	if p := Peak([]float64{0.1, -0.7, 0.3}); p != 0.7 {
		t.Fatalf("Peak: got=%f want=0.7", p)
	}
	if RMS(nil) != 0 {
		t.Fatalf("RMS(nil) should be 0")
	}
	if db := LinToDB(1); db != 0 {
		t.Fatalf("LinToDB(1) = %f", db)
	}
}
