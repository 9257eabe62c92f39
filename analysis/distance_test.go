package analysis

import (
	"math"
	"testing"
)

func makeDecaySine(sr int, freq, seconds, tau float64) []float64 {
	n := int(seconds * float64(sr))
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(sr)
		out[i] = math.Exp(-t/tau) * math.Sin(2*math.Pi*freq*t)
	}
	return out
}

func TestCompareIdenticalSignalsHasLowDistance(t *testing.T) {
	sr := 48000
	x := makeDecaySine(sr, 440.0, 1.5, 0.7)
	m := Compare(x, x, sr)
	if m.Score > 0.01 {
		t.Fatalf("expected near-zero score for identical signals, got %f", m.Score)
	}
	if m.Similarity < 0.95 {
		t.Fatalf("expected high similarity for identical signals, got %f", m.Similarity)
	}
}

func TestCompareDifferentSignalsHasHigherDistance(t *testing.T) {
	sr := 48000
	a := makeDecaySine(sr, 261.63, 1.8, 0.8)
	b := makeDecaySine(sr, 330.0, 0.8, 0.1)
	near := Compare(a, makeDecaySine(sr, 261.63, 1.8, 0.7), sr)
	far := Compare(a, b, sr)
	if far.Score <= near.Score {
		t.Fatalf("expected different signals to score worse: near=%f far=%f", near.Score, far.Score)
	}
	if far.DecayDiffDBPerS < 10 {
		t.Fatalf("expected a large decay difference, got %f", far.DecayDiffDBPerS)
	}
}

func TestCompareIgnoresLeadingSilenceAndGain(t *testing.T) {
	sr := 48000
	x := makeDecaySine(sr, 440.0, 1.0, 0.3)
	shifted := make([]float64, 2400+len(x))
	for i, v := range x {
		shifted[2400+i] = 0.25 * v
	}
	if m := Compare(x, shifted, sr); m.Score > 0.01 {
		t.Fatalf("onset alignment or gain normalisation failed, score=%f", m.Score)
	}
}

func TestCompareDegenerateInputs(t *testing.T) {
	x := makeDecaySine(48000, 440, 0.5, 0.3)
	for name, m := range map[string]Metrics{
		"empty candidate": Compare(x, nil, 48000),
		"silent":          Compare(x, make([]float64, len(x)), 48000),
		"bad rate":        Compare(x, x, 0),
	} {
		if m.Score != 1 {
			t.Fatalf("%s: expected score 1, got %f", name, m.Score)
		}
	}
}

func TestDecaySlopeMatchesExponential(t *testing.T) {
	sr := 48000
	tau := 0.25
	x := makeDecaySine(sr, 1000, 1.0, tau)
	env := rmsEnvelope(x, envFrame, envHop)
	got := decaySlope(env, float64(envHop)/float64(sr))
	want := -20 / (tau * math.Ln10)
	if math.Abs(got-want) > 1.0 {
		t.Fatalf("decay slope: got=%f want=%f", got, want)
	}
}
