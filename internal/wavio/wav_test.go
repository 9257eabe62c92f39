package wavio

import (
	"math"
	"path/filepath"
	"testing"
)

func TestStereoRoundTrip(t *testing.T) {
	const sr = 44100
	frames := sr / 10
	samples := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		v := float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/sr))
		samples[i*2] = v
		samples[i*2+1] = v
	}
	path := filepath.Join(t.TempDir(), "nested", "tone.wav")
	if err := WriteStereoInterleaved(path, samples, sr); err != nil {
		t.Fatalf("WriteStereoInterleaved: %v", err)
	}

	mono, rate, err := ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono: %v", err)
	}
	if rate != sr {
		t.Fatalf("sample rate: got=%d want=%d", rate, sr)
	}
	if len(mono) != frames {
		t.Fatalf("frames: got=%d want=%d", len(mono), frames)
	}
	var peak float64
	for _, v := range mono {
		peak = math.Max(peak, math.Abs(v))
	}
	if math.Abs(peak-0.5) > 0.01 {
		t.Fatalf("peak after round trip: got=%f want~0.5", peak)
	}
}

func TestReadMonoRejectsMissingFile(t *testing.T) {
	if _, _, err := ReadMono(filepath.Join(t.TempDir(), "none.wav")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestResampleIdentity(t *testing.T) {
	in := []float64{1, 2, 3}
	out, err := ResampleIfNeeded(in, 48000, 48000)
	if err != nil || len(out) != 3 {
		t.Fatalf("identity resample: out=%v err=%v", out, err)
	}
}
