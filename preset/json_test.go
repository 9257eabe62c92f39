package preset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cwbudde/algo-omnichord/synth"
)

func writePreset(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	presetPath := filepath.Join(dir, "preset.json")
	if err := os.WriteFile(presetPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	return presetPath
}

func TestLoadJSONAppliesOverrides(t *testing.T) {
	presetPath := writePreset(t, `{
  "master_gain": 0.5,
  "octave": 3,
  "attack": 0.02,
  "sustain_ratio": 0.5,
  "layer_weights": {"square": 0.0},
  "detune_cents": 6,
  "strum_delay_ms": 45,
  "strum_volume": 0.25,
  "tone_cutoff_hz": 4000
}`)

	p, err := LoadJSON(presetPath)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if p.MasterGain != 0.5 || p.Octave != 3 || p.Attack != 0.02 || p.SustainRatio != 0.5 {
		t.Fatalf("global fields mismatch: %+v", p)
	}
	if p.SquareWeight != 0 || p.TriangleWeight != 0.4 || p.SawtoothWeight != 0.3 {
		t.Fatalf("layer weights mismatch: %+v", p)
	}
	if p.StrumDelay != 45*time.Millisecond {
		t.Fatalf("strum delay mismatch: %v", p.StrumDelay)
	}
	if p.DetuneCents != 6 || p.StrumVolume != 0.25 || p.ToneCutoffHz != 4000 {
		t.Fatalf("voice fields mismatch: %+v", p)
	}
	if p.Decay != 0.1 || p.ArpeggioDuration != 0.4 {
		t.Fatalf("absent fields should keep defaults: %+v", p)
	}
}

func TestLoadJSONRejectsInvalidRanges(t *testing.T) {
	for _, content := range []string{
		`{"master_gain": 0}`,
		`{"sustain_level": 1.5}`,
		`{"octave": 12}`,
		`{"detune_cents": 500}`,
		`{"strum_delay_ms": -1}`,
		`{"sustain_stop": 0.05}`,
		`{"layer_weights": {"triangle": -0.1}}`,
	} {
		if _, err := LoadJSON(writePreset(t, content)); err == nil {
			t.Fatalf("expected error for %s", content)
		}
	}
}

func TestLoadJSONRejectsMalformed(t *testing.T) {
	if _, err := LoadJSON(writePreset(t, `{"attack": "fast"}`)); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := LoadJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestApplyFileNilInputs(t *testing.T) {
	if err := ApplyFile(nil, &File{}); err == nil {
		t.Fatalf("expected error for nil destination")
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	want := synth.NewDefaultParams()
	want.Attack = 0.025
	want.SquareWeight = 0.05
	want.StrumDelay = 42 * time.Millisecond
	want.CabinetMix = 0.35

	path := filepath.Join(t.TempDir(), "out", "fitted.json")
	if err := WriteJSON(path, want); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if *got != *want {
		t.Fatalf("round trip mismatch:\n got=%+v\nwant=%+v", got, want)
	}
}

func TestLoadJSONResolvesCabinetIR(t *testing.T) {
	presetPath := writePreset(t, `{"cabinet_mix": 0.5, "cabinet_ir": "ir/box.wav"}`)
	p, err := LoadJSON(presetPath)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if want := filepath.Join(filepath.Dir(presetPath), "ir", "box.wav"); p.CabinetIRPath != want {
		t.Fatalf("cabinet IR path: got=%q want=%q", p.CabinetIRPath, want)
	}
	if _, err := LoadJSON(writePreset(t, `{"cabinet_mix": 2}`)); err == nil {
		t.Fatalf("expected error for cabinet_mix > 1")
	}
}
