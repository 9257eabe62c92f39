package cabinet

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-omnichord/internal/wavio"
)

func TestGenerateNormalizesPeak(t *testing.T) {
	cfg := DefaultConfig(48000)
	ir, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if want := int(math.Round(cfg.DurationS * 48000)); len(ir) != want {
		t.Fatalf("length: got=%d want=%d", len(ir), want)
	}
	var peak float64
	for _, v := range ir {
		if math.IsNaN(float64(v)) {
			t.Fatalf("NaN in IR")
		}
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	if math.Abs(peak-cfg.NormalizePeak) > 1e-4 {
		t.Fatalf("peak: got=%f want=%f", peak, cfg.NormalizePeak)
	}
	if tail := ir[len(ir)-1]; math.Abs(float64(tail)) > 1e-3 {
		t.Fatalf("fade-out should silence the tail, got %f", tail)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, _ := Generate(DefaultConfig(44100))
	b, _ := Generate(DefaultConfig(44100))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs for equal seeds", i)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.SampleRate = 100 },
		func(c *Config) { c.Modes = 0 },
		func(c *Config) { c.Depth = 0 },
		func(c *Config) { c.DecayS = -1 },
		func(c *Config) { c.NormalizePeak = 0 },
	}
	for i, mutate := range bad {
		cfg := DefaultConfig(48000)
		mutate(&cfg)
		if _, err := Generate(cfg); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestBoxModesAscending(t *testing.T) {
	freqs := boxModes(0.45, 0.30, 0.08, 20000, 10)
	if len(freqs) != 10 {
		t.Fatalf("modes: got=%d want=10", len(freqs))
	}
	// lowest axial mode of the widest dimension
	if want := speedOfSound / (2 * 0.45); math.Abs(freqs[0]-want) > 1e-9 {
		t.Fatalf("first mode: got=%f want=%f", freqs[0], want)
	}
	for i := 1; i < len(freqs); i++ {
		if freqs[i] < freqs[i-1] {
			t.Fatalf("modes not sorted at %d", i)
		}
	}
}

func TestConvolverIdentityDelaysByLatency(t *testing.T) {
	c, err := NewConvolver([]float32{1}, nil)
	if err != nil {
		t.Fatalf("NewConvolver: %v", err)
	}
	total := 3*DefaultPartSize + 17
	in := make([]float64, total)
	for i := range in {
		in[i] = float64(i%50) / 50
	}
	left := make([]float32, total)
	right := make([]float32, total)
	// odd block sizes exercise the queueing
	for pos := 0; pos < total; {
		n := min(37, total-pos)
		c.Process(in[pos:pos+n], left[pos:pos+n], right[pos:pos+n])
		pos += n
	}
	lat := c.Latency()
	for i := 0; i < lat; i++ {
		if left[i] != 0 {
			t.Fatalf("expected silence during latency, got %f at %d", left[i], i)
		}
	}
	for i := lat; i < total; i++ {
		if math.Abs(float64(left[i])-in[i-lat]) > 1e-5 || left[i] != right[i] {
			t.Fatalf("frame %d: got=%f/%f want=%f", i, left[i], right[i], in[i-lat])
		}
	}
}

func TestLoadWAVStereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ir.wav")
	samples := []float32{0.5, 0.25, 0, 0, 0, 0, 0, 0}
	if err := wavio.WriteStereoInterleaved(path, samples, 48000); err != nil {
		t.Fatalf("write: %v", err)
	}
	l, r, err := LoadWAV(path, 48000)
	if err != nil {
		t.Fatalf("LoadWAV: %v", err)
	}
	if len(l) != 4 || len(r) != 4 {
		t.Fatalf("frames: got=%d/%d want=4", len(l), len(r))
	}
	if math.Abs(float64(l[0])-0.5) > 1e-3 || math.Abs(float64(r[0])-0.25) > 1e-3 {
		t.Fatalf("channel values: l=%f r=%f", l[0], r[0])
	}
	if _, err := NewConvolver(nil, nil); err == nil {
		t.Fatalf("expected error for empty IR")
	}
}
