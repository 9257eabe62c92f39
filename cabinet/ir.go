// Package cabinet colors the instrument's output with the response of a
// small speaker enclosure, either synthesized from box modes or loaded from
// an impulse-response WAV file.
package cabinet

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/cwbudde/algo-omnichord/internal/wavio"
)

const speedOfSound = 343.0

// Config controls synthetic cabinet IR generation.
type Config struct {
	SampleRate int
	DurationS  float64
	Modes      int
	Seed       int64

	// Enclosure dimensions in meters.
	Width  float64
	Height float64
	Depth  float64

	// SpeakerHz is the cone resonance; modes below it are attenuated.
	SpeakerHz   float64
	Brightness  float64
	DirectLevel float64
	DecayS      float64
	FadeOutS    float64

	NormalizePeak float64
}

// DefaultConfig returns a tabletop-sized plastic enclosure with a small
// full-range driver.
func DefaultConfig(sampleRate int) Config {
	return Config{
		SampleRate:    sampleRate,
		DurationS:     0.06,
		Modes:         24,
		Seed:          1,
		Width:         0.45,
		Height:        0.30,
		Depth:         0.08,
		SpeakerHz:     180,
		Brightness:    0.8,
		DirectLevel:   0.7,
		DecayS:        0.012,
		FadeOutS:      0.005,
		NormalizePeak: 0.9,
	}
}

func (c *Config) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if c.Modes < 1 {
		return fmt.Errorf("modes must be >= 1")
	}
	if c.Width <= 0 || c.Height <= 0 || c.Depth <= 0 {
		return fmt.Errorf("enclosure dimensions must be > 0")
	}
	if c.SpeakerHz <= 0 {
		return fmt.Errorf("speaker Hz must be > 0")
	}
	if c.Brightness <= 0 {
		return fmt.Errorf("brightness must be > 0")
	}
	if c.DirectLevel < 0 {
		return fmt.Errorf("direct level must be >= 0")
	}
	if c.DecayS <= 0 {
		return fmt.Errorf("decay seconds must be > 0")
	}
	if c.NormalizePeak <= 0 {
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

// Generate synthesizes a mono cabinet IR: a direct impulse followed by the
// decaying standing-wave modes of a rigid rectangular box.
func Generate(cfg Config) ([]float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := max(1, int(math.Round(cfg.DurationS*float64(cfg.SampleRate))))
	buf := make([]float64, n)
	buf[0] = cfg.DirectLevel

	rng := rand.New(rand.NewSource(cfg.Seed))
	maxF := 0.45 * float64(cfg.SampleRate)
	exp := 0.6 + cfg.Brightness
	for _, f := range boxModes(cfg.Width, cfg.Height, cfg.Depth, maxF, cfg.Modes) {
		amp := 0.5 / math.Pow(1+f/1000, exp)
		// second-order highpass at the cone resonance
		r := f / cfg.SpeakerHz
		amp *= r * r / math.Sqrt(1+r*r*r*r)
		amp *= 0.7 + 0.6*rng.Float64()

		// higher modes are damped faster by the enclosure walls
		tau := cfg.DecayS / math.Sqrt(1+f/2000)
		decay := math.Exp(-1 / (tau * float64(cfg.SampleRate)))
		addMode(buf, amp, f, rng.Float64()*2*math.Pi, decay, cfg.SampleRate)
	}

	removeDC(buf, 0.995)
	fadeOut(buf, cfg.FadeOutS, cfg.SampleRate)

	peak := 1e-12
	for _, v := range buf {
		peak = math.Max(peak, math.Abs(v))
	}
	s := cfg.NormalizePeak / peak
	out := make([]float32, n)
	for i, v := range buf {
		out[i] = float32(v * s)
	}
	return out, nil
}

// boxModes returns up to maxModes axial, tangential and oblique mode
// frequencies of a w x h x d box, ascending and below maxF.
func boxModes(w, h, d, maxF float64, maxModes int) []float64 {
	lim := func(l float64) int { return int(2*l*maxF/speedOfSound) + 1 }
	var freqs []float64
	for i := 0; i <= lim(w); i++ {
		for j := 0; j <= lim(h); j++ {
			for k := 0; k <= lim(d); k++ {
				if i == 0 && j == 0 && k == 0 {
					continue
				}
				x, y, z := float64(i)/w, float64(j)/h, float64(k)/d
				f := speedOfSound / 2 * math.Sqrt(x*x+y*y+z*z)
				if f > maxF {
					break
				}
				freqs = append(freqs, f)
			}
		}
	}
	sort.Float64s(freqs)
	if len(freqs) > maxModes {
		freqs = freqs[:maxModes]
	}
	return freqs
}

// addMode accumulates an exponentially decaying cosine using the two-term
// recurrence x[n] = 2cos(w)x[n-1] - x[n-2].
func addMode(out []float64, amp, freq, phase, decay float64, sampleRate int) {
	w := 2 * math.Pi * freq / float64(sampleRate)
	cw := math.Cos(w)
	x0, x1 := math.Cos(phase-w), math.Cos(phase-2*w)
	env := amp
	for i := range out {
		x := 2*cw*x0 - x1
		x1, x0 = x0, x
		out[i] += env * x
		env *= decay
	}
}

func removeDC(x []float64, r float64) {
	var prevIn, prevOut float64
	for i, v := range x {
		y := v - prevIn + r*prevOut
		prevIn, prevOut = v, y
		x[i] = y
	}
}

// fadeOut applies a raised-cosine fade to the last fadeS seconds of buf.
func fadeOut(buf []float64, fadeS float64, sampleRate int) {
	if fadeS <= 0 {
		return
	}
	n := min(len(buf), int(math.Round(fadeS*float64(sampleRate))))
	start := len(buf) - n
	for i := 0; i < n; i++ {
		buf[start+i] *= 0.5 * (1 + math.Cos(math.Pi*float64(i)/float64(n)))
	}
}

// LoadWAV reads a mono or stereo IR and resamples it to sampleRate. Mono
// files return the same slice for both channels.
func LoadWAV(path string, sampleRate int) (left, right []float32, err error) {
	chans, sr, err := wavio.ReadChannels(path)
	if err != nil {
		return nil, nil, err
	}
	if len(chans[0]) == 0 {
		return nil, nil, fmt.Errorf("empty wav data: %s", path)
	}
	l, err := wavio.ResampleIfNeeded(chans[0], sr, sampleRate)
	if err != nil {
		return nil, nil, err
	}
	if len(chans) == 1 {
		left = toFloat32(l)
		return left, left, nil
	}
	r, err := wavio.ResampleIfNeeded(chans[1], sr, sampleRate)
	if err != nil {
		return nil, nil, err
	}
	return toFloat32(l), toFloat32(r), nil
}

func toFloat32(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}
