package synth

import "math"

// Waveform selects an oscillator shape.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Sawtooth
	Square
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Triangle:
		return "triangle"
	case Sawtooth:
		return "sawtooth"
	case Square:
		return "square"
	}
	return "unknown"
}

// Oscillator is a phase-accumulating generator active on [start, stop).
type Oscillator struct {
	wave    Waveform
	freq    float64
	weight  float64
	start   float64
	stop    float64
	phase   float64
	running bool
}

func newOscillator(wave Waveform, freq, weight, start, stop float64) *Oscillator {
	return &Oscillator{wave: wave, freq: freq, weight: weight, start: start, stop: stop}
}

func (o *Oscillator) activeAt(t float64) bool {
	return t >= o.start && t < o.stop
}

// next returns the weighted sample at t and advances the phase by one frame.
func (o *Oscillator) next(t float64, sampleRate float64) float64 {
	if !o.running {
		// Align phase to the exact start time between frames.
		o.phase = frac((t - o.start) * o.freq)
		o.running = true
	}
	s := waveSample(o.wave, o.phase)
	o.phase += o.freq / sampleRate
	if o.phase >= 1 {
		o.phase -= math.Floor(o.phase)
	}
	return s * o.weight
}

// waveSample evaluates a unit waveform at phase in [0,1). All shapes start at
// zero crossing except the square.
func waveSample(w Waveform, phase float64) float64 {
	switch w {
	case Sine:
		return math.Sin(2 * math.Pi * phase)
	case Triangle:
		switch {
		case phase < 0.25:
			return 4 * phase
		case phase < 0.75:
			return 2 - 4*phase
		default:
			return 4*phase - 4
		}
	case Sawtooth:
		return 2*frac(phase+0.5) - 1
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	}
	return 0
}

func frac(x float64) float64 {
	return x - math.Floor(x)
}
