package synth

import "time"

// Params holds the instrument's voicing and envelope constants.
type Params struct {
	MasterGain float64
	// Octave chord roots are voiced in.
	Octave int

	// One-shot envelope, in seconds.
	Attack       float64
	Decay        float64
	SustainRatio float64 // sustain level as a fraction of the note volume
	Release      float64
	Floor        float64 // ramp target instead of true zero

	// Layer mix of a one-shot note.
	TriangleWeight float64
	SawtoothWeight float64
	SquareWeight   float64
	SquareRatio    float64 // square layer frequency multiplier
	DetuneCents    float64 // applied to the sawtooth layer only

	// Held chord voices.
	SustainRampIn  float64
	SustainLevel   float64
	SustainRelease float64
	SustainStop    float64

	DefaultVolume    float64
	StrumDelay       time.Duration
	ArpeggioDuration float64
	ArpeggioVolume   float64
	StrumDuration    float64
	StrumVolume      float64

	// ToneCutoffHz enables a lowpass on the master bus when > 0.
	ToneCutoffHz float64

	// CabinetMix blends in the enclosure response (0 dry, 1 fully wet).
	// CabinetIRPath replaces the synthesized IR with a WAV file.
	CabinetMix    float64
	CabinetIRPath string
}

// NewDefaultParams creates default parameters.
func NewDefaultParams() *Params {
	return &Params{
		MasterGain:       0.3,
		Octave:           4,
		Attack:           0.01,
		Decay:            0.1,
		SustainRatio:     0.6,
		Release:          0.1,
		Floor:            0.001,
		TriangleWeight:   0.4,
		SawtoothWeight:   0.3,
		SquareWeight:     0.15,
		SquareRatio:      2.0,
		DetuneCents:      0.0,
		SustainRampIn:    0.05,
		SustainLevel:     0.15,
		SustainRelease:   0.1,
		SustainStop:      0.15,
		DefaultVolume:    0.3,
		StrumDelay:       30 * time.Millisecond,
		ArpeggioDuration: 0.4,
		ArpeggioVolume:   0.15,
		StrumDuration:    0.6,
		StrumVolume:      0.2,
		ToneCutoffHz:     0.0,
		CabinetMix:       0.0,
	}
}

// Clone returns a copy of p.
func (p *Params) Clone() *Params {
	if p == nil {
		return NewDefaultParams()
	}
	c := *p
	return &c
}
