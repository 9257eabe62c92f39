package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cwbudde/algo-omnichord/synth"
)

// File is the JSON schema for instrument presets. Absent fields keep the
// defaults.
type File struct {
	MasterGain   *float64      `json:"master_gain"`
	Octave       *int          `json:"octave"`
	Attack       *float64      `json:"attack"`
	Decay        *float64      `json:"decay"`
	SustainRatio *float64      `json:"sustain_ratio"`
	Release      *float64      `json:"release"`
	Floor        *float64      `json:"floor"`
	LayerWeights *LayerWeights `json:"layer_weights"`
	DetuneCents  *float64      `json:"detune_cents"`

	SustainRampIn  *float64 `json:"sustain_ramp_in"`
	SustainLevel   *float64 `json:"sustain_level"`
	SustainRelease *float64 `json:"sustain_release"`
	SustainStop    *float64 `json:"sustain_stop"`

	StrumDelayMS     *float64 `json:"strum_delay_ms"`
	ArpeggioDuration *float64 `json:"arpeggio_duration"`
	ArpeggioVolume   *float64 `json:"arpeggio_volume"`
	StrumDuration    *float64 `json:"strum_duration"`
	StrumVolume      *float64 `json:"strum_volume"`

	ToneCutoffHz *float64 `json:"tone_cutoff_hz"`
	CabinetMix   *float64 `json:"cabinet_mix"`
	CabinetIR    *string  `json:"cabinet_ir"`
}

// LayerWeights overrides the one-shot oscillator mix.
type LayerWeights struct {
	Triangle *float64 `json:"triangle"`
	Sawtooth *float64 `json:"sawtooth"`
	Square   *float64 `json:"square"`
}

// LoadJSON loads a preset JSON file and applies it on top of default params.
func LoadJSON(path string) (*synth.Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse preset %s: %w", path, err)
	}

	p := synth.NewDefaultParams()
	if err := ApplyFile(p, &f); err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}
	if p.CabinetIRPath != "" && !filepath.IsAbs(p.CabinetIRPath) {
		p.CabinetIRPath = filepath.Join(filepath.Dir(path), p.CabinetIRPath)
	}
	return p, nil
}

func positive(name string, src *float64, dst *float64) error {
	if src == nil {
		return nil
	}
	if *src <= 0 {
		return fmt.Errorf("%s must be > 0", name)
	}
	*dst = *src
	return nil
}

func nonNegative(name string, src *float64, dst *float64) error {
	if src == nil {
		return nil
	}
	if *src < 0 {
		return fmt.Errorf("%s must be >= 0", name)
	}
	*dst = *src
	return nil
}

func unit(name string, src *float64, dst *float64) error {
	if src == nil {
		return nil
	}
	if *src < 0 || *src > 1 {
		return fmt.Errorf("%s must be in [0,1]", name)
	}
	*dst = *src
	return nil
}

// ApplyFile applies a parsed preset file onto an existing params object.
func ApplyFile(dst *synth.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	if f.Octave != nil {
		if *f.Octave < 0 || *f.Octave > 8 {
			return fmt.Errorf("octave must be in [0,8]")
		}
		dst.Octave = *f.Octave
	}

	checks := []error{
		positive("master_gain", f.MasterGain, &dst.MasterGain),
		positive("attack", f.Attack, &dst.Attack),
		nonNegative("decay", f.Decay, &dst.Decay),
		unit("sustain_ratio", f.SustainRatio, &dst.SustainRatio),
		positive("release", f.Release, &dst.Release),
		positive("floor", f.Floor, &dst.Floor),
		positive("sustain_ramp_in", f.SustainRampIn, &dst.SustainRampIn),
		unit("sustain_level", f.SustainLevel, &dst.SustainLevel),
		positive("sustain_release", f.SustainRelease, &dst.SustainRelease),
		positive("sustain_stop", f.SustainStop, &dst.SustainStop),
		positive("arpeggio_duration", f.ArpeggioDuration, &dst.ArpeggioDuration),
		unit("arpeggio_volume", f.ArpeggioVolume, &dst.ArpeggioVolume),
		positive("strum_duration", f.StrumDuration, &dst.StrumDuration),
		unit("strum_volume", f.StrumVolume, &dst.StrumVolume),
		nonNegative("tone_cutoff_hz", f.ToneCutoffHz, &dst.ToneCutoffHz),
		unit("cabinet_mix", f.CabinetMix, &dst.CabinetMix),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	if f.DetuneCents != nil {
		if *f.DetuneCents < -100 || *f.DetuneCents > 100 {
			return fmt.Errorf("detune_cents must be in [-100,100]")
		}
		dst.DetuneCents = *f.DetuneCents
	}
	if f.StrumDelayMS != nil {
		if *f.StrumDelayMS < 0 {
			return fmt.Errorf("strum_delay_ms must be >= 0")
		}
		dst.StrumDelay = time.Duration(*f.StrumDelayMS * float64(time.Millisecond))
	}
	if f.CabinetIR != nil {
		dst.CabinetIRPath = *f.CabinetIR
	}
	if dst.SustainStop < dst.SustainRelease {
		return fmt.Errorf("sustain_stop must be >= sustain_release")
	}

	if lw := f.LayerWeights; lw != nil {
		if err := nonNegative("layer_weights.triangle", lw.Triangle, &dst.TriangleWeight); err != nil {
			return err
		}
		if err := nonNegative("layer_weights.sawtooth", lw.Sawtooth, &dst.SawtoothWeight); err != nil {
			return err
		}
		if err := nonNegative("layer_weights.square", lw.Square, &dst.SquareWeight); err != nil {
			return err
		}
	}
	return nil
}

// FromParams captures every field of p as a preset file.
func FromParams(p *synth.Params) *File {
	ms := float64(p.StrumDelay) / float64(time.Millisecond)
	f := &File{
		MasterGain:   &p.MasterGain,
		Octave:       &p.Octave,
		Attack:       &p.Attack,
		Decay:        &p.Decay,
		SustainRatio: &p.SustainRatio,
		Release:      &p.Release,
		Floor:        &p.Floor,
		LayerWeights: &LayerWeights{
			Triangle: &p.TriangleWeight,
			Sawtooth: &p.SawtoothWeight,
			Square:   &p.SquareWeight,
		},
		DetuneCents:      &p.DetuneCents,
		SustainRampIn:    &p.SustainRampIn,
		SustainLevel:     &p.SustainLevel,
		SustainRelease:   &p.SustainRelease,
		SustainStop:      &p.SustainStop,
		StrumDelayMS:     &ms,
		ArpeggioDuration: &p.ArpeggioDuration,
		ArpeggioVolume:   &p.ArpeggioVolume,
		StrumDuration:    &p.StrumDuration,
		StrumVolume:      &p.StrumVolume,
		ToneCutoffHz:     &p.ToneCutoffHz,
		CabinetMix:       &p.CabinetMix,
	}
	if p.CabinetIRPath != "" {
		f.CabinetIR = &p.CabinetIRPath
	}
	return f
}

// WriteJSON writes p as an indented preset file, creating parent
// directories.
func WriteJSON(path string, p *synth.Params) error {
	if p == nil {
		return fmt.Errorf("nil params")
	}
	b, err := json.MarshalIndent(FromParams(p.Clone()), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
