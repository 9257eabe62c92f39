// Package fit tunes the one-shot voice parameters so a rendered note matches
// a reference recording, using mayfly swarm optimisation.
package fit

import (
	"math"

	"github.com/cwbudde/algo-omnichord/synth"
)

// Knob is one optimised parameter and its search range.
type Knob struct {
	Name  string
	Min   float64
	Max   float64
	field func(*synth.Params) *float64
}

// DefaultKnobs covers the one-shot envelope and oscillator layer mix.
func DefaultKnobs() []Knob {
	return []Knob{
		{"attack", 0.001, 0.1, func(p *synth.Params) *float64 { return &p.Attack }},
		{"decay", 0.0, 0.5, func(p *synth.Params) *float64 { return &p.Decay }},
		{"sustain_ratio", 0.05, 1.0, func(p *synth.Params) *float64 { return &p.SustainRatio }},
		{"release", 0.01, 0.5, func(p *synth.Params) *float64 { return &p.Release }},
		{"triangle", 0.0, 1.0, func(p *synth.Params) *float64 { return &p.TriangleWeight }},
		{"sawtooth", 0.0, 1.0, func(p *synth.Params) *float64 { return &p.SawtoothWeight }},
		{"square", 0.0, 1.0, func(p *synth.Params) *float64 { return &p.SquareWeight }},
		{"detune_cents", -25, 25, func(p *synth.Params) *float64 { return &p.DetuneCents }},
	}
}

// KnobsByName selects knobs from DefaultKnobs. Unknown names are reported.
func KnobsByName(names []string) ([]Knob, []string) {
	all := DefaultKnobs()
	var out []Knob
	var unknown []string
	for _, n := range names {
		found := false
		for _, k := range all {
			if k.Name == n {
				out = append(out, k)
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, n)
		}
	}
	return out, unknown
}

type candidate struct {
	Vals []float64
}

func fromNormalized(pos []float64, knobs []Knob) candidate {
	vals := make([]float64, len(knobs))
	for i, k := range knobs {
		x := 0.0
		if i < len(pos) {
			x = clamp(pos[i], 0, 1)
		}
		vals[i] = k.Min + x*(k.Max-k.Min)
	}
	return candidate{Vals: vals}
}

func initCandidate(base *synth.Params, knobs []Knob) candidate {
	p := base.Clone()
	vals := make([]float64, len(knobs))
	for i, k := range knobs {
		vals[i] = clamp(*k.field(p), k.Min, k.Max)
	}
	return candidate{Vals: vals}
}

func (c candidate) apply(base *synth.Params, knobs []Knob) *synth.Params {
	p := base.Clone()
	for i, k := range knobs {
		*k.field(p) = c.Vals[i]
	}
	return p
}

// Values maps knob names to the values stored in p.
func Values(p *synth.Params, knobs []Knob) map[string]float64 {
	out := make(map[string]float64, len(knobs))
	for _, k := range knobs {
		out[k.Name] = *k.field(p)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
