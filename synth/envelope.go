package synth

import "math"

// Breakpoint is one corner of a piecewise linear envelope, relative to note start.
type Breakpoint struct {
	Time  float64
	Value float64
}

// Envelope describes the one-shot amplitude shape.
type Envelope struct {
	Attack       float64
	Decay        float64
	SustainRatio float64
	Release      float64
	Floor        float64
}

func envelopeFromParams(p *Params) Envelope {
	return Envelope{
		Attack:       p.Attack,
		Decay:        p.Decay,
		SustainRatio: p.SustainRatio,
		Release:      p.Release,
		Floor:        p.Floor,
	}
}

// Breakpoints returns the envelope corners for a note of the given duration
// and peak volume. The last corner is (duration, Floor), or holds the level
// already reached when that is below Floor, so the shape never rises after
// the attack.
//
// Short notes truncate rather than reorder segments: the release starts at
// duration-Release or at the end of the attack, whichever is later, and the
// attack never takes more than half the note.
func (e Envelope) Breakpoints(duration, volume float64) []Breakpoint {
	attack := e.Attack
	if attack > duration/2 {
		attack = duration / 2
	}
	sustain := volume * e.SustainRatio
	decayEnd := attack + e.Decay
	relStart := duration - e.Release

	pts := make([]Breakpoint, 0, 5)
	pts = append(pts, Breakpoint{0, 0}, Breakpoint{attack, volume})
	switch {
	case relStart >= decayEnd:
		pts = append(pts, Breakpoint{decayEnd, sustain})
		if relStart > decayEnd {
			pts = append(pts, Breakpoint{relStart, sustain})
		}
	case relStart > attack && e.Decay > 0:
		v := volume + (sustain-volume)*(relStart-attack)/e.Decay
		pts = append(pts, Breakpoint{relStart, v})
	}
	pts = append(pts, Breakpoint{duration, math.Min(e.Floor, pts[len(pts)-1].Value)})
	return pts
}

// apply programs the envelope onto gain for a note starting at start.
func (e Envelope) apply(gain *Param, start, duration, volume float64) {
	pts := e.Breakpoints(duration, volume)
	gain.SetValueAtTime(pts[0].Value, start+pts[0].Time)
	for _, bp := range pts[1:] {
		gain.LinearRampToValueAtTime(bp.Value, start+bp.Time)
	}
}
