package synth

import "math"

// Voice is one sounding tone: a set of oscillators behind one gain stage.
type Voice struct {
	id        uint64
	freq      float64
	start     float64
	stop      float64 // +Inf while a held voice is not released
	sustained bool
	oscs      []*Oscillator
	gain      *Param
}

// VoiceInfo is a read-only snapshot of a voice.
type VoiceInfo struct {
	ID        uint64
	Frequency float64
	Start     float64
	Stop      float64
	Sustained bool
	Gain      float64
}

func newOneShotVoice(id uint64, p *Params, freq, start, duration, volume float64) *Voice {
	stop := start + duration
	v := &Voice{
		id:    id,
		freq:  freq,
		start: start,
		stop:  stop,
		gain:  NewParam(0),
		oscs: []*Oscillator{
			newOscillator(Triangle, freq, p.TriangleWeight, start, stop),
			newOscillator(Sawtooth, freq*centsToRatio(p.DetuneCents), p.SawtoothWeight, start, stop),
			newOscillator(Square, freq*p.SquareRatio, p.SquareWeight, start, stop),
		},
	}
	envelopeFromParams(p).apply(v.gain, start, duration, volume)
	return v
}

func newSustainedVoice(id uint64, p *Params, freq, start float64) *Voice {
	v := &Voice{
		id:        id,
		freq:      freq,
		start:     start,
		stop:      math.Inf(1),
		sustained: true,
		gain:      NewParam(0),
		oscs: []*Oscillator{
			newOscillator(Triangle, freq, 1.0, start, math.Inf(1)),
		},
	}
	v.gain.SetValueAtTime(0, start)
	v.gain.LinearRampToValueAtTime(p.SustainLevel, start+p.SustainRampIn)
	return v
}

// release fades a held voice from its current level and schedules its stop.
func (v *Voice) release(p *Params, now float64) {
	level := v.gain.ValueAt(now)
	v.gain.HoldAt(now)
	v.gain.LinearRampToValueAtTime(math.Min(p.Floor, level), now+p.SustainRelease)
	v.stop = now + p.SustainStop
	for _, o := range v.oscs {
		o.stop = v.stop
	}
}

func (v *Voice) finished(t float64) bool {
	return t >= v.stop
}

// render adds numFrames of this voice, beginning at frame startFrame, into out.
func (v *Voice) render(out []float64, startFrame int64, sampleRate int) {
	sr := float64(sampleRate)
	for i := range out {
		t := float64(startFrame+int64(i)) / sr
		if t < v.start {
			continue
		}
		if t >= v.stop {
			break
		}
		var sum float64
		for _, o := range v.oscs {
			if o.activeAt(t) {
				sum += o.next(t, sr)
			}
		}
		out[i] += sum * v.gain.ValueAt(t)
	}
}

func (v *Voice) info(t float64) VoiceInfo {
	return VoiceInfo{
		ID:        v.id,
		Frequency: v.freq,
		Start:     v.start,
		Stop:      v.stop,
		Sustained: v.sustained,
		Gain:      v.gain.ValueAt(t),
	}
}
