package synth

import "sort"

type eventKind uint8

const (
	eventSet eventKind = iota
	eventRamp
)

type paramEvent struct {
	kind  eventKind
	time  float64
	value float64
}

// Param is a value automated against the scheduler clock. Events are kept
// sorted by time; a ramp interpolates linearly from the preceding event.
type Param struct {
	initial float64
	events  []paramEvent
}

// NewParam creates a param holding initial until the first event.
func NewParam(initial float64) *Param {
	return &Param{initial: initial}
}

// SetValueAtTime jumps to value at t.
func (p *Param) SetValueAtTime(value, t float64) {
	p.insert(paramEvent{kind: eventSet, time: t, value: value})
}

// LinearRampToValueAtTime ramps from the previous event to value, arriving at t.
func (p *Param) LinearRampToValueAtTime(value, t float64) {
	p.insert(paramEvent{kind: eventRamp, time: t, value: value})
}

// HoldAt drops every event after t and pins the value audible at t, so a
// following ramp starts from where the param actually is.
func (p *Param) HoldAt(t float64) {
	v := p.ValueAt(t)
	n := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > t })
	p.events = p.events[:n]
	p.events = append(p.events, paramEvent{kind: eventSet, time: t, value: v})
}

func (p *Param) insert(e paramEvent) {
	// Equal timestamps keep insertion order.
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > e.time })
	p.events = append(p.events, paramEvent{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

// ValueAt returns the automated value at t.
func (p *Param) ValueAt(t float64) float64 {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > t }) - 1

	prevT, prevV := 0.0, p.initial
	if i >= 0 {
		prevT, prevV = p.events[i].time, p.events[i].value
	}
	if i+1 < len(p.events) {
		next := p.events[i+1]
		if next.kind == eventRamp {
			span := next.time - prevT
			if span <= 0 {
				return next.value
			}
			frac := (t - prevT) / span
			if frac < 0 {
				frac = 0
			}
			return prevV + (next.value-prevV)*frac
		}
	}
	return prevV
}
