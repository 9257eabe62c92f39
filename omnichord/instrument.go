// Package omnichord wires chord selection and strum events to the tone
// scheduler. It holds the selected chord and nothing else.
package omnichord

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cwbudde/algo-omnichord/chord"
	"github.com/cwbudde/algo-omnichord/strum"
	"github.com/cwbudde/algo-omnichord/synth"
)

// ErrNoChord is returned by strum operations while no chord is selected.
var ErrNoChord = errors.New("omnichord: no chord selected")

// Instrument receives UI events and turns them into scheduler calls.
type Instrument struct {
	sched *synth.Scheduler
	log   *slog.Logger

	mu         sync.Mutex
	selected   *chord.Chord
	tracker    *strum.Tracker
	chordScale bool
	orient     strum.Orientation
}

// Option configures an Instrument.
type Option func(*Instrument)

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(in *Instrument) {
		if l != nil {
			in.log = l
		}
	}
}

// WithScaleLength sets a fixed number of strum positions.
func WithScaleLength(n int, o strum.Orientation) Option {
	return func(in *Instrument) {
		if m, err := strum.NewMapper(n, o); err == nil {
			in.tracker = strum.NewTracker(m)
			in.orient = o
			in.chordScale = false
		}
	}
}

// WithChordScale sizes the strum strip to the selected chord's interval
// count, so one sweep covers each chord tone exactly once.
func WithChordScale(o strum.Orientation) Option {
	return func(in *Instrument) {
		in.chordScale = true
		in.orient = o
	}
}

// New creates an instrument driving s.
func New(s *synth.Scheduler, opts ...Option) *Instrument {
	m, _ := strum.NewMapper(strum.DefaultScaleLength, strum.Horizontal)
	in := &Instrument{
		sched:   s,
		log:     slog.Default(),
		tracker: strum.NewTracker(m),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Scheduler returns the underlying scheduler.
func (in *Instrument) Scheduler() *synth.Scheduler {
	return in.sched
}

// Selected returns the selected chord.
func (in *Instrument) Selected() (chord.Chord, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.selected == nil {
		return chord.Chord{}, false
	}
	return *in.selected, true
}

// ScaleLength returns the current number of strum positions.
func (in *Instrument) ScaleLength() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.tracker.Mapper().ScaleLength
}

// OnChordSelected selects c and holds its tones; nil clears the selection
// and releases the held chord.
func (in *Instrument) OnChordSelected(c *chord.Chord) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if c == nil {
		in.selected = nil
		in.sched.StopSustainedChord()
		in.log.Debug("chord cleared")
		return nil
	}

	sel := *c
	in.selected = &sel
	if in.chordScale && len(sel.Intervals) > 0 {
		if m, err := strum.NewMapper(len(sel.Intervals), in.orient); err == nil {
			in.tracker = strum.NewTracker(m)
		}
	}
	if err := in.sched.StartSustainedChord(sel); err != nil {
		return in.report("start sustained chord", sel, err)
	}
	in.log.Debug("chord selected", "chord", sel.Name, "tones", len(sel.Intervals))
	return nil
}

// OnStrumAt plays the selected chord's tone at noteIndex. Negative indices
// are ignored.
func (in *Instrument) OnStrumAt(noteIndex int) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.strumLocked(noteIndex)
}

func (in *Instrument) strumLocked(noteIndex int) error {
	if noteIndex < 0 {
		return nil
	}
	if in.selected == nil {
		return ErrNoChord
	}
	if err := in.sched.PlayChordToneByIndex(*in.selected, noteIndex); err != nil {
		return in.report("strum", *in.selected, err)
	}
	return nil
}

// Arpeggiate plays the selected chord as a quick strum across all its tones.
func (in *Instrument) Arpeggiate() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.selected == nil {
		return ErrNoChord
	}
	if err := in.sched.PlayArpeggiatedChord(*in.selected, synth.ConfiguredStrumDelay); err != nil {
		return in.report("arpeggiate", *in.selected, err)
	}
	return nil
}

// StrumBegin starts a drag at normalized position pos.
func (in *Instrument) StrumBegin(pos float64) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.selected == nil {
		return ErrNoChord
	}
	if idx, ok := in.tracker.Begin(pos); ok {
		return in.strumLocked(idx)
	}
	return nil
}

// StrumMove continues a drag; a note plays only when the position index changes.
func (in *Instrument) StrumMove(pos float64) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.selected == nil {
		return nil
	}
	if idx, ok := in.tracker.Move(pos); ok {
		return in.strumLocked(idx)
	}
	return nil
}

// StrumEnd finishes a drag.
func (in *Instrument) StrumEnd() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.tracker.End()
}

func (in *Instrument) report(op string, c chord.Chord, err error) error {
	if errors.Is(err, synth.ErrUnavailable) {
		in.log.Warn("audio unavailable", "op", op, "chord", c.Name, "err", err)
	} else {
		in.log.Error("playback failed", "op", op, "chord", c.Name, "err", err)
	}
	return fmt.Errorf("%s %s: %w", op, c.Name, err)
}
