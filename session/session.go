// Package session loads timed performance scripts (chord selections, strums,
// drags and releases) and plays them through the instrument offline.
package session

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-omnichord/chord"
	"github.com/cwbudde/algo-omnichord/strum"
)

const (
	defaultTempo     = 120.0
	defaultTail      = 1.0
	defaultDragSteps = 16
)

// Session is a performance script.
type Session struct {
	Name        string  `yaml:"name,omitempty"`
	Tempo       float64 `yaml:"tempo,omitempty"`
	ScaleLength int     `yaml:"scale_length,omitempty"`
	Vertical    bool    `yaml:"vertical,omitempty"`
	// Tail is rendered after the last event, in seconds. Parse sets it to
	// one second when absent; an explicit zero is kept.
	Tail   *float64 `yaml:"tail,omitempty"`
	Events []Event  `yaml:"events"`
}

// Event is one timed action. Exactly one action field must be set.
type Event struct {
	At       float64 `yaml:"at"`
	Select   string  `yaml:"select,omitempty"`
	Release  bool    `yaml:"release,omitempty"`
	Strum    *int    `yaml:"strum,omitempty"`
	Arpeggio bool    `yaml:"arpeggio,omitempty"`
	Drag     *Drag   `yaml:"drag,omitempty"`
}

// Drag sweeps the strum strip from From to To (normalized positions).
type Drag struct {
	From     float64 `yaml:"from"`
	To       float64 `yaml:"to"`
	Duration float64 `yaml:"duration"`
	Steps    int     `yaml:"steps,omitempty"`
}

type actionKind int

const (
	actSelect actionKind = iota
	actRelease
	actStrum
	actArpeggio
	actDragBegin
	actDragMove
	actDragEnd
)

type action struct {
	at    float64
	kind  actionKind
	chord chord.Chord
	index int
	pos   float64
}

// Load reads and validates a YAML session file.
func Load(path string) (*Session, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a YAML session, filling defaults.
func Parse(data []byte) (*Session, error) {
	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if s.Tempo == 0 {
		s.Tempo = defaultTempo
	}
	if s.ScaleLength == 0 {
		s.ScaleLength = strum.DefaultScaleLength
	}
	if s.Tail == nil {
		tail := defaultTail
		s.Tail = &tail
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every event.
func (s *Session) Validate() error {
	if s.Tempo <= 0 {
		return fmt.Errorf("tempo must be > 0")
	}
	if s.ScaleLength <= 0 {
		return fmt.Errorf("scale_length must be > 0")
	}
	if s.Tail != nil && *s.Tail < 0 {
		return fmt.Errorf("tail must be >= 0")
	}
	if len(s.Events) == 0 {
		return errors.New("no events")
	}
	for i, e := range s.Events {
		if err := e.validate(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	selected := false
	for _, a := range s.actions() {
		switch a.kind {
		case actSelect:
			selected = true
		case actRelease:
			selected = false
		case actStrum, actArpeggio, actDragBegin:
			if !selected {
				return fmt.Errorf("at %.3fs: strum without a selected chord", a.at)
			}
		}
	}
	return nil
}

func (e Event) validate() error {
	if e.At < 0 {
		return fmt.Errorf("at must be >= 0, got %v", e.At)
	}
	n := 0
	if e.Select != "" {
		n++
		if _, ok := chord.Lookup(e.Select); !ok {
			return fmt.Errorf("unknown chord %q", e.Select)
		}
	}
	if e.Release {
		n++
	}
	if e.Strum != nil {
		n++
		if *e.Strum < 0 {
			return fmt.Errorf("strum index must be >= 0, got %d", *e.Strum)
		}
	}
	if e.Arpeggio {
		n++
	}
	if e.Drag != nil {
		n++
		if e.Drag.Duration <= 0 {
			return fmt.Errorf("drag duration must be > 0")
		}
		if e.Drag.Steps < 0 {
			return fmt.Errorf("drag steps must be >= 0")
		}
	}
	if n != 1 {
		return fmt.Errorf("expected exactly one action, got %d", n)
	}
	return nil
}

// Mapper returns the strum mapping configured by the session.
func (s *Session) Mapper() strum.Mapper {
	o := strum.Horizontal
	if s.Vertical {
		o = strum.Vertical
	}
	return strum.Mapper{ScaleLength: s.ScaleLength, Orientation: o}
}

// Duration is the time of the last action plus the tail.
func (s *Session) Duration() float64 {
	acts := s.actions()
	last := 0.0
	if len(acts) > 0 {
		last = acts[len(acts)-1].at
	}
	return last + s.tail()
}

func (s *Session) tail() float64 {
	if s.Tail == nil {
		return defaultTail
	}
	return *s.Tail
}

// actions flattens events into a time-ordered list, expanding drags.
func (s *Session) actions() []action {
	var out []action
	for _, e := range s.Events {
		switch {
		case e.Select != "":
			c, _ := chord.Lookup(e.Select)
			out = append(out, action{at: e.At, kind: actSelect, chord: c})
		case e.Release:
			out = append(out, action{at: e.At, kind: actRelease})
		case e.Strum != nil:
			out = append(out, action{at: e.At, kind: actStrum, index: *e.Strum})
		case e.Arpeggio:
			out = append(out, action{at: e.At, kind: actArpeggio})
		case e.Drag != nil:
			steps := e.Drag.Steps
			if steps == 0 {
				steps = defaultDragSteps
			}
			out = append(out, action{at: e.At, kind: actDragBegin, pos: e.Drag.From})
			for i := 1; i <= steps; i++ {
				frac := float64(i) / float64(steps)
				out = append(out, action{
					at:   e.At + frac*e.Drag.Duration,
					kind: actDragMove,
					pos:  e.Drag.From + frac*(e.Drag.To-e.Drag.From),
				})
			}
			out = append(out, action{at: e.At + e.Drag.Duration, kind: actDragEnd})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].at < out[j].at })
	return out
}

// Single builds a session that holds chordName for hold seconds with an
// arpeggio at the start.
func Single(chordName string, hold float64) (*Session, error) {
	tail := defaultTail
	s := &Session{
		Name:        chordName,
		Tempo:       defaultTempo,
		ScaleLength: strum.DefaultScaleLength,
		Tail:        &tail,
		Events: []Event{
			{At: 0, Select: chordName},
			{At: 0, Arpeggio: true},
			{At: hold, Release: true},
		},
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
