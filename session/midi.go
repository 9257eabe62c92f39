package session

import (
	"fmt"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cwbudde/algo-omnichord/chord"
	"github.com/cwbudde/algo-omnichord/strum"
	"github.com/cwbudde/algo-omnichord/synth"
	"github.com/cwbudde/algo-omnichord/tuning"
)

const (
	ticksPerQuarter = 960

	// ChordChannel carries held chords, StrumChannel strums and arpeggios.
	ChordChannel uint8 = 0
	StrumChannel uint8 = 1
)

// Note is one MIDI note derived from a session.
type Note struct {
	Start    float64
	Duration float64
	Key      int
	Channel  uint8
	Velocity uint8
}

func velocityFor(volume, reference float64) uint8 {
	if reference <= 0 {
		reference = 1
	}
	v := math.Round(127 * volume / reference)
	return uint8(math.Max(1, math.Min(127, v)))
}

// Notes lowers the session to MIDI notes using the voicing in p. Keys outside
// 0..127 are dropped.
func (s *Session) Notes(p *synth.Params) []Note {
	if p == nil {
		p = synth.NewDefaultParams()
	}
	var (
		out      []Note
		selected *chord.Chord
		heldAt   float64
		tracker  = strum.NewTracker(s.Mapper())
	)
	add := func(n Note) {
		if n.Key >= 0 && n.Key <= 127 {
			out = append(out, n)
		}
	}
	closeHeld := func(t float64) {
		if selected == nil {
			return
		}
		for _, k := range selected.MIDINotes(p.Octave) {
			add(Note{Start: heldAt, Duration: t - heldAt, Key: k, Channel: ChordChannel,
				Velocity: velocityFor(p.SustainLevel, p.DefaultVolume)})
		}
		selected = nil
	}
	strumNote := func(t float64, idx int) {
		if selected == nil {
			return
		}
		off, err := selected.ToneOffset(idx)
		if err != nil {
			return
		}
		add(Note{Start: t, Duration: p.StrumDuration, Key: tuning.MIDINote(selected.Root, p.Octave) + off,
			Channel: StrumChannel, Velocity: velocityFor(p.StrumVolume, p.DefaultVolume)})
	}

	for _, a := range s.actions() {
		switch a.kind {
		case actSelect:
			closeHeld(a.at)
			c := a.chord
			selected = &c
			heldAt = a.at
		case actRelease:
			closeHeld(a.at)
		case actStrum:
			strumNote(a.at, a.index)
		case actArpeggio:
			if selected == nil {
				continue
			}
			base := tuning.MIDINote(selected.Root, p.Octave)
			for i, iv := range selected.Intervals {
				add(Note{Start: a.at + float64(i)*p.StrumDelay.Seconds(), Duration: p.ArpeggioDuration,
					Key: base + iv, Channel: StrumChannel, Velocity: velocityFor(p.ArpeggioVolume, p.DefaultVolume)})
			}
		case actDragBegin:
			if idx, ok := tracker.Begin(a.pos); ok {
				strumNote(a.at, idx)
			}
		case actDragMove:
			if idx, ok := tracker.Move(a.pos); ok {
				strumNote(a.at, idx)
			}
		case actDragEnd:
			tracker.End()
		}
	}
	closeHeld(s.Duration())
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

type midiEvent struct {
	tick uint32
	off  bool
	msg  midi.Message
}

func (s *Session) ticks(sec float64) uint32 {
	return uint32(math.Round(sec * s.Tempo / 60 * ticksPerQuarter))
}

// BuildMIDI converts the session into a standard MIDI file: a tempo track,
// one track for held chords and one for strummed notes.
func BuildMIDI(s *Session, p *synth.Params) (*smf.SMF, error) {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var tempo smf.Track
	if s.Name != "" {
		tempo.Add(0, smf.MetaTrackSequenceName(s.Name))
	}
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(s.Tempo))
	tempo.Close(0)
	if err := sm.Add(tempo); err != nil {
		return nil, fmt.Errorf("error adding tempo track: %w", err)
	}

	notes := s.Notes(p)
	for _, ch := range []uint8{ChordChannel, StrumChannel} {
		var evs []midiEvent
		for _, n := range notes {
			if n.Channel != ch {
				continue
			}
			key := uint8(n.Key)
			evs = append(evs,
				midiEvent{tick: s.ticks(n.Start), msg: midi.NoteOn(ch, key, n.Velocity)},
				midiEvent{tick: s.ticks(n.Start + n.Duration), off: true, msg: midi.NoteOff(ch, key)},
			)
		}
		// Note-offs first at equal ticks so repeated keys retrigger.
		sort.SliceStable(evs, func(i, j int) bool {
			if evs[i].tick != evs[j].tick {
				return evs[i].tick < evs[j].tick
			}
			return evs[i].off && !evs[j].off
		})

		var track smf.Track
		var last uint32
		for _, e := range evs {
			track.Add(e.tick-last, e.msg)
			last = e.tick
		}
		track.Close(0)
		if err := sm.Add(track); err != nil {
			return nil, fmt.Errorf("error adding track for channel %d: %w", ch, err)
		}
	}
	return sm, nil
}

// ExportMIDI writes the session as a standard MIDI file at path.
func ExportMIDI(s *Session, p *synth.Params, path string) error {
	sm, err := BuildMIDI(s, p)
	if err != nil {
		return err
	}
	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}
