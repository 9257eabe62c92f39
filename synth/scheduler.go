// Package synth renders the instrument's tones: layered one-shot notes,
// strummed arpeggios and held chord voices, all scheduled against one
// sample clock and mixed into a single master bus.
package synth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/cwbudde/algo-omnichord/cabinet"
	"github.com/cwbudde/algo-omnichord/chord"
	"github.com/cwbudde/algo-omnichord/dsp"
	"github.com/cwbudde/algo-omnichord/tuning"
)

var (
	// ErrInvalidArgument reports a caller contract violation.
	ErrInvalidArgument = errors.New("synth: invalid argument")
	// ErrUnavailable reports that the audio output cannot be activated.
	ErrUnavailable = errors.New("synth: audio output unavailable")
)

// Device is the audio output the scheduler feeds. Resume activates it and
// must be idempotent.
type Device interface {
	Resume() error
}

// Scheduler owns the master bus, the sample clock and every voice. All
// methods are safe for concurrent use; a device typically calls Process from
// its audio goroutine while control calls arrive from elsewhere.
type Scheduler struct {
	mu         sync.Mutex
	sampleRate int
	params     *Params
	env        Envelope
	frame      int64
	voices     []*Voice
	sustained  []*Voice
	nextID     uint64
	device     Device
	ready      bool
	tone       *dsp.Biquad
	cab        *cabinet.Convolver
	mix        []float64
	wetL       []float32
	wetR       []float32
}

// NewScheduler creates a scheduler rendering at sampleRate. A nil params
// uses NewDefaultParams.
func NewScheduler(sampleRate int, params *Params) (*Scheduler, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidArgument, sampleRate)
	}
	p := params.Clone()
	s := &Scheduler{
		sampleRate: sampleRate,
		params:     p,
		env:        envelopeFromParams(p),
	}
	if p.ToneCutoffHz > 0 {
		s.tone = dsp.NewLowpass(p.ToneCutoffHz, float64(sampleRate), 0.707)
	}
	if p.CabinetMix > 0 {
		cab, err := newCabinet(p, sampleRate)
		if err != nil {
			return nil, err
		}
		s.cab = cab
	}
	return s, nil
}

func newCabinet(p *Params, sampleRate int) (*cabinet.Convolver, error) {
	var left, right []float32
	var err error
	if p.CabinetIRPath != "" {
		left, right, err = cabinet.LoadWAV(p.CabinetIRPath, sampleRate)
	} else {
		left, err = cabinet.Generate(cabinet.DefaultConfig(sampleRate))
	}
	if err != nil {
		return nil, fmt.Errorf("cabinet IR: %w", err)
	}
	return cabinet.NewConvolver(left, right)
}

// SampleRate returns the render rate in Hz.
func (s *Scheduler) SampleRate() int {
	return s.sampleRate
}

// Params returns a copy of the scheduler's parameters.
func (s *Scheduler) Params() *Params {
	return s.params.Clone()
}

// SetDevice attaches the output device. Until it resumes successfully every
// play call returns ErrUnavailable.
func (s *Scheduler) SetDevice(d Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device = d
	s.ready = false
}

// EnsureReady resumes the attached device once. Without a device (offline
// rendering) the scheduler is always ready.
//
// Resume runs without the scheduler lock held: a device may pull its first
// buffer through ProcessInto before Resume returns.
func (s *Scheduler) EnsureReady() error {
	s.mu.Lock()
	d := s.device
	if s.ready || d == nil {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := d.Resume(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s.mu.Lock()
	if s.device == d {
		s.ready = true
	}
	s.mu.Unlock()
	return nil
}

// CurrentTime returns the clock time of the next frame to be rendered.
func (s *Scheduler) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nowLocked()
}

func (s *Scheduler) nowLocked() float64 {
	return float64(s.frame) / float64(s.sampleRate)
}

func validateTone(freq, duration, volume float64) error {
	switch {
	case !isFinite(freq) || freq <= 0:
		return fmt.Errorf("%w: frequency %v", ErrInvalidArgument, freq)
	case !isFinite(duration) || duration <= 0:
		return fmt.Errorf("%w: duration %v", ErrInvalidArgument, duration)
	case !isFinite(volume) || volume < 0 || volume > 1:
		return fmt.Errorf("%w: volume %v", ErrInvalidArgument, volume)
	}
	return nil
}

// PlayOneShot starts a layered note now.
func (s *Scheduler) PlayOneShot(freq, duration, volume float64) error {
	return s.PlayOneShotAfter(0, freq, duration, volume)
}

// PlayOneShotAfter starts a layered note delay after the current clock time.
func (s *Scheduler) PlayOneShotAfter(delay time.Duration, freq, duration, volume float64) error {
	if delay < 0 {
		return fmt.Errorf("%w: delay %v", ErrInvalidArgument, delay)
	}
	if err := validateTone(freq, duration, volume); err != nil {
		return err
	}
	if err := s.EnsureReady(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addOneShotLocked(s.nowLocked()+delay.Seconds(), freq, duration, volume)
	return nil
}

func (s *Scheduler) addOneShotLocked(start, freq, duration, volume float64) {
	s.nextID++
	s.voices = append(s.voices, newOneShotVoice(s.nextID, s.params, freq, start, duration, volume))
}

func (s *Scheduler) toneFrequency(c chord.Chord, offset int) float64 {
	return tuning.IntervalFrequency(c.RootFrequency(s.params.Octave), offset)
}

// ConfiguredStrumDelay asks PlayArpeggiatedChord for Params.StrumDelay.
const ConfiguredStrumDelay time.Duration = -1

// PlayArpeggiatedChord plays every chord tone in interval order, the i-th
// note starting i*strumDelay after now. A zero strumDelay attacks every tone
// at once; a negative one (ConfiguredStrumDelay) uses Params.StrumDelay.
// All notes are registered in one batch.
func (s *Scheduler) PlayArpeggiatedChord(c chord.Chord, strumDelay time.Duration) error {
	if len(c.Intervals) == 0 {
		return fmt.Errorf("%w: chord %q has no intervals", ErrInvalidArgument, c.Name)
	}
	if strumDelay < 0 {
		strumDelay = s.params.StrumDelay
	}
	p := s.params
	freqs := make([]float64, len(c.Intervals))
	for i, iv := range c.Intervals {
		freqs[i] = s.toneFrequency(c, iv)
		if err := validateTone(freqs[i], p.ArpeggioDuration, p.ArpeggioVolume); err != nil {
			return err
		}
	}

	if err := s.EnsureReady(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowLocked()
	for i, f := range freqs {
		start := now + float64(i)*strumDelay.Seconds()
		s.addOneShotLocked(start, f, p.ArpeggioDuration, p.ArpeggioVolume)
	}
	return nil
}

// PlayChordToneByIndex plays the strum note at noteIndex, wrapping into
// higher octaves past the last interval.
func (s *Scheduler) PlayChordToneByIndex(c chord.Chord, noteIndex int) error {
	offset, err := c.ToneOffset(noteIndex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return s.PlayOneShot(s.toneFrequency(c, offset), s.params.StrumDuration, s.params.StrumVolume)
}

// StartSustainedChord releases the held chord, if any, and starts one held
// triangle voice per interval. Both happen under one lock, so observers never
// see two held sets.
func (s *Scheduler) StartSustainedChord(c chord.Chord) error {
	if len(c.Intervals) == 0 {
		return fmt.Errorf("%w: chord %q has no intervals", ErrInvalidArgument, c.Name)
	}
	freqs := make([]float64, len(c.Intervals))
	for i, iv := range c.Intervals {
		freqs[i] = s.toneFrequency(c, iv)
		if !isFinite(freqs[i]) || freqs[i] <= 0 {
			return fmt.Errorf("%w: frequency %v", ErrInvalidArgument, freqs[i])
		}
	}

	if err := s.EnsureReady(); err != nil {
		s.StopSustainedChord()
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopSustainedLocked()
	now := s.nowLocked()
	set := make([]*Voice, 0, len(freqs))
	for _, f := range freqs {
		s.nextID++
		v := newSustainedVoice(s.nextID, s.params, f, now)
		set = append(set, v)
		s.voices = append(s.voices, v)
	}
	s.sustained = set
	return nil
}

// StopSustainedChord fades out the held chord. It is a no-op when nothing is held.
func (s *Scheduler) StopSustainedChord() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopSustainedLocked()
}

func (s *Scheduler) stopSustainedLocked() {
	if len(s.sustained) == 0 {
		return
	}
	now := s.nowLocked()
	for _, v := range s.sustained {
		v.release(s.params, now)
	}
	s.sustained = nil
}

// Held returns snapshots of the currently held chord voices.
func (s *Scheduler) Held() []VoiceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowLocked()
	out := make([]VoiceInfo, len(s.sustained))
	for i, v := range s.sustained {
		out[i] = v.info(now)
	}
	return out
}

// Voices returns snapshots of every voice that has not yet stopped,
// including released and not-yet-started ones.
func (s *Scheduler) Voices() []VoiceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowLocked()
	out := make([]VoiceInfo, len(s.voices))
	for i, v := range s.voices {
		out[i] = v.info(now)
	}
	return out
}

// ActiveVoices returns the number of voices not yet stopped.
func (s *Scheduler) ActiveVoices() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.voices)
}

// Process renders a block of audio samples (stereo interleaved) and advances
// the clock. Voices past their stop time are dropped afterwards.
func (s *Scheduler) Process(numFrames int) []float32 {
	out := make([]float32, numFrames*2)
	s.ProcessInto(out)
	return out
}

// ProcessInto renders len(dst)/2 stereo frames into dst.
func (s *Scheduler) ProcessInto(dst []float32) {
	numFrames := len(dst) / 2
	s.mu.Lock()
	defer s.mu.Unlock()

	if cap(s.mix) < numFrames {
		s.mix = make([]float64, numFrames)
	}
	mix := s.mix[:numFrames]
	for i := range mix {
		mix[i] = 0
	}

	for _, v := range s.voices {
		v.render(mix, s.frame, s.sampleRate)
	}
	if s.tone != nil {
		s.tone.ProcessBlock(mix)
	}
	g := s.params.MasterGain
	for i := range mix {
		mix[i] *= g
	}
	if s.cab != nil {
		if cap(s.wetL) < numFrames {
			s.wetL = make([]float32, numFrames)
			s.wetR = make([]float32, numFrames)
		}
		wetL, wetR := s.wetL[:numFrames], s.wetR[:numFrames]
		s.cab.Process(mix, wetL, wetR)
		wet := s.params.CabinetMix
		for i, x := range mix {
			dry := (1 - wet) * x
			dst[i*2] = float32(dspcore.FlushDenormals(dry + wet*float64(wetL[i])))
			dst[i*2+1] = float32(dspcore.FlushDenormals(dry + wet*float64(wetR[i])))
		}
	} else {
		for i, x := range mix {
			y := float32(dspcore.FlushDenormals(x))
			dst[i*2] = y
			dst[i*2+1] = y
		}
	}

	s.frame += int64(numFrames)
	now := s.nowLocked()
	active := s.voices[:0]
	for _, v := range s.voices {
		if !v.finished(now) {
			active = append(active, v)
		}
	}
	for i := len(active); i < len(s.voices); i++ {
		s.voices[i] = nil
	}
	s.voices = active
}
