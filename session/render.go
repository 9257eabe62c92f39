package session

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/algo-omnichord/omnichord"
	"github.com/cwbudde/algo-omnichord/synth"
)

const renderBlockSize = 128

// Render plays s through a new instrument on sched and returns the stereo
// interleaved output. Event times are relative to sched's current clock.
func Render(s *Session, sched *synth.Scheduler, logger *slog.Logger) ([]float32, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := s.Mapper()
	in := omnichord.New(sched,
		omnichord.WithLogger(logger),
		omnichord.WithScaleLength(m.ScaleLength, m.Orientation),
	)

	sr := float64(sched.SampleRate())
	total := int64(math.Ceil(s.Duration() * sr))
	out := make([]float32, 0, total*2)
	var rendered int64
	renderUntil := func(t float64) {
		target := int64(math.Ceil(t*sr - 1e-9))
		for rendered < target {
			n := min(int64(renderBlockSize), target-rendered)
			out = append(out, sched.Process(int(n))...)
			rendered += n
		}
	}

	for _, a := range s.actions() {
		renderUntil(a.at)
		if err := apply(in, a); err != nil {
			return nil, fmt.Errorf("at %.3fs: %w", a.at, err)
		}
	}
	renderUntil(s.Duration())
	logger.Info("session rendered", "name", s.Name, "frames", rendered, "seconds", float64(rendered)/sr)
	return out, nil
}

func apply(in *omnichord.Instrument, a action) error {
	switch a.kind {
	case actSelect:
		c := a.chord
		return in.OnChordSelected(&c)
	case actRelease:
		return in.OnChordSelected(nil)
	case actStrum:
		return in.OnStrumAt(a.index)
	case actArpeggio:
		return in.Arpeggiate()
	case actDragBegin:
		return in.StrumBegin(a.pos)
	case actDragMove:
		return in.StrumMove(a.pos)
	case actDragEnd:
		in.StrumEnd()
	}
	return nil
}
