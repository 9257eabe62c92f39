package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/algo-omnichord/omnichord"
	"github.com/cwbudde/algo-omnichord/synth"
)

// maxWait bounds each sleep so cancellation and clock stalls are noticed.
const maxWait = 10 * time.Millisecond

// Perform plays s in real time. Actions fire when sched's clock, which is
// advanced by whatever device pulls audio from it, reaches their offset from
// the clock value at the call. Perform returns after the tail has played or
// when ctx is done; a held chord is released in either case.
func Perform(ctx context.Context, s *Session, sched *synth.Scheduler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	m := s.Mapper()
	in := omnichord.New(sched,
		omnichord.WithLogger(logger),
		omnichord.WithScaleLength(m.ScaleLength, m.Orientation),
	)
	defer sched.StopSustainedChord()

	base := sched.CurrentTime()
	for _, a := range s.actions() {
		if err := waitUntil(ctx, sched, base+a.at); err != nil {
			return err
		}
		if err := apply(in, a); err != nil {
			return fmt.Errorf("at %.3fs: %w", a.at, err)
		}
	}
	if err := waitUntil(ctx, sched, base+s.Duration()); err != nil {
		return err
	}
	logger.Info("session performed", "name", s.Name, "seconds", sched.CurrentTime()-base)
	return nil
}

func waitUntil(ctx context.Context, sched *synth.Scheduler, t float64) error {
	for {
		remaining := t - sched.CurrentTime()
		if remaining <= 0 {
			return nil
		}
		wait := min(time.Duration(remaining*float64(time.Second)), maxWait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
