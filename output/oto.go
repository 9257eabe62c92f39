//go:build !headless

package output

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Device plays a Source on the system audio output. The oto context is
// created on the first Resume, so constructing a Device never touches the
// audio hardware.
type Device struct {
	mu         sync.Mutex
	sampleRate int
	stream     *Stream
	log        *slog.Logger
	ctx        *oto.Context
	player     *oto.Player
}

// NewDevice creates a stereo device pulling from src at sampleRate.
func NewDevice(sampleRate int, src Source, logger *slog.Logger) *Device {
	if logger == nil {
		logger = slog.Default()
	}
	return &Device{
		sampleRate: sampleRate,
		stream:     NewStream(src),
		log:        logger,
	}
}

// Resume opens the output and starts playback. Calling it again once
// playback runs is a no-op.
func (d *Device) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ctx == nil {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   d.sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
		})
		if err != nil {
			return fmt.Errorf("open audio output: %w", err)
		}
		<-ready
		d.ctx = ctx
		d.log.Info("audio output opened", "sample_rate", d.sampleRate)
	}
	if err := d.ctx.Err(); err != nil {
		return fmt.Errorf("audio output: %w", err)
	}
	if d.player == nil {
		d.player = d.ctx.NewPlayer(d.stream)
	}
	if !d.player.IsPlaying() {
		d.player.Play()
	}
	return nil
}

// Close stops playback. The oto context stays alive for the process lifetime.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player == nil {
		return nil
	}
	err := d.player.Close()
	d.player = nil
	return err
}
