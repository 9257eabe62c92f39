//go:build headless

package output

import (
	"errors"
	"log/slog"
)

// ErrNoAudio is returned by Resume in headless builds.
var ErrNoAudio = errors.New("output: built without audio support")

// Device is a stand-in for builds without an audio backend.
type Device struct{}

// NewDevice returns a device whose Resume always fails.
func NewDevice(sampleRate int, src Source, logger *slog.Logger) *Device {
	return &Device{}
}

func (d *Device) Resume() error { return ErrNoAudio }

func (d *Device) Close() error { return nil }
