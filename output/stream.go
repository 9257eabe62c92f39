// Package output connects a scheduler to an audio device.
package output

import (
	"encoding/binary"
	"math"
	"sync"
)

// Source renders interleaved stereo float32 frames.
type Source interface {
	ProcessInto(dst []float32)
}

// Stream adapts a Source to an io.Reader of little-endian float32 stereo
// samples, the layout oto pulls from its playback goroutine.
type Stream struct {
	mu  sync.Mutex
	src Source
	buf []float32
}

// NewStream wraps src.
func NewStream(src Source) *Stream {
	return &Stream{src: src}
}

// Read fills p with whole stereo frames. Trailing bytes that do not form a
// complete frame are left for the next call.
func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	samples := (len(p) / 8) * 2
	if samples == 0 {
		return 0, nil
	}
	if cap(s.buf) < samples {
		s.buf = make([]float32, samples)
	}
	buf := s.buf[:samples]
	s.src.ProcessInto(buf)
	for i, v := range buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return samples * 4, nil
}
