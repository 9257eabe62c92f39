package output

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cwbudde/algo-omnichord/synth"
)

type rampSource struct{ next float32 }

func (r *rampSource) ProcessInto(dst []float32) {
	for i := range dst {
		dst[i] = r.next
		r.next += 0.25
	}
}

func TestStreamReadEncodesFloat32LE(t *testing.T) {
	s := NewStream(&rampSource{})
	p := make([]byte, 20) // two frames plus a partial one
	n, err := s.Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 16 {
		t.Fatalf("bytes read: got=%d want=16", n)
	}
	for i := 0; i < 4; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		if want := float32(i) * 0.25; got != want {
			t.Fatalf("sample %d: got=%f want=%f", i, got, want)
		}
	}
	if n, _ := s.Read(make([]byte, 7)); n != 0 {
		t.Fatalf("short buffer should read nothing, got %d", n)
	}
}

func TestStreamAdvancesSchedulerClock(t *testing.T) {
	sched, err := synth.NewScheduler(8000, nil)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	s := NewStream(sched)
	if _, err := s.Read(make([]byte, 800*8)); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := sched.CurrentTime(); math.Abs(got-0.1) > 1e-12 {
		t.Fatalf("clock: got=%f want=0.1", got)
	}
}
