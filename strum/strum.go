// Package strum maps a continuous drag position along the strum strip to
// discrete note indices.
package strum

import (
	"fmt"
	"math"
)

// DefaultScaleLength is the number of strum positions on the strip.
const DefaultScaleLength = 8

// Orientation selects the drag axis of the strip.
type Orientation int

const (
	// Horizontal strips count positions left to right.
	Horizontal Orientation = iota
	// Vertical strips count positions bottom to top.
	Vertical
)

// Mapper converts normalized positions to note indices.
type Mapper struct {
	ScaleLength int
	Orientation Orientation
}

// NewMapper creates a mapper with scaleLength positions.
func NewMapper(scaleLength int, o Orientation) (Mapper, error) {
	if scaleLength <= 0 {
		return Mapper{}, fmt.Errorf("scale length must be > 0, got %d", scaleLength)
	}
	return Mapper{ScaleLength: scaleLength, Orientation: o}, nil
}

// Index maps pos in [0,1] (values outside are clamped) to a note index in
// [0, ScaleLength). pos is measured from the left or top edge. The far edge
// of the strip (pos 1 horizontally, pos 0 vertically) lies past the last
// position and reports ok=false, as does NaN.
func (m Mapper) Index(pos float64) (index int, ok bool) {
	n := m.ScaleLength
	if n <= 0 {
		n = DefaultScaleLength
	}
	if math.IsNaN(pos) {
		return 0, false
	}
	pos = math.Max(0, math.Min(1, pos))
	if m.Orientation == Vertical {
		pos = 1 - pos
	}
	idx := int(math.Floor(pos * float64(n)))
	if idx >= n {
		return n, false
	}
	return idx, true
}

// Tracker emits a note index only when the drag crosses into a new position.
type Tracker struct {
	mapper Mapper
	last   int
	active bool
}

// NewTracker creates a tracker over m.
func NewTracker(m Mapper) *Tracker {
	return &Tracker{mapper: m, last: -1}
}

// Mapper returns the tracker's position mapping.
func (t *Tracker) Mapper() Mapper {
	return t.mapper
}

// Begin starts a drag at pos and reports the first index.
func (t *Tracker) Begin(pos float64) (int, bool) {
	t.active = true
	t.last = -1
	return t.Move(pos)
}

// Move updates the drag position. ok is false when the index did not change,
// the position is off the strip or no drag is in progress.
func (t *Tracker) Move(pos float64) (index int, ok bool) {
	if !t.active {
		return 0, false
	}
	idx, on := t.mapper.Index(pos)
	if !on {
		return t.last, false
	}
	if idx == t.last {
		return idx, false
	}
	t.last = idx
	return idx, true
}

// End finishes the drag; the next Begin always fires.
func (t *Tracker) End() {
	t.active = false
	t.last = -1
}

// Active reports whether a drag is in progress.
func (t *Tracker) Active() bool {
	return t.active
}
