package cabinet

import (
	"fmt"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
)

// DefaultPartSize is the convolution block length in frames. It is also the
// latency the wet path adds.
const DefaultPartSize = 128

// Convolver runs a mono signal through a stereo IR with partitioned
// overlap-add convolution. Process accepts any block length; input is
// queued until a full partition is available.
type Convolver struct {
	partSize int
	irLen    int

	leftOLA  *dspconv.StreamingOverlapAddT[float32, complex64]
	rightOLA *dspconv.StreamingOverlapAddT[float32, complex64]

	in      []float32
	outL    []float32
	outR    []float32
	blockL  []float32
	blockR  []float32
	blockIn []float32
}

// NewConvolver creates a convolver for the given IR pair. A nil right
// channel reuses left.
func NewConvolver(left, right []float32) (*Convolver, error) {
	if len(left) == 0 {
		return nil, fmt.Errorf("cabinet: empty impulse response")
	}
	if len(right) == 0 {
		right = left
	}
	c := &Convolver{partSize: DefaultPartSize}
	var err error
	if c.leftOLA, err = dspconv.NewStreamingOverlapAdd32(left, c.partSize); err != nil {
		return nil, fmt.Errorf("cabinet: left IR: %w", err)
	}
	if c.rightOLA, err = dspconv.NewStreamingOverlapAdd32(right, c.partSize); err != nil {
		return nil, fmt.Errorf("cabinet: right IR: %w", err)
	}
	c.irLen = max(len(left), len(right))
	c.blockIn = make([]float32, c.partSize)
	c.blockL = make([]float32, c.partSize)
	c.blockR = make([]float32, c.partSize)
	c.Reset()
	return c, nil
}

// IRLength is the longer of the two IR lengths in frames.
func (c *Convolver) IRLength() int {
	return c.irLen
}

// Latency is the wet-path delay in frames.
func (c *Convolver) Latency() int {
	return c.partSize
}

// Process convolves input and writes the wet signal to left and right, which
// must be at least len(input) long.
func (c *Convolver) Process(input []float64, left, right []float32) {
	for _, v := range input {
		c.in = append(c.in, float32(v))
	}
	for len(c.in) >= c.partSize {
		copy(c.blockIn, c.in[:c.partSize])
		c.in = c.in[:copy(c.in, c.in[c.partSize:])]
		errL := c.leftOLA.ProcessBlockTo(c.blockL, c.blockIn)
		errR := c.rightOLA.ProcessBlockTo(c.blockR, c.blockIn)
		if errL != nil || errR != nil {
			// pass the block through dry
			copy(c.blockL, c.blockIn)
			copy(c.blockR, c.blockIn)
		}
		c.outL = append(c.outL, c.blockL...)
		c.outR = append(c.outR, c.blockR...)
	}
	n := len(input)
	copy(left, c.outL[:n])
	copy(right, c.outR[:n])
	c.outL = c.outL[:copy(c.outL, c.outL[n:])]
	c.outR = c.outR[:copy(c.outR, c.outR[n:])]
}

// Reset clears convolution history and queued samples.
func (c *Convolver) Reset() {
	c.leftOLA.Reset()
	c.rightOLA.Reset()
	c.in = c.in[:0]
	c.outL = append(c.outL[:0], make([]float32, c.partSize)...)
	c.outR = append(c.outR[:0], make([]float32, c.partSize)...)
}
