// SPDX-License-Identifier: MIT

package capture

import "math"

// The processing chain normalizes loudness of uncontrolled ambient
// recordings. It is a fixed pipeline: high-pass (sub-audible rumble) →
// compressor (tame transients) → gain → limiter (no clipping). Not
// user-configurable.

// Processor transforms a chunk of interleaved samples in place.
type Processor interface {
	Process(samples []float32)
	Reset()
}

// Chain applies its processors in order.
type Chain struct {
	stages []Processor
}

// NewChain builds the standard ambient-recording chain for the given format.
func NewChain(format Format) *Chain {
	return &Chain{stages: []Processor{
		newHighPass(40, format.SampleRate, format.Channels),
		newCompressor(format.SampleRate, compressorParams{
			thresholdDB: -18,
			ratio:       3,
			attack:      5e-3,
			release:     150e-3,
		}),
		newGain(0.95),
		newCompressor(format.SampleRate, compressorParams{
			thresholdDB: -0.3,
			ratio:       20,
			attack:      0.5e-3,
			release:     50e-3,
		}),
	}}
}

func (c *Chain) Process(samples []float32) {
	for _, s := range c.stages {
		s.Process(samples)
	}
}

// Reset tears down accumulated filter state so the chain can be reused by a
// fresh session.
func (c *Chain) Reset() {
	for _, s := range c.stages {
		s.Reset()
	}
}

// highPass is a biquad high-pass filter (Butterworth Q), one state pair per
// channel.
type highPass struct {
	b0, b1, b2, a1, a2 float64
	channels           int
	x1, x2, y1, y2     []float64
}

func newHighPass(cutoffHz float64, sampleRate, channels int) *highPass {
	w0 := 2 * math.Pi * cutoffHz / float64(sampleRate)
	q := math.Sqrt2 / 2
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)

	a0 := 1 + alpha
	h := &highPass{
		b0:       (1 + cosw0) / 2 / a0,
		b1:       -(1 + cosw0) / a0,
		b2:       (1 + cosw0) / 2 / a0,
		a1:       -2 * cosw0 / a0,
		a2:       (1 - alpha) / a0,
		channels: channels,
	}
	h.Reset()
	return h
}

func (h *highPass) Process(samples []float32) {
	for i, s := range samples {
		ch := i % h.channels
		x := float64(s)
		y := h.b0*x + h.b1*h.x1[ch] + h.b2*h.x2[ch] - h.a1*h.y1[ch] - h.a2*h.y2[ch]
		h.x2[ch], h.x1[ch] = h.x1[ch], x
		h.y2[ch], h.y1[ch] = h.y1[ch], y
		samples[i] = float32(y)
	}
}

func (h *highPass) Reset() {
	h.x1 = make([]float64, h.channels)
	h.x2 = make([]float64, h.channels)
	h.y1 = make([]float64, h.channels)
	h.y2 = make([]float64, h.channels)
}

type compressorParams struct {
	thresholdDB float64
	ratio       float64
	attack      float64 // seconds
	release     float64 // seconds
}

// compressor is an envelope-follower dynamics compressor. With a high ratio
// and sub-millisecond attack it doubles as the limiter stage.
type compressor struct {
	params    compressorParams
	attackC   float64
	releaseC  float64
	threshold float64 // linear
	envelope  float64
}

func newCompressor(sampleRate int, p compressorParams) *compressor {
	return &compressor{
		params:    p,
		attackC:   math.Exp(-1 / (p.attack * float64(sampleRate))),
		releaseC:  math.Exp(-1 / (p.release * float64(sampleRate))),
		threshold: math.Pow(10, p.thresholdDB/20),
	}
}

func (c *compressor) Process(samples []float32) {
	for i, s := range samples {
		level := math.Abs(float64(s))
		if level > c.envelope {
			c.envelope = c.attackC*c.envelope + (1-c.attackC)*level
		} else {
			c.envelope = c.releaseC*c.envelope + (1-c.releaseC)*level
		}

		gain := 1.0
		if c.envelope > c.threshold {
			compressed := c.threshold * math.Pow(c.envelope/c.threshold, 1/c.params.ratio)
			gain = compressed / c.envelope
		}
		samples[i] = float32(float64(s) * gain)
	}
}

func (c *compressor) Reset() { c.envelope = 0 }

type gain struct {
	factor float32
}

func newGain(factor float32) *gain { return &gain{factor: factor} }

func (g *gain) Process(samples []float32) {
	for i := range samples {
		samples[i] *= g.factor
	}
}

func (g *gain) Reset() {}
