// SPDX-License-Identifier: MIT

package capture

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freqHz float64, format Format, duration int) []float32 {
	n := format.SampleRate * duration
	out := make([]float32, n*format.Channels)
	for i := 0; i < n; i++ {
		v := float32(0.8 * math.Sin(2*math.Pi*freqHz*float64(i)/float64(format.SampleRate)))
		for c := 0; c < format.Channels; c++ {
			out[i*format.Channels+c] = v
		}
	}
	return out
}

func peak(samples []float32) float32 {
	var p float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > p {
			p = s
		}
	}
	return p
}

func TestChain_OutputStaysFinite(t *testing.T) {
	format := Format{SampleRate: 8000, Channels: 1}
	chain := NewChain(format)
	samples := sine(440, format, 1)

	chain.Process(samples)
	for i, s := range samples {
		require.False(t, math.IsNaN(float64(s)) || math.IsInf(float64(s), 0), "sample %d is not finite", i)
	}
}

func TestChain_AttenuatesLoudInput(t *testing.T) {
	format := Format{SampleRate: 8000, Channels: 1}
	chain := NewChain(format)

	samples := sine(440, format, 1)
	in := peak(samples)
	chain.Process(samples)

	// Compression plus limiting must bring a hot signal down.
	assert.Less(t, peak(samples), in)
}

func TestChain_RemovesDCOffset(t *testing.T) {
	format := Format{SampleRate: 8000, Channels: 1}
	chain := NewChain(format)

	// A constant signal is pure DC; the high-pass filter should take it
	// close to zero once it settles.
	samples := make([]float32, format.SampleRate*2)
	for i := range samples {
		samples[i] = 0.5
	}
	chain.Process(samples)

	tail := samples[len(samples)-100:]
	assert.Less(t, peak(tail), float32(0.01))
}

func TestChain_ResetClearsState(t *testing.T) {
	format := Format{SampleRate: 8000, Channels: 1}
	chain := NewChain(format)

	first := sine(440, format, 1)
	chain.Process(first)
	chain.Reset()

	// After a reset, processing the same input again must give the same
	// output as a fresh chain.
	second := sine(440, format, 1)
	chain.Process(second)

	fresh := NewChain(format)
	third := sine(440, format, 1)
	fresh.Process(third)

	if diff := cmp.Diff(third, second, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("chain state leaked across reset (-want +got):\n%s", diff)
	}
}
