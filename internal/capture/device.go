// SPDX-License-Identifier: MIT

// Package capture implements the client-side recording session: acquire an
// audio input stream, run it through a fixed loudness-normalization chain,
// and finalize a single WAV blob bounded by a fixed maximum duration.
package capture

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrCapabilityUnavailable means the host exposes no capture
	// capability. Terminal; reported before any acquisition attempt.
	ErrCapabilityUnavailable = errors.New("capture: audio capture not supported on this host")

	// ErrPermissionDenied means the user declined microphone access.
	// Recoverable by retrying after granting.
	ErrPermissionDenied = errors.New("capture: microphone access denied")
)

// Format describes interleaved PCM audio.
type Format struct {
	SampleRate int // frames per second
	Channels   int
}

// Device grants access to an audio input. Acquire requests exclusive access
// to the input stream and fails with ErrPermissionDenied if the user
// declines.
type Device interface {
	Acquire(ctx context.Context) (Stream, error)
	Format() Format
}

// Stream emits interleaved PCM sample chunks. Next returns io.EOF when the
// source is exhausted; Close releases the underlying tracks and is
// idempotent.
type Stream interface {
	Next(ctx context.Context) ([]float32, error)
	Close() error
}

// FileDevice reads raw PCM from an io.Reader, emitting fixed-size chunks.
// It stands in for a microphone on headless clients. When paced, chunks are
// delivered at real-time rate.
type FileDevice struct {
	r      io.Reader
	format Format
	paced  bool
}

// chunkDuration is the emission interval of the underlying recorder.
const chunkDuration = 250 * time.Millisecond

// NewFileDevice wraps r (16-bit little-endian PCM) as a capture device.
func NewFileDevice(r io.Reader, format Format, paced bool) *FileDevice {
	return &FileDevice{r: r, format: format, paced: paced}
}

func (d *FileDevice) Format() Format { return d.format }

func (d *FileDevice) Acquire(ctx context.Context) (Stream, error) {
	if d.r == nil {
		return nil, ErrCapabilityUnavailable
	}
	return &fileStream{
		r:      d.r,
		format: d.format,
		paced:  d.paced,
	}, nil
}

type fileStream struct {
	r      io.Reader
	format Format
	paced  bool
	closed bool
}

func (s *fileStream) Next(ctx context.Context) ([]float32, error) {
	if s.closed {
		return nil, io.EOF
	}
	frames := int(float64(s.format.SampleRate) * chunkDuration.Seconds())
	buf := make([]byte, frames*s.format.Channels*2)
	n, err := io.ReadFull(s.r, buf)
	if n == 0 {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}
	if s.paced {
		select {
		case <-time.After(chunkDuration):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return pcm16ToFloat(buf[:n-n%2]), nil
}

func (s *fileStream) Close() error {
	s.closed = true
	return nil
}

func pcm16ToFloat(b []byte) []float32 {
	out := make([]float32, len(b)/2)
	for i := range out {
		v := int16(uint16(b[2*i]) | uint16(b[2*i+1])<<8)
		out[i] = float32(v) / 32768
	}
	return out
}

func floatToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		switch {
		case s > 1:
			s = 1
		case s < -1:
			s = -1
		}
		v := int16(s * 32767)
		out[2*i] = byte(uint16(v))
		out[2*i+1] = byte(uint16(v) >> 8)
	}
	return out
}
