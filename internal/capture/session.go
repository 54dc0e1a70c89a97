// SPDX-License-Identifier: MIT

package capture

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MaxDuration is the fixed recording ceiling.
const MaxDuration = 15 * time.Second

// ErrNotStarted is returned by Blob before Start has been called.
var ErrNotStarted = errors.New("capture: session not started")

// SessionConfig configures a capture session.
type SessionConfig struct {
	MaxDuration time.Duration // defaults to MaxDuration
	Chain       *Chain        // optional processing chain
	Encoder     Encoder       // required; session fails without one
}

// Session tracks one in-progress recording. It holds at most one active
// stream and one countdown at a time. Stopping an inactive session is a
// no-op; restarting resets prior state first.
type Session struct {
	device Device
	cfg    SessionConfig

	mu          sync.Mutex
	cancel      context.CancelFunc
	done        chan struct{}
	active      bool
	secondsLeft int
	blob        []byte
	err         error
}

// NewSession creates a session for device. The encoder is the capture
// capability: without it (or a device) the host cannot record, reported
// before any acquisition attempt.
func NewSession(device Device, cfg SessionConfig) (*Session, error) {
	if device == nil || cfg.Encoder == nil {
		return nil, ErrCapabilityUnavailable
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = MaxDuration
	}
	return &Session{device: device, cfg: cfg}, nil
}

// Start acquires the input stream and begins accumulating chunks. If a
// prior session is still active its resources are fully released first, so
// restarting is equivalent to a fresh session. Returns ErrPermissionDenied
// if the user declines access.
func (s *Session) Start(ctx context.Context) error {
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.blob = nil
	s.err = nil
	if s.cfg.Chain != nil {
		s.cfg.Chain.Reset()
	}

	stream, err := s.device.Acquire(ctx)
	if err != nil {
		// Prior state is already reset; a stale done channel from the
		// previous run must not make Blob report an empty recording.
		s.done = nil
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.active = true
	s.secondsLeft = int(s.cfg.MaxDuration / time.Second)

	go s.run(runCtx, cancel, stream, s.done)
	go s.countdown(runCtx, cancel)
	return nil
}

// Stop terminates an active recording. It waits until the stream is
// released and the blob finalized. Calling Stop on an inactive session is a
// no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Blob returns the finalized audio payload, waiting for an in-flight
// recording to terminate.
func (s *Session) Blob(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return nil, ErrNotStarted
	}
	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blob, s.err
}

// SecondsLeft reports the countdown value of the active recording.
func (s *Session) SecondsLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secondsLeft
}

// run pulls chunks in strict arrival order until the stream ends, the
// session is stopped, or the duration's worth of frames is reached, then
// releases everything and finalizes the blob exactly once.
func (s *Session) run(ctx context.Context, cancel context.CancelFunc, stream Stream, done chan struct{}) {
	defer close(done)
	defer cancel()

	format := s.device.Format()
	maxSamples := int(s.cfg.MaxDuration.Seconds()*float64(format.SampleRate)) * format.Channels

	var chunks [][]float32
	total := 0
	for total < maxSamples {
		chunk, err := stream.Next(ctx)
		if err != nil {
			break
		}
		if room := maxSamples - total; len(chunk) > room {
			chunk = chunk[:room]
		}
		if s.cfg.Chain != nil {
			s.cfg.Chain.Process(chunk)
		}
		chunks = append(chunks, chunk)
		total += len(chunk)
	}

	_ = stream.Close()
	if s.cfg.Chain != nil {
		s.cfg.Chain.Reset()
	}

	// Concatenation order must match emission order.
	all := make([]float32, 0, total)
	for _, c := range chunks {
		all = append(all, c...)
	}
	blob, err := s.cfg.Encoder.Encode(all, format)

	s.mu.Lock()
	s.blob = blob
	s.err = err
	s.active = false
	s.cancel = nil
	s.mu.Unlock()
}

// countdown decrements once per second, independently from chunk emission,
// and stops the recording when it reaches zero.
func (s *Session) countdown(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			s.secondsLeft--
			left := s.secondsLeft
			s.mu.Unlock()
			if left <= 0 {
				cancel()
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
