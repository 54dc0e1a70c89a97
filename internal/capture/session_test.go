// SPDX-License-Identifier: MIT

package capture

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// pcmBytes produces n frames of silence as 16-bit PCM.
func pcmBytes(format Format, seconds float64) []byte {
	frames := int(float64(format.SampleRate) * seconds)
	return make([]byte, frames*format.Channels*2)
}

func newFileSession(t *testing.T, format Format, pcm []byte, cfg SessionConfig) *Session {
	t.Helper()
	if cfg.Encoder == nil {
		cfg.Encoder = WAVEncoder{}
	}
	device := NewFileDevice(bytes.NewReader(pcm), format, false)
	session, err := NewSession(device, cfg)
	require.NoError(t, err)
	return session
}

func TestSession_CapturesUntilSourceEnds(t *testing.T) {
	format := Format{SampleRate: 8000, Channels: 1}
	session := newFileSession(t, format, pcmBytes(format, 3), SessionConfig{})

	ctx := context.Background()
	require.NoError(t, session.Start(ctx))

	blob, err := session.Blob(ctx)
	require.NoError(t, err)

	gotFormat, pcm, err := DecodeWAV(blob)
	require.NoError(t, err)
	assert.Equal(t, format, gotFormat)
	assert.Len(t, pcm, 3*format.SampleRate*2)
}

func TestSession_EnforcesDurationCeiling(t *testing.T) {
	format := Format{SampleRate: 8000, Channels: 1}
	// Source holds 10 seconds of audio, the ceiling is 2.
	session := newFileSession(t, format, pcmBytes(format, 10), SessionConfig{
		MaxDuration: 2 * time.Second,
	})

	ctx := context.Background()
	require.NoError(t, session.Start(ctx))

	blob, err := session.Blob(ctx)
	require.NoError(t, err)

	_, pcm, err := DecodeWAV(blob)
	require.NoError(t, err)
	assert.Len(t, pcm, 2*format.SampleRate*2)
}

func TestSession_PreservesChunkOrder(t *testing.T) {
	format := Format{SampleRate: 8000, Channels: 1}

	// A ramp across chunk boundaries surfaces any reordering.
	frames := 3 * format.SampleRate
	samples := make([]float32, frames)
	for i := range samples {
		samples[i] = float32(i%1000) / 2000
	}
	pcm := floatToPCM16(samples)

	session := newFileSession(t, format, pcm, SessionConfig{})
	ctx := context.Background()
	require.NoError(t, session.Start(ctx))

	blob, err := session.Blob(ctx)
	require.NoError(t, err)

	// The device decodes PCM to floats and the encoder quantizes back, so
	// expected bytes go through the same pair of conversions.
	expected := floatToPCM16(pcm16ToFloat(pcm))

	_, gotPCM, err := DecodeWAV(blob)
	require.NoError(t, err)
	assert.Equal(t, expected, gotPCM)
}

func TestSession_StopWithoutStartIsNoop(t *testing.T) {
	format := Format{SampleRate: 8000, Channels: 1}
	session := newFileSession(t, format, nil, SessionConfig{})
	session.Stop() // must not panic or block
}

func TestSession_BlobBeforeStart(t *testing.T) {
	format := Format{SampleRate: 8000, Channels: 1}
	session := newFileSession(t, format, nil, SessionConfig{})

	_, err := session.Blob(context.Background())
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestSession_StopIsIdempotent(t *testing.T) {
	format := Format{SampleRate: 8000, Channels: 1}
	session := newFileSession(t, format, pcmBytes(format, 1), SessionConfig{})

	ctx := context.Background()
	require.NoError(t, session.Start(ctx))
	session.Stop()
	session.Stop()

	blob, err := session.Blob(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, blob)
}

func TestSession_RestartResetsPriorState(t *testing.T) {
	format := Format{SampleRate: 8000, Channels: 1}

	first := pcmBytes(format, 2)
	second := pcmBytes(format, 1)
	device := &queueDevice{format: format, sources: [][]byte{first, second}}

	session, err := NewSession(device, SessionConfig{Encoder: WAVEncoder{}})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, session.Start(ctx))
	_, err = session.Blob(ctx)
	require.NoError(t, err)

	require.NoError(t, session.Start(ctx))
	blob, err := session.Blob(ctx)
	require.NoError(t, err)

	// Only the second source's audio may appear in the final blob.
	_, pcm, err := DecodeWAV(blob)
	require.NoError(t, err)
	assert.Len(t, pcm, len(second))
}

func TestSession_BlobAfterFailedRestart(t *testing.T) {
	format := Format{SampleRate: 8000, Channels: 1}
	device := &queueDevice{format: format, sources: [][]byte{pcmBytes(format, 1)}}

	session, err := NewSession(device, SessionConfig{Encoder: WAVEncoder{}})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, session.Start(ctx))
	_, err = session.Blob(ctx)
	require.NoError(t, err)

	// The queue is exhausted, so the restart's acquisition fails. Blob must
	// not report the discarded first recording as an empty success.
	require.ErrorIs(t, session.Start(ctx), ErrCapabilityUnavailable)
	_, err = session.Blob(ctx)
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestNewSession_RequiresDeviceAndEncoder(t *testing.T) {
	format := Format{SampleRate: 8000, Channels: 1}
	device := NewFileDevice(bytes.NewReader(nil), format, false)

	_, err := NewSession(nil, SessionConfig{Encoder: WAVEncoder{}})
	require.ErrorIs(t, err, ErrCapabilityUnavailable)

	_, err = NewSession(device, SessionConfig{})
	require.ErrorIs(t, err, ErrCapabilityUnavailable)
}

// queueDevice hands out one source per Acquire call.
type queueDevice struct {
	format  Format
	sources [][]byte
}

func (d *queueDevice) Format() Format { return d.format }

func (d *queueDevice) Acquire(ctx context.Context) (Stream, error) {
	if len(d.sources) == 0 {
		return nil, ErrCapabilityUnavailable
	}
	src := d.sources[0]
	d.sources = d.sources[1:]
	inner := NewFileDevice(bytes.NewReader(src), d.format, false)
	return inner.Acquire(ctx)
}
