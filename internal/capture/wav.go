// SPDX-License-Identifier: MIT

package capture

import (
	"encoding/binary"
	"fmt"
)

// Encoder turns accumulated PCM samples into a finalized audio container.
// It is a capability resolved at session construction; a session without an
// encoder cannot capture.
type Encoder interface {
	Encode(samples []float32, format Format) ([]byte, error)
	MIMEType() string
}

// WAVEncoder encodes 16-bit PCM into a RIFF/WAVE container.
type WAVEncoder struct{}

func (WAVEncoder) MIMEType() string { return "audio/wav" }

func (WAVEncoder) Encode(samples []float32, format Format) ([]byte, error) {
	if format.SampleRate <= 0 || format.Channels <= 0 {
		return nil, fmt.Errorf("capture: invalid format %+v", format)
	}
	pcm := floatToPCM16(samples)

	const headerSize = 44
	buf := make([]byte, headerSize+len(pcm))
	byteRate := format.SampleRate * format.Channels * 2
	blockAlign := format.Channels * 2

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+len(pcm)))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(buf[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(format.Channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(format.SampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], 16) // bits per sample
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(len(pcm)))
	copy(buf[headerSize:], pcm)

	return buf, nil
}

// DecodeWAV parses a 16-bit PCM RIFF/WAVE payload into its format and raw
// PCM bytes. Only the subset produced by WAVEncoder is supported.
func DecodeWAV(data []byte) (Format, []byte, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Format{}, nil, fmt.Errorf("capture: not a RIFF/WAVE payload")
	}

	var format Format
	var pcm []byte
	sawFmt := false

	// Walk the chunk list; only "fmt " and "data" matter.
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			return Format{}, nil, fmt.Errorf("capture: truncated %q chunk", id)
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return Format{}, nil, fmt.Errorf("capture: short fmt chunk")
			}
			if audioFormat := binary.LittleEndian.Uint16(data[body : body+2]); audioFormat != 1 {
				return Format{}, nil, fmt.Errorf("capture: unsupported WAV format %d", audioFormat)
			}
			if bits := binary.LittleEndian.Uint16(data[body+14 : body+16]); bits != 16 {
				return Format{}, nil, fmt.Errorf("capture: unsupported bit depth %d", bits)
			}
			format.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			format.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			sawFmt = true
		case "data":
			pcm = data[body : body+size]
		}
		off = body + size
		if size%2 == 1 {
			off++ // chunks are word-aligned
		}
	}

	if !sawFmt || pcm == nil {
		return Format{}, nil, fmt.Errorf("capture: missing fmt or data chunk")
	}
	return format, pcm, nil
}
