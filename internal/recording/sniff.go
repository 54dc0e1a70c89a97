// SPDX-License-Identifier: MIT

package recording

import "bytes"

// signature is a magic-byte pattern for an audio container.
type signature struct {
	mime   string
	offset int
	magic  []byte
}

// Audio signatures, checked in order. The RIFF and FORM entries additionally
// require an audio form type at offset 8, otherwise AVI and ILBM files would
// pass.
var audioSignatures = []signature{
	{mime: "audio/wav", offset: 0, magic: []byte("RIFF")},
	{mime: "audio/mpeg", offset: 0, magic: []byte("ID3")},
	{mime: "audio/mpeg", offset: 0, magic: []byte{0xFF, 0xFB}},
	{mime: "audio/mpeg", offset: 0, magic: []byte{0xFF, 0xF3}},
	{mime: "audio/mpeg", offset: 0, magic: []byte{0xFF, 0xF2}},
	{mime: "audio/ogg", offset: 0, magic: []byte("OggS")},
	{mime: "audio/flac", offset: 0, magic: []byte("fLaC")},
	{mime: "audio/aiff", offset: 0, magic: []byte("FORM")},
	{mime: "audio/mp4", offset: 4, magic: []byte("ftypM4A")},
}

// SniffAudio inspects the byte signature of data and returns the detected
// audio MIME type. The check is content-based; caller-supplied labels are
// never trusted. Returns ErrUnsupportedMediaType if the payload does not
// start with a known audio signature.
func SniffAudio(data []byte) (string, error) {
	for _, sig := range audioSignatures {
		end := sig.offset + len(sig.magic)
		if len(data) < end {
			continue
		}
		if !bytes.Equal(data[sig.offset:end], sig.magic) {
			continue
		}
		if string(sig.magic) == "RIFF" {
			if len(data) < 12 || !bytes.Equal(data[8:12], []byte("WAVE")) {
				continue
			}
		}
		if string(sig.magic) == "FORM" {
			if len(data) < 12 {
				continue
			}
			if form := data[8:12]; !bytes.Equal(form, []byte("AIFF")) && !bytes.Equal(form, []byte("AIFC")) {
				continue
			}
		}
		return sig.mime, nil
	}
	return "", ErrUnsupportedMediaType
}
