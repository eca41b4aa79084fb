package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// ErrNotWAV is returned by DecodeWAV when the data does not start with a
// RIFF/WAVE header.
var ErrNotWAV = errors.New("audio: not a wav file")

const wavFormatPCM = 1

// DecodeWAV extracts the raw little-endian 16-bit PCM payload from a WAV
// file. Only uncompressed PCM is supported; compressed encodings return an
// error naming the format tag.
func DecodeWAV(data []byte) ([]byte, Format, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, Format{}, ErrNotWAV
	}

	var (
		format  Format
		pcm     []byte
		sawFmt  bool
		sawData bool
	)

	// Walk the chunk list. Chunks are word-aligned; odd sizes carry a pad byte.
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			return nil, Format{}, fmt.Errorf("audio: wav chunk %q overruns file", id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, Format{}, fmt.Errorf("audio: wav fmt chunk too short (%d bytes)", size)
			}
			if tag := binary.LittleEndian.Uint16(data[body : body+2]); tag != wavFormatPCM {
				return nil, Format{}, fmt.Errorf("audio: unsupported wav format tag %d (only PCM)", tag)
			}
			if bits := binary.LittleEndian.Uint16(data[body+14 : body+16]); bits != 16 {
				return nil, Format{}, fmt.Errorf("audio: unsupported wav bit depth %d (only 16)", bits)
			}
			format.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			format.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			sawFmt = true
		case "data":
			pcm = data[body : body+size]
			sawData = true
		}

		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if !sawFmt || !sawData {
		return nil, Format{}, errors.New("audio: wav file missing fmt or data chunk")
	}
	return pcm, format, nil
}

// ReadWAVFile reads a WAV file from disk and decodes its PCM payload.
func ReadWAVFile(path string) ([]byte, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Format{}, fmt.Errorf("audio: read %q: %w", path, err)
	}
	return DecodeWAV(data)
}
