// Package audio handles PCM plumbing for recorded answers: WAV decoding and
// conversion of arbitrary recording formats to the capture format the
// speech-to-text provider expects.
package audio

import "time"

// AudioFrame is a chunk of PCM audio with its format attached. For recorded
// answers the whole recording travels as one frame.
type AudioFrame struct {
	// Data is little-endian 16-bit PCM.
	Data []byte

	// SampleRate in Hz (e.g., 44100 for a typical recording, 16000 for STT).
	SampleRate int

	// Channels: 1 for mono, 2 for stereo.
	Channels int

	// Timestamp marks when this frame was captured, relative to stream start.
	Timestamp time.Duration
}
