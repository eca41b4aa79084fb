// Package stt defines the Provider interface for speech-to-text backends.
//
// An STT provider transcribes one finished recording per call: practice
// answers are captured in full before scoring, so the interface is batch
// rather than streaming. Implementations must be safe for concurrent use —
// multiple attempts may be transcribed simultaneously.
package stt

import (
	"context"
	"errors"
)

// ErrNoSpeech is returned when the recording contains no detectable speech.
// Callers should surface this as "nothing was heard", not as a provider
// failure.
var ErrNoSpeech = errors.New("stt: no speech detected in recording")

// Config describes the audio format and recognition hints for a
// transcription request. Zero values fall back to provider defaults.
type Config struct {
	// SampleRate is the audio sample rate in Hz. Typical capture format is
	// 16000 Hz mono 16-bit PCM.
	SampleRate int

	// Channels is the number of interleaved audio channels. Providers
	// downmix to mono internally.
	Channels int

	// Language is the BCP-47 language tag for recognition (e.g., "en").
	// Empty lets the provider use its default.
	Language string
}

// Provider is the abstraction over any speech-to-text backend.
type Provider interface {
	// Transcribe recognises the full recording given as raw 16-bit signed
	// little-endian PCM. Returns ErrNoSpeech when the audio holds no
	// recognisable speech, or another error on backend failure.
	Transcribe(ctx context.Context, pcm []byte, cfg Config) (Result, error)
}
