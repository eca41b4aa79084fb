// Package vad defines the Detector interface for silence detection backends.
//
// A detector analyses one finished recording and reports the silent regions
// within it. The pause ratio derived from those regions feeds the fluency
// sub-score, so detectors should err on the side of under-reporting silence:
// a missed pause costs less than speech misclassified as silence.
//
// Implementations must be safe for concurrent use.
package vad

import (
	"github.com/veslan/bandly/pkg/types"
)

// Config holds the parameters for a silence detection pass. Zero values fall
// back to detector defaults.
type Config struct {
	// SampleRate is the audio sample rate in Hz. Must match the rate of the
	// PCM buffer passed to DetectSilence.
	SampleRate int

	// Channels is the number of interleaved audio channels.
	Channels int

	// FrameSizeMs is the analysis window in milliseconds. Smaller frames
	// locate pause boundaries more precisely but cost more per pass.
	FrameSizeMs int

	// TopDB is the threshold below the recording's peak energy, in decibels,
	// under which a frame is classified as silent. Typical: 30.
	TopDB float64

	// MinSilenceMs is the shortest gap reported as a pause. Gaps below it
	// are treated as natural articulation breaks, not hesitation.
	MinSilenceMs int
}

// Detector is the abstraction over any silence detection backend.
type Detector interface {
	// DetectSilence returns the silent intervals within the recording given
	// as raw 16-bit signed little-endian PCM, ordered by start time and
	// non-overlapping.
	DetectSilence(pcm []byte, cfg Config) ([]types.Interval, error)
}
