package stt

import (
	"time"

	"github.com/veslan/bandly/pkg/types"
)

// Result is a completed transcription of one recording.
type Result struct {
	// Text is the full recognised text, segment texts joined with spaces.
	Text string

	// Words holds per-word timing and confidence when the backend supports
	// it. May be empty for backends without word-level output; delivery
	// analysis then runs without a confidence signal.
	Words []types.TimedWord

	// Duration is the length of the transcribed audio.
	Duration time.Duration
}
