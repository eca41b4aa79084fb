// Package energy implements silence detection from frame-level signal energy.
//
// The recording is cut into fixed-size frames; each frame's RMS energy is
// compared against a threshold a configurable number of decibels below the
// recording's peak frame. Runs of quiet frames longer than the minimum gap
// are reported as silence. Scaling the threshold to the recording's own peak
// makes the detector robust to microphone gain differences.
package energy

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/veslan/bandly/pkg/provider/vad"
	"github.com/veslan/bandly/pkg/types"
)

const (
	defaultSampleRate   = 16000
	defaultFrameSizeMs  = 25
	defaultTopDB        = 30.0
	defaultMinSilenceMs = 300

	bytesPerSample = 2
)

// Compile-time assertion that Detector implements vad.Detector.
var _ vad.Detector = (*Detector)(nil)

// Detector is an energy-based silence detector. The zero value is ready to
// use; per-call Config fields override its defaults.
type Detector struct{}

// New returns a ready Detector.
func New() *Detector {
	return &Detector{}
}

// DetectSilence classifies each frame of the recording as speech or silence
// and merges quiet runs into intervals. A recording that is entirely silent
// yields a single interval spanning the whole buffer.
func (d *Detector) DetectSilence(pcm []byte, cfg vad.Config) ([]types.Interval, error) {
	sr := cfg.SampleRate
	if sr <= 0 {
		sr = defaultSampleRate
	}
	ch := cfg.Channels
	if ch <= 0 {
		ch = 1
	}
	frameMs := cfg.FrameSizeMs
	if frameMs <= 0 {
		frameMs = defaultFrameSizeMs
	}
	topDB := cfg.TopDB
	if topDB <= 0 {
		topDB = defaultTopDB
	}
	minSilenceMs := cfg.MinSilenceMs
	if minSilenceMs <= 0 {
		minSilenceMs = defaultMinSilenceMs
	}

	if len(pcm) == 0 {
		return nil, errors.New("energy: empty recording")
	}
	frameBytes := sr * ch * bytesPerSample * frameMs / 1000
	if frameBytes <= 0 {
		return nil, fmt.Errorf("energy: invalid frame size %d ms at %d Hz", frameMs, sr)
	}

	// Per-frame RMS, then the peak across frames as the loudness reference.
	var frames []float64
	for off := 0; off < len(pcm); off += frameBytes {
		end := min(off+frameBytes, len(pcm))
		frames = append(frames, frameRMS(pcm[off:end]))
	}
	var peak float64
	for _, rms := range frames {
		peak = max(peak, rms)
	}
	if peak == 0 {
		// Digital silence end to end.
		return []types.Interval{{Start: 0, End: pcmDuration(pcm, sr, ch)}}, nil
	}

	// A frame is silent when it sits more than topDB below the peak.
	threshold := peak * math.Pow(10, -topDB/20)

	frameDur := time.Duration(frameMs) * time.Millisecond
	minSilence := time.Duration(minSilenceMs) * time.Millisecond
	total := pcmDuration(pcm, sr, ch)

	var intervals []types.Interval
	var runStart time.Duration
	inRun := false
	for i, rms := range frames {
		at := time.Duration(i) * frameDur
		if rms < threshold {
			if !inRun {
				inRun = true
				runStart = at
			}
			continue
		}
		if inRun {
			inRun = false
			if at-runStart >= minSilence {
				intervals = append(intervals, types.Interval{Start: runStart, End: at})
			}
		}
	}
	if inRun && total-runStart >= minSilence {
		intervals = append(intervals, types.Interval{Start: runStart, End: total})
	}
	return intervals, nil
}

// frameRMS returns the root-mean-square energy of one frame of 16-bit signed
// little-endian PCM.
func frameRMS(frame []byte) float64 {
	n := len(frame) / bytesPerSample
	if n == 0 {
		return 0
	}
	var sum float64
	for i := range n {
		sample := int16(binary.LittleEndian.Uint16(frame[i*bytesPerSample : i*bytesPerSample+bytesPerSample]))
		v := float64(sample)
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}

func pcmDuration(pcm []byte, sampleRate, channels int) time.Duration {
	bytesPerSec := sampleRate * channels * bytesPerSample
	return time.Duration(len(pcm)) * time.Second / time.Duration(bytesPerSec)
}
