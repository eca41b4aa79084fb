// Package mock provides a test double for the vad.Detector interface.
package mock

import (
	"sync"

	"github.com/veslan/bandly/pkg/provider/vad"
	"github.com/veslan/bandly/pkg/types"
)

// DetectCall records a single invocation of Detector.DetectSilence.
type DetectCall struct {
	// PCM is the audio passed to DetectSilence.
	PCM []byte
	// Cfg is the Config passed to DetectSilence.
	Cfg vad.Config
}

// Detector is a mock implementation of vad.Detector.
type Detector struct {
	mu sync.Mutex

	// Intervals is returned by DetectSilence when Err is nil.
	Intervals []types.Interval

	// Err, if non-nil, is returned as the error from DetectSilence.
	Err error

	// calls records every DetectSilence invocation.
	calls []DetectCall
}

var _ vad.Detector = (*Detector)(nil)

// DetectSilence records the call and returns the configured Intervals or Err.
func (d *Detector) DetectSilence(pcm []byte, cfg vad.Config) ([]types.Interval, error) {
	d.mu.Lock()
	d.calls = append(d.calls, DetectCall{PCM: pcm, Cfg: cfg})
	d.mu.Unlock()

	if d.Err != nil {
		return nil, d.Err
	}
	return d.Intervals, nil
}

// Calls returns a copy of all recorded DetectSilence invocations.
func (d *Detector) Calls() []DetectCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]DetectCall, len(d.calls))
	copy(out, d.calls)
	return out
}
