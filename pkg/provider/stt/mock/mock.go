// Package mock provides a test double for the stt.Provider interface.
//
// Configure Result with the transcript a test needs and inspect Calls to
// verify what audio and configuration the caller passed.
package mock

import (
	"context"
	"sync"

	"github.com/veslan/bandly/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Provider.Transcribe.
type TranscribeCall struct {
	// PCM is the audio passed to Transcribe.
	PCM []byte
	// Cfg is the Config passed to Transcribe.
	Cfg stt.Config
}

// Provider is a mock implementation of stt.Provider.
type Provider struct {
	mu sync.Mutex

	// Result is returned by Transcribe when Err is nil.
	Result stt.Result

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// calls records every Transcribe invocation.
	calls []TranscribeCall
}

var _ stt.Provider = (*Provider)(nil)

// Transcribe records the call and returns the configured Result or Err.
func (p *Provider) Transcribe(ctx context.Context, pcm []byte, cfg stt.Config) (stt.Result, error) {
	if err := ctx.Err(); err != nil {
		return stt.Result{}, err
	}

	p.mu.Lock()
	p.calls = append(p.calls, TranscribeCall{PCM: pcm, Cfg: cfg})
	p.mu.Unlock()

	if p.Err != nil {
		return stt.Result{}, p.Err
	}
	return p.Result, nil
}

// Calls returns a copy of all recorded Transcribe invocations.
func (p *Provider) Calls() []TranscribeCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]TranscribeCall, len(p.calls))
	copy(out, p.calls)
	return out
}
