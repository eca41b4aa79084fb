// Package whisper provides a local whisper.cpp-backed STT provider using the
// CGO bindings. The whisper.cpp static library (libwhisper.a) and headers
// (whisper.h) must be available at link time via LIBRARY_PATH and
// C_INCLUDE_PATH environment variables.
//
// The model is loaded once at construction and shared across all
// transcriptions; each Transcribe call creates its own whisper context, so
// concurrent calls do not interfere.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/veslan/bandly/pkg/provider/stt"
	"github.com/veslan/bandly/pkg/types"
)

const (
	// bitsPerSample is fixed at 16 for the 16-bit signed little-endian PCM
	// audio that whisper.cpp expects.
	bitsPerSample = 16

	// defaultRMSThreshold is the root-mean-square energy level (in 16-bit
	// PCM units) below which a whole recording is considered silent. The
	// maximum possible value for 16-bit audio is 32 767; 300 corresponds to
	// near-silence.
	defaultRMSThreshold = 300.0

	defaultLanguage   = "en"
	defaultSampleRate = 16000
)

// Compile-time assertion that Provider implements stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithLanguage sets the BCP-47 language code for transcription (e.g., "en",
// "de", "fr"). Defaults to "en".
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

// WithSampleRate sets the default audio sample rate in Hz, used when the
// per-request Config leaves it zero. Defaults to 16000.
func WithSampleRate(rate int) Option {
	return func(p *Provider) { p.sampleRate = rate }
}

// WithRMSThreshold sets the energy level below which a recording is rejected
// as silent before any inference runs.
func WithRMSThreshold(threshold float64) Option {
	return func(p *Provider) { p.rmsThreshold = threshold }
}

// Provider implements stt.Provider backed by an in-process whisper.cpp model.
type Provider struct {
	model        whisperlib.Model
	language     string
	sampleRate   int
	rmsThreshold float64
}

// New creates a Provider that loads the whisper.cpp model from the given file
// path. The caller must call Close when the provider is no longer needed.
func New(modelPath string, opts ...Option) (*Provider, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	p := &Provider{
		model:        model,
		language:     defaultLanguage,
		sampleRate:   defaultSampleRate,
		rmsThreshold: defaultRMSThreshold,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Close releases the whisper model.
func (p *Provider) Close() error {
	if p.model != nil {
		return p.model.Close()
	}
	return nil
}

// Transcribe runs whisper.cpp inference over the full recording and returns
// the recognised text with word-level timings and confidences. Recordings
// whose overall energy is below the silence threshold return stt.ErrNoSpeech
// without touching the model.
func (p *Provider) Transcribe(ctx context.Context, pcm []byte, cfg stt.Config) (stt.Result, error) {
	if err := ctx.Err(); err != nil {
		return stt.Result{}, fmt.Errorf("whisper: context already cancelled: %w", err)
	}

	lang := cfg.Language
	if lang == "" {
		lang = p.language
	}
	sr := cfg.SampleRate
	if sr <= 0 {
		sr = p.sampleRate
	}
	ch := cfg.Channels
	if ch <= 0 {
		ch = 1
	}

	if computeRMS(pcm) < p.rmsThreshold {
		return stt.Result{}, stt.ErrNoSpeech
	}

	samples := pcmToFloat32Mono(pcm, ch)

	// Each context is NOT thread-safe, but the model can be shared across
	// goroutines.
	wctx, err := p.model.NewContext()
	if err != nil {
		return stt.Result{}, fmt.Errorf("whisper: create context: %w", err)
	}
	if err := wctx.SetLanguage(lang); err != nil {
		slog.Warn("whisper: failed to set language, using default", "language", lang, "error", err)
	}
	wctx.SetTokenTimestamps(true)

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return stt.Result{}, fmt.Errorf("whisper: process audio: %w", err)
	}

	var parts []string
	var words []types.TimedWord
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stt.Result{}, fmt.Errorf("whisper: read segment: %w", err)
		}
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
		words = append(words, wordsFromTokens(segment.Tokens)...)
	}

	text := strings.Join(parts, " ")
	if text == "" {
		return stt.Result{}, stt.ErrNoSpeech
	}

	return stt.Result{
		Text:     text,
		Words:    words,
		Duration: pcmDuration(pcm, sr, ch),
	}, nil
}

// wordsFromTokens merges whisper's sub-word tokens into whole words. A token
// starting with a space begins a new word; continuation tokens extend the
// current one. Word confidence is the mean token probability, timing spans
// first to last token. Special tokens (bracketed markers) are skipped.
func wordsFromTokens(tokens []whisperlib.Token) []types.TimedWord {
	var words []types.TimedWord
	var current *types.TimedWord
	var probSum float64
	var probN int

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(current.Text)
		if current.Text != "" {
			if probN > 0 {
				current.Confidence = probSum / float64(probN)
				current.HasConfidence = true
			}
			words = append(words, *current)
		}
		current = nil
		probSum = 0
		probN = 0
	}

	for _, tok := range tokens {
		if strings.HasPrefix(tok.Text, "[_") {
			continue
		}
		startsWord := strings.HasPrefix(tok.Text, " ") || current == nil
		if startsWord {
			flush()
			current = &types.TimedWord{Text: tok.Text, Start: tok.Start, End: tok.End}
		} else {
			current.Text += tok.Text
			current.End = tok.End
		}
		probSum += float64(tok.P)
		probN++
	}
	flush()
	return words
}
