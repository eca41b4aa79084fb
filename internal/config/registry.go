package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/veslan/bandly/pkg/provider/evaluator"
	"github.com/veslan/bandly/pkg/provider/stt"
	"github.com/veslan/bandly/pkg/provider/vad"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory has
// been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// provider type. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	stt       map[string]func(ProviderEntry) (stt.Provider, error)
	vad       map[string]func(ProviderEntry) (vad.Detector, error)
	evaluator map[string]func(ProviderEntry) (evaluator.Provider, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		stt:       make(map[string]func(ProviderEntry) (stt.Provider, error)),
		vad:       make(map[string]func(ProviderEntry) (vad.Detector, error)),
		evaluator: make(map[string]func(ProviderEntry) (evaluator.Provider, error)),
	}
}

// RegisterSTT registers an STT provider factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterSTT(name string, factory func(ProviderEntry) (stt.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stt[name] = factory
}

// RegisterVAD registers a silence detector factory under name.
func (r *Registry) RegisterVAD(name string, factory func(ProviderEntry) (vad.Detector, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vad[name] = factory
}

// RegisterEvaluator registers a content evaluator factory under name.
func (r *Registry) RegisterEvaluator(name string, factory func(ProviderEntry) (evaluator.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluator[name] = factory
}

// CreateSTT instantiates an STT provider using the factory registered under
// entry.Name. Returns [ErrProviderNotRegistered] if no factory has been
// registered for that name.
func (r *Registry) CreateSTT(entry ProviderEntry) (stt.Provider, error) {
	r.mu.RLock()
	factory, ok := r.stt[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: stt/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateVAD instantiates a silence detector using the factory registered under entry.Name.
func (r *Registry) CreateVAD(entry ProviderEntry) (vad.Detector, error) {
	r.mu.RLock()
	factory, ok := r.vad[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: vad/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateEvaluator instantiates a content evaluator using the factory registered under entry.Name.
func (r *Registry) CreateEvaluator(entry ProviderEntry) (evaluator.Provider, error) {
	r.mu.RLock()
	factory, ok := r.evaluator[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: evaluator/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}
