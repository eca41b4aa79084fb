// Package mock provides an in-memory store.Repository for tests.
//
// It honors the same aggregate contract as the real store: session
// OverallBand and AttemptCount are recomputed from the full attempt set on
// every SaveAttempt.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veslan/bandly/pkg/store"
	"github.com/veslan/bandly/pkg/types"
)

// Repository is an in-memory implementation of store.Repository.
// The zero value is ready to use.
type Repository struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]types.Session
	attempts []types.Attempt

	// SaveAttemptErr, if non-nil, is returned from SaveAttempt.
	SaveAttemptErr error
}

var _ store.Repository = (*Repository)(nil)

// CreateSession implements store.Repository.
func (r *Repository) CreateSession(ctx context.Context, mode types.Mode) (types.Session, error) {
	if err := ctx.Err(); err != nil {
		return types.Session{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions == nil {
		r.sessions = make(map[uuid.UUID]types.Session)
	}
	s := types.Session{ID: uuid.New(), Timestamp: time.Now().UTC(), Mode: mode}
	r.sessions[s.ID] = s
	return s, nil
}

// SaveAttempt implements store.Repository.
func (r *Repository) SaveAttempt(ctx context.Context, a types.Attempt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.SaveAttemptErr != nil {
		return r.SaveAttemptErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[a.SessionID]
	if !ok {
		return fmt.Errorf("mock store: session %s: %w", a.SessionID, store.ErrNotFound)
	}
	r.attempts = append(r.attempts, a)

	var sum float64
	var count int
	for _, att := range r.attempts {
		if att.SessionID == a.SessionID {
			sum += att.Result.Overall
			count++
		}
	}
	s.AttemptCount = count
	s.OverallBand = sum / float64(count)
	r.sessions[a.SessionID] = s
	return nil
}

// Session implements store.Repository.
func (r *Repository) Session(ctx context.Context, id uuid.UUID) (types.Session, error) {
	if err := ctx.Err(); err != nil {
		return types.Session{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return types.Session{}, fmt.Errorf("mock store: session %s: %w", id, store.ErrNotFound)
	}
	return s, nil
}

// RecentSessions implements store.Repository.
func (r *Repository) RecentSessions(ctx context.Context, limit int) ([]types.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RecentAttempts implements store.Repository.
func (r *Repository) RecentAttempts(ctx context.Context, limit int) ([]types.Attempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Attempt, len(r.attempts))
	copy(out, r.attempts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// AttemptsBySession implements store.Repository.
func (r *Repository) AttemptsBySession(ctx context.Context, sessionID uuid.UUID) ([]types.Attempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var out []types.Attempt
	for _, a := range r.attempts {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
