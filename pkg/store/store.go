// Package store defines the persistence interface for sessions and attempts.
//
// The contract every implementation must honor: session aggregates
// (OverallBand, AttemptCount) are recomputed from the full attempt set inside
// the same transaction that inserts an attempt — never incremented — so a
// crash between writes can not leave them drifted.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/veslan/bandly/pkg/types"
)

// ErrNotFound is returned when a requested session or attempt does not exist.
var ErrNotFound = errors.New("store: not found")

// Repository is the persistence abstraction used by the session engine and
// the history aggregator. Implementations must be safe for concurrent use.
type Repository interface {
	// CreateSession opens a new practice session in the given mode and
	// returns it with a fresh ID and zeroed aggregates.
	CreateSession(ctx context.Context, mode types.Mode) (types.Session, error)

	// SaveAttempt persists one scored attempt and recomputes its parent
	// session's aggregates in the same transaction. The attempt's SessionID
	// must reference an existing session.
	SaveAttempt(ctx context.Context, attempt types.Attempt) error

	// Session returns the session with the given ID, or ErrNotFound.
	Session(ctx context.Context, id uuid.UUID) (types.Session, error)

	// RecentSessions returns sessions ordered newest first. A non-positive
	// limit returns all of them.
	RecentSessions(ctx context.Context, limit int) ([]types.Session, error)

	// RecentAttempts returns attempts across all sessions ordered newest
	// first. A non-positive limit returns all of them.
	RecentAttempts(ctx context.Context, limit int) ([]types.Attempt, error)

	// AttemptsBySession returns the attempts of one session in
	// chronological order (oldest first).
	AttemptsBySession(ctx context.Context, sessionID uuid.UUID) ([]types.Attempt, error)
}
