package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veslan/bandly/pkg/store"
	"github.com/veslan/bandly/pkg/types"
)

// Compile-time interface check.
var _ store.Repository = (*Repository)(nil)

// Repository is the PostgreSQL-backed store.Repository. All operations are
// safe for concurrent use.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a Repository, establishes a connection pool to the PostgreSQL
// database at dsn, and runs [Migrate] to ensure the schema exists.
func New(ctx context.Context, dsn string) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}

	return &Repository{pool: pool}, nil
}

// Close releases all connections held by the underlying connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// CreateSession implements store.Repository.
func (r *Repository) CreateSession(ctx context.Context, mode types.Mode) (types.Session, error) {
	if !mode.IsValid() {
		return types.Session{}, fmt.Errorf("postgres store: invalid mode %q", mode)
	}

	s := types.Session{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Mode:      mode,
	}

	const q = `
		INSERT INTO sessions (id, timestamp, mode, overall_band, attempt_count)
		VALUES ($1, $2, $3, 0, 0)`

	if _, err := r.pool.Exec(ctx, q, s.ID, s.Timestamp, string(s.Mode)); err != nil {
		return types.Session{}, fmt.Errorf("postgres store: create session: %w", err)
	}
	return s, nil
}

// SaveAttempt implements store.Repository. The attempt insert and the session
// aggregate recompute run in one transaction, and the aggregates are derived
// from the full attempt set rather than incremented.
func (r *Repository) SaveAttempt(ctx context.Context, a types.Attempt) error {
	row, err := attemptToRow(a)
	if err != nil {
		return fmt.Errorf("postgres store: encode attempt: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres store: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const insert = `
		INSERT INTO attempts
		    (id, session_id, timestamp, part, topic, question_text, transcript,
		     has_metrics, duration_ns, speech_rate_wpm, pause_ratio, pron_confidence, confidence_signal,
		     criteria, overall_band, examiner_feedback,
		     grammar_corrections, vocabulary_upgrades, improvement_tips, strengths, pronunciation_warnings,
		     source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`

	if _, err := tx.Exec(ctx, insert, row...); err != nil {
		return fmt.Errorf("postgres store: insert attempt: %w", err)
	}

	const recompute = `
		UPDATE sessions
		SET attempt_count = (SELECT count(*) FROM attempts WHERE session_id = $1),
		    overall_band  = COALESCE((SELECT avg(overall_band) FROM attempts WHERE session_id = $1), 0)
		WHERE id = $1`

	tag, err := tx.Exec(ctx, recompute, a.SessionID)
	if err != nil {
		return fmt.Errorf("postgres store: recompute session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres store: session %s: %w", a.SessionID, store.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres store: commit: %w", err)
	}
	return nil
}

// Session implements store.Repository.
func (r *Repository) Session(ctx context.Context, id uuid.UUID) (types.Session, error) {
	const q = `
		SELECT id, timestamp, mode, overall_band, attempt_count
		FROM   sessions
		WHERE  id = $1`

	var s types.Session
	var mode string
	err := r.pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.Timestamp, &mode, &s.OverallBand, &s.AttemptCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Session{}, fmt.Errorf("postgres store: session %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return types.Session{}, fmt.Errorf("postgres store: get session: %w", err)
	}
	s.Mode = types.Mode(mode)
	return s, nil
}

// RecentSessions implements store.Repository.
func (r *Repository) RecentSessions(ctx context.Context, limit int) ([]types.Session, error) {
	q := `
		SELECT id, timestamp, mode, overall_band, attempt_count
		FROM   sessions
		ORDER  BY timestamp DESC`
	args := []any{}
	if limit > 0 {
		q += "\nLIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres store: recent sessions: %w", err)
	}

	sessions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Session, error) {
		var s types.Session
		var mode string
		if err := row.Scan(&s.ID, &s.Timestamp, &mode, &s.OverallBand, &s.AttemptCount); err != nil {
			return types.Session{}, err
		}
		s.Mode = types.Mode(mode)
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("postgres store: scan sessions: %w", err)
	}
	if sessions == nil {
		sessions = []types.Session{}
	}
	return sessions, nil
}

// RecentAttempts implements store.Repository.
func (r *Repository) RecentAttempts(ctx context.Context, limit int) ([]types.Attempt, error) {
	q := attemptSelect + "\nORDER  BY timestamp DESC"
	args := []any{}
	if limit > 0 {
		q += "\nLIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres store: recent attempts: %w", err)
	}
	return collectAttempts(rows)
}

// AttemptsBySession implements store.Repository.
func (r *Repository) AttemptsBySession(ctx context.Context, sessionID uuid.UUID) ([]types.Attempt, error) {
	q := attemptSelect + "\nWHERE  session_id = $1\nORDER  BY timestamp"

	rows, err := r.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("postgres store: attempts by session: %w", err)
	}
	return collectAttempts(rows)
}
