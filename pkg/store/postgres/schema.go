// Package postgres provides the PostgreSQL-backed store.Repository.
//
// Sessions and attempts live in two tables sharing one [pgxpool.Pool].
// Structured feedback (grammar corrections, vocabulary upgrades, warnings)
// is stored as JSONB so the history aggregator can read it back without a
// join per list.
//
// Usage:
//
//	repo, err := postgres.New(ctx, dsn)
//	if err != nil { … }
//	defer repo.Close()
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlSessions = `
CREATE TABLE IF NOT EXISTS sessions (
    id             UUID              PRIMARY KEY,
    timestamp      TIMESTAMPTZ       NOT NULL DEFAULT now(),
    mode           TEXT              NOT NULL,
    overall_band   DOUBLE PRECISION  NOT NULL DEFAULT 0,
    attempt_count  INTEGER           NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_sessions_timestamp
    ON sessions (timestamp);
`

const ddlAttempts = `
CREATE TABLE IF NOT EXISTS attempts (
    id                      UUID              PRIMARY KEY,
    session_id              UUID              NOT NULL REFERENCES sessions (id) ON DELETE CASCADE,
    timestamp               TIMESTAMPTZ       NOT NULL DEFAULT now(),
    part                    INTEGER           NOT NULL DEFAULT 0,
    topic                   TEXT              NOT NULL DEFAULT '',
    question_text           TEXT              NOT NULL DEFAULT '',
    transcript              TEXT              NOT NULL DEFAULT '',
    has_metrics             BOOLEAN           NOT NULL DEFAULT FALSE,
    duration_ns             BIGINT            NOT NULL DEFAULT 0,
    speech_rate_wpm         DOUBLE PRECISION  NOT NULL DEFAULT 0,
    pause_ratio             DOUBLE PRECISION  NOT NULL DEFAULT 0,
    pron_confidence         DOUBLE PRECISION  NOT NULL DEFAULT 0,
    confidence_signal       BOOLEAN           NOT NULL DEFAULT FALSE,
    criteria                JSONB             NOT NULL DEFAULT '{}',
    overall_band            DOUBLE PRECISION  NOT NULL,
    examiner_feedback       TEXT              NOT NULL DEFAULT '',
    grammar_corrections     JSONB             NOT NULL DEFAULT '[]',
    vocabulary_upgrades     JSONB             NOT NULL DEFAULT '[]',
    improvement_tips        JSONB             NOT NULL DEFAULT '[]',
    strengths               JSONB             NOT NULL DEFAULT '[]',
    pronunciation_warnings  JSONB             NOT NULL DEFAULT '[]',
    source                  TEXT              NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_attempts_session_id
    ON attempts (session_id);

CREATE INDEX IF NOT EXISTS idx_attempts_timestamp
    ON attempts (timestamp);
`

// Migrate creates or ensures all required tables and indexes exist. It is
// idempotent (CREATE TABLE IF NOT EXISTS / CREATE INDEX IF NOT EXISTS) and
// safe to call on every application start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range []string{ddlSessions, ddlAttempts} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
	}
	return nil
}
