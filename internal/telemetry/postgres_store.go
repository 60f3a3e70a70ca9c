package telemetry

import (
	"context"
	"errors"
	"fmt"

	"legaldoc/internal/models"
	"legaldoc/internal/storage"
	"legaldoc/internal/util"

	"github.com/jackc/pgx/v5"
)

// PostgresStore is the multi-writer backend. Each append is its own
// transaction, so concurrent API replicas cannot clobber each other.
type PostgresStore struct {
	db *storage.DB
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS request_logs (
	seq BIGSERIAL PRIMARY KEY,
	timestamp TEXT NOT NULL,
	pathway TEXT NOT NULL,
	latency_ms DOUBLE PRECISION NOT NULL,
	tokens_used INTEGER,
	input_length INTEGER NOT NULL,
	success BOOLEAN NOT NULL,
	error_message TEXT
);
CREATE TABLE IF NOT EXISTS summaries (
	seq BIGSERIAL PRIMARY KEY,
	id TEXT NOT NULL UNIQUE,
	timestamp TEXT NOT NULL,
	document_name TEXT NOT NULL,
	summary TEXT NOT NULL,
	terms_looked_up JSONB NOT NULL DEFAULT '[]'::jsonb,
	tokens_used INTEGER,
	input_length INTEGER NOT NULL
);`

func NewPostgresStore(ctx context.Context, db *storage.DB) (*PostgresStore, error) {
	if _, err := db.Pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("create postgres schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) RecordLog(ctx context.Context, rec models.LogRecord) error {
	_, err := s.db.Pool.Exec(ctx, `
INSERT INTO request_logs (timestamp, pathway, latency_ms, tokens_used, input_length, success, error_message)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.Timestamp, string(rec.Pathway), rec.LatencyMS, rec.TokensUsed, rec.InputLength, rec.Success, rec.ErrorMessage)
	if err != nil {
		return fmt.Errorf("insert request log: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecordSummary(ctx context.Context, rec models.SummaryRecord) error {
	_, err := s.db.Pool.Exec(ctx, `
INSERT INTO summaries (id, timestamp, document_name, summary, terms_looked_up, tokens_used, input_length)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.Timestamp, rec.DocumentName, rec.Summary, nonNil(rec.TermsLookedUp), rec.TokensUsed, rec.InputLength)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListSummaries(ctx context.Context) ([]models.SummaryRecord, error) {
	rows, err := s.db.Pool.Query(ctx, `SELECT `+summaryColumns+` FROM summaries ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()
	out := []models.SummaryRecord{}
	for rows.Next() {
		rec, err := scanPGSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetSummary(ctx context.Context, id string) (models.SummaryRecord, error) {
	rec, err := scanPGSummary(s.db.Pool.QueryRow(ctx, `SELECT `+summaryColumns+` FROM summaries WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.SummaryRecord{}, util.ErrSummaryNotFound
	}
	return rec, err
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

func scanPGSummary(r pgx.Row) (models.SummaryRecord, error) {
	var (
		rec    models.SummaryRecord
		tokens *int32
	)
	if err := r.Scan(&rec.ID, &rec.Timestamp, &rec.DocumentName, &rec.Summary, &rec.TermsLookedUp, &tokens, &rec.InputLength); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan summary: %w", err)
	}
	rec.TermsLookedUp = nonNil(rec.TermsLookedUp)
	if tokens != nil {
		rec.TokensUsed = models.IntPtr(int(*tokens))
	}
	return rec, nil
}
