package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"legaldoc/internal/models"
	"legaldoc/internal/util"
)

// SQLiteStore is an append-only alternative to JSONStore for single-node
// deployments that outgrow whole-file rewrites.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS request_logs (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	pathway TEXT NOT NULL,
	latency_ms REAL NOT NULL,
	tokens_used INTEGER,
	input_length INTEGER NOT NULL,
	success INTEGER NOT NULL,
	error_message TEXT
);
CREATE TABLE IF NOT EXISTS summaries (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	timestamp TEXT NOT NULL,
	document_name TEXT NOT NULL,
	summary TEXT NOT NULL,
	terms_looked_up TEXT NOT NULL DEFAULT '[]',
	tokens_used INTEGER,
	input_length INTEGER NOT NULL
);`

func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	// one writer at a time; busy_timeout is per connection
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) RecordLog(ctx context.Context, rec models.LogRecord) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO request_logs (timestamp, pathway, latency_ms, tokens_used, input_length, success, error_message)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp, string(rec.Pathway), rec.LatencyMS, nullInt(rec.TokensUsed), rec.InputLength, rec.Success, nullString(rec.ErrorMessage))
	if err != nil {
		return fmt.Errorf("insert request log: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecordSummary(ctx context.Context, rec models.SummaryRecord) error {
	terms, err := json.Marshal(nonNil(rec.TermsLookedUp))
	if err != nil {
		return fmt.Errorf("marshal terms: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO summaries (id, timestamp, document_name, summary, terms_looked_up, tokens_used, input_length)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Timestamp, rec.DocumentName, rec.Summary, string(terms), nullInt(rec.TokensUsed), rec.InputLength)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

const summaryColumns = `id, timestamp, document_name, summary, terms_looked_up, tokens_used, input_length`

func (s *SQLiteStore) ListSummaries(ctx context.Context) ([]models.SummaryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+summaryColumns+` FROM summaries ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()
	out := []models.SummaryRecord{}
	for rows.Next() {
		rec, err := scanSummary(rows)
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

func (s *SQLiteStore) GetSummary(ctx context.Context, id string) (models.SummaryRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+summaryColumns+` FROM summaries WHERE id = ?`, id)
	rec, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SummaryRecord{}, util.ErrSummaryNotFound
	}
	return rec, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(r scanner) (models.SummaryRecord, error) {
	var (
		rec    models.SummaryRecord
		terms  string
		tokens sql.NullInt64
	)
	if err := r.Scan(&rec.ID, &rec.Timestamp, &rec.DocumentName, &rec.Summary, &terms, &tokens, &rec.InputLength); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan summary: %w", err)
	}
	if err := json.Unmarshal([]byte(terms), &rec.TermsLookedUp); err != nil {
		return rec, fmt.Errorf("decode terms for %s: %w", rec.ID, err)
	}
	rec.TermsLookedUp = nonNil(rec.TermsLookedUp)
	if tokens.Valid {
		rec.TokensUsed = models.IntPtr(int(tokens.Int64))
	}
	return rec, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nonNil(terms []string) []string {
	if terms == nil {
		return []string{}
	}
	return terms
}
