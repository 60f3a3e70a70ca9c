package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"legaldoc/internal/models"
	"legaldoc/internal/util"
)

// JSONStore keeps each record kind in a pretty-printed JSON array file. Every
// append rewrites the whole array, so appends to one file are serialized by
// that file's mutex and the rewrite goes through a temp file and rename.
type JSONStore struct {
	logPath       string
	summariesPath string

	logMu     sync.Mutex
	summaryMu sync.Mutex
}

func NewJSONStore(logPath, summariesPath string) (*JSONStore, error) {
	s := &JSONStore{logPath: logPath, summariesPath: summariesPath}
	for _, p := range []string{logPath, summariesPath} {
		if err := ensureArrayFile(p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func ensureArrayFile(path string) error {
	if util.FileExists(path) {
		return nil
	}
	if err := util.WriteJSONAtomic(path, []any{}); err != nil {
		return fmt.Errorf("init %s: %w", path, err)
	}
	return nil
}

func (s *JSONStore) RecordLog(_ context.Context, rec models.LogRecord) error {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	return appendJSON(s.logPath, rec)
}

func (s *JSONStore) RecordSummary(_ context.Context, rec models.SummaryRecord) error {
	s.summaryMu.Lock()
	defer s.summaryMu.Unlock()
	return appendJSON(s.summariesPath, rec)
}

func (s *JSONStore) ListSummaries(_ context.Context) ([]models.SummaryRecord, error) {
	s.summaryMu.Lock()
	defer s.summaryMu.Unlock()
	out := []models.SummaryRecord{}
	if err := util.ReadJSON(s.summariesPath, &out); err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	if out == nil {
		out = []models.SummaryRecord{}
	}
	return out, nil
}

func (s *JSONStore) GetSummary(ctx context.Context, id string) (models.SummaryRecord, error) {
	all, err := s.ListSummaries(ctx)
	if err != nil {
		return models.SummaryRecord{}, err
	}
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].ID == id {
			return all[i], nil
		}
	}
	return models.SummaryRecord{}, util.ErrSummaryNotFound
}

func (s *JSONStore) Close() error { return nil }

// appendJSON keeps existing entries as raw JSON so fields this version does not
// know about survive the rewrite.
func appendJSON(path string, rec any) error {
	entries := []json.RawMessage{}
	if util.FileExists(path) {
		if err := util.ReadJSON(path, &entries); err != nil {
			return fmt.Errorf("append %s: %w", path, err)
		}
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	entries = append(entries, b)
	return util.WriteJSONAtomic(path, entries)
}
