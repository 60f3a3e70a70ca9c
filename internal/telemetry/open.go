package telemetry

import (
	"context"
	"fmt"

	"legaldoc/internal/config"
	"legaldoc/internal/storage"
)

// Open returns the recorder selected by cfg.Store.
func Open(ctx context.Context, cfg config.Config) (Recorder, error) {
	switch cfg.Store {
	case "", "json":
		return NewJSONStore(cfg.LogFile, cfg.SummariesFile)
	case "sqlite":
		db, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		s, err := NewSQLiteStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return s, nil
	case "postgres":
		db, err := storage.NewDB(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		s, err := NewPostgresStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store: %s", cfg.Store)
	}
}
