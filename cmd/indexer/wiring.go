package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"stakeLedger/internal/config"
	"stakeLedger/internal/handler"
	"stakeLedger/internal/indexer"
	"stakeLedger/internal/logger"
	"stakeLedger/internal/metrics"
	"stakeLedger/internal/resolver"
	"stakeLedger/internal/storage"
	"stakeLedger/internal/storage/postgres"
)

type ledgerStore struct {
	kv storage.KV
	pg *postgres.Store
}

func openStore(ctx context.Context, cfg config.StoreConfig) (*ledgerStore, error) {
	switch cfg.Store {
	case "", "leveldb":
		if cfg.DBPath == "" {
			return nil, fmt.Errorf("db path is required")
		}
		db, err := storage.OpenLevelDB(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open leveldb: %w", err)
		}
		return &ledgerStore{kv: db}, nil
	case "postgres":
		if cfg.PGDSN == "" {
			return nil, fmt.Errorf("pg dsn is required")
		}
		pg, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return &ledgerStore{kv: pg, pg: pg}, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func (s *ledgerStore) Close() error {
	return s.kv.Close()
}

// checkpointer keeps progress next to the ledger: a state row in Postgres,
// a file otherwise.
func (s *ledgerStore) checkpointer(family, path string, enabled bool) indexer.Checkpointer {
	if !enabled {
		return nil
	}
	if s.pg != nil {
		return indexer.NewStateCheckpoint(s.pg, "ledger:"+family)
	}
	return indexer.NewFileCheckpoint(path, true)
}

func newProcessor(kv storage.KV, family string, caller resolver.Caller, log *zap.Logger, m *metrics.LedgerMetrics) (*handler.Processor, error) {
	fam, err := resolver.FamilyByName(family)
	if err != nil {
		return nil, err
	}
	res := resolver.New(caller, fam, log, m)
	return handler.NewProcessor(kv, fam.Name, res, log, m)
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
		MaxFileSize: cfg.LogMaxSizeMB,
	})
}
