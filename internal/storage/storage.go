package storage

import (
	"context"

	"stakeLedger/internal/model"
)

// Entry is a single staged write. Kind partitions the keyspace by entity type.
type Entry struct {
	Kind  string
	Key   []byte
	Value []byte
}

// KV is the persistence boundary of the ledger. Write applies all entries
// atomically or none of them.
type KV interface {
	Get(ctx context.Context, kind string, key []byte) ([]byte, bool, error)
	Write(ctx context.Context, entries []Entry) error
	Close() error
}

// LogSink receives raw log batches, e.g. a JSONL archive.
type LogSink interface {
	PutLogBatch(ctx context.Context, logs []model.LogRecord) error
}
