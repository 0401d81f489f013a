package indexer

import (
	"context"
	"encoding/json"

	"stakeLedger/internal/model"
	"stakeLedger/internal/storage"
)

// Replay feeds a JSONL log archive through the sink in batches of batchSize
// records. Lines that are not valid records are rejected and do not stop the
// replay.
func Replay(ctx context.Context, path string, sink *LedgerSink, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 1000
	}
	batch := make([]model.LogRecord, 0, batchSize)
	err := storage.ScanLines(path, func(line []byte) error {
		var record model.LogRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return sink.Reject(model.DecodeError{Error: err.Error()})
		}
		batch = append(batch, record)
		if len(batch) < batchSize {
			return nil
		}
		if err := sink.PutLogBatch(ctx, batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	})
	if err != nil {
		return err
	}
	return sink.PutLogBatch(ctx, batch)
}
