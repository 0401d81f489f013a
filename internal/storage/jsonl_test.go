package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stakeLedger/internal/model"
)

func TestJsonlArchiveAppends(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "archive", "logs.jsonl")
	archive := NewJsonlArchive(path)

	require.NoError(t, archive.PutLogBatch(ctx, []model.LogRecord{{BlockNumber: 1}, {BlockNumber: 2}}))
	require.NoError(t, archive.PutLogBatch(ctx, nil))
	require.NoError(t, archive.PutLogBatch(ctx, []model.LogRecord{{BlockNumber: 3}}))

	var blocks []uint64
	require.NoError(t, ScanLines(path, func(line []byte) error {
		var rec model.LogRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return err
		}
		blocks = append(blocks, rec.BlockNumber)
		return nil
	}))
	assert.Equal(t, []uint64{1, 2, 3}, blocks)
}

func TestScanLinesMissingFile(t *testing.T) {
	err := ScanLines(filepath.Join(t.TempDir(), "missing.jsonl"), func([]byte) error { return nil })
	require.Error(t, err)
}
