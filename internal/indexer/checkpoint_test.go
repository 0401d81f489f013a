package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCheckpointRoundTrip(t *testing.T) {
	ctx := context.Background()
	cp := NewFileCheckpoint(filepath.Join(t.TempDir(), "state", "checkpoint.json"), true)

	_, ok, err := cp.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cp.Save(ctx, 19000123))
	block, ok, err := cp.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(19000123), block)
}

func TestFileCheckpointDisabled(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	cp := NewFileCheckpoint(path, false)

	require.NoError(t, cp.Save(ctx, 5))
	_, ok, err := NewFileCheckpoint(path, true).Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileCheckpointSaveLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cp := NewFileCheckpoint(filepath.Join(dir, "checkpoint.json"), true)

	require.NoError(t, cp.Save(ctx, 1))
	require.NoError(t, cp.Save(ctx, 2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "checkpoint.json", entries[0].Name())
}

func TestFileCheckpointRejectsDirectory(t *testing.T) {
	_, _, err := NewFileCheckpoint(t.TempDir(), true).Load(context.Background())
	assert.Error(t, err)
}
