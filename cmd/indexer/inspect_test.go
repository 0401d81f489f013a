package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stakeLedger/internal/config"
)

func TestParsePoolID(t *testing.T) {
	id, err := parsePoolID("0")
	require.NoError(t, err)
	assert.Equal(t, int64(0), id.Int64())

	id, err = parsePoolID("0x10")
	require.NoError(t, err)
	assert.Equal(t, int64(16), id.Int64())

	_, err = parsePoolID("-1")
	require.Error(t, err)
	_, err = parsePoolID("pool")
	require.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	st, err := openStore(ctx, config.StoreConfig{Store: "leveldb", DBPath: filepath.Join(t.TempDir(), "ledger")})
	require.NoError(t, err)
	assert.NotNil(t, st.checkpointer("distribution", filepath.Join(t.TempDir(), "cp.json"), true))
	assert.Nil(t, st.checkpointer("distribution", "", false))
	require.NoError(t, st.Close())

	_, err = openStore(ctx, config.StoreConfig{Store: "postgres"})
	require.Error(t, err)
	_, err = openStore(ctx, config.StoreConfig{Store: "redis"})
	require.Error(t, err)
}
