package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stakeLedger/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("INDEXER_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("INDEXER_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.EnsureSchema(ctx))
	_, err = store.pool.Exec(ctx, `DELETE FROM ledger_entities WHERE kind LIKE 'test_%'`)
	require.NoError(t, err)
	return store
}

func TestStoreWriteAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, []storage.Entry{
		{Kind: "test_pool", Key: []byte{0x00}, Value: []byte(`{"total_staked":120}`)},
		{Kind: "test_user", Key: []byte{0x00}, Value: []byte(`{"total_claimed":30}`)},
	}))

	got, ok, err := store.Get(ctx, "test_pool", []byte{0x00})
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"total_staked":120}`, string(got))

	require.NoError(t, store.Write(ctx, []storage.Entry{
		{Kind: "test_pool", Key: []byte{0x00}, Value: []byte(`{"total_staked":150}`)},
	}))
	got, _, err = store.Get(ctx, "test_pool", []byte{0x00})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_staked":150}`, string(got))

	_, ok, err = store.Get(ctx, "test_pool", []byte{0x01})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	name := "test:ledger"

	_, err := store.pool.Exec(ctx, `DELETE FROM indexer_state WHERE name=$1`, name)
	require.NoError(t, err)

	_, ok, err := store.LoadState(ctx, name)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveState(ctx, name, 19000000))
	block, ok, err := store.LoadState(ctx, name)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(19000000), block)
}
