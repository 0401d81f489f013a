package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelDBKindsDoNotCollide(t *testing.T) {
	ctx := context.Background()
	db, err := NewMemLevelDB()
	require.NoError(t, err)
	defer db.Close()

	key := []byte{0, 0, 0, 1}
	require.NoError(t, db.Write(ctx, []Entry{
		{Kind: "pool", Key: key, Value: []byte(`{"a":1}`)},
		{Kind: "user", Key: key, Value: []byte(`{"b":2}`)},
	}))

	v, ok, err := db.Get(ctx, "pool", key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(v))

	v, ok, err = db.Get(ctx, "user", key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"b":2}`, string(v))

	_, ok, err = db.Get(ctx, "referrer", key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLevelDBPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger")

	db, err := OpenLevelDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Write(ctx, []Entry{{Kind: "count", Key: []byte("tx"), Value: []byte("1")}}))
	require.NoError(t, db.Close())

	db, err = OpenLevelDB(path)
	require.NoError(t, err)
	defer db.Close()
	v, ok, err := db.Get(ctx, "count", []byte("tx"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", string(v))
}
