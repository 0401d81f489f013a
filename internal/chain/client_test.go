package chain

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/lru"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachedClient(size int) *Client {
	return &Client{
		timestamps: lru.NewCache[uint64, uint64](size),
		recipients: lru.NewCache[common.Hash, *common.Address](size),
	}
}

func TestCachedLookupsSkipRPC(t *testing.T) {
	c := newCachedClient(4)
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	tx := common.HexToHash("0x01")
	creation := common.HexToHash("0x02")
	c.timestamps.Add(100, 1_700_000_000)
	c.recipients.Add(tx, &to)
	c.recipients.Add(creation, nil)

	ts, err := c.BlockTimestamp(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_700_000_000), ts)

	got, err := c.TransactionRecipient(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, &to, got)

	got, err = c.TransactionRecipient(context.Background(), creation)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTimestampCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newCachedClient(2)
	c.timestamps.Add(1, 10)
	c.timestamps.Add(2, 20)
	_, _ = c.timestamps.Get(1)
	c.timestamps.Add(3, 30)

	assert.True(t, c.timestamps.Contains(1))
	assert.False(t, c.timestamps.Contains(2))
	assert.True(t, c.timestamps.Contains(3))
	assert.Equal(t, 2, c.timestamps.Len())
}
