package report

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stakeLedger/internal/handler"
	"stakeLedger/internal/model"
	"stakeLedger/internal/resolver"
	"stakeLedger/internal/storage"
)

var (
	contract    = common.HexToAddress("0x47176B2Af9885dC6C4575d4eFd63895f7Aaa4790")
	depositPool = common.HexToAddress("0x0000000000000000000000000000000000000d01")
	alice       = common.HexToAddress("0x00000000000000000000000000000000000000a1")
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func TestTokenAmount(t *testing.T) {
	assert.Equal(t, "0", TokenAmount(nil))
	assert.Equal(t, "120", TokenAmount(ether(120)))
	assert.Equal(t, "0.5", TokenAmount(big.NewInt(500000000000000000)))
	assert.Equal(t, "0.000000000000000001", TokenAmount(big.NewInt(1)))
	assert.Equal(t, "-30", TokenAmount(new(big.Int).Neg(ether(30))))
}

func seed(t *testing.T, family string) storage.KV {
	t.Helper()
	kv, err := storage.NewMemLevelDB()
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	p, err := handler.NewProcessor(kv, family, nil, nil, nil)
	require.NoError(t, err)

	to := depositPool
	meta := func(tx byte) model.EventMeta {
		return model.EventMeta{Contract: contract, TxHash: common.BytesToHash([]byte{tx}), TxTo: &to, BlockNumber: uint64(tx), Timestamp: 1700000000}
	}
	events := []model.Event{
		model.PoolCreated{EventMeta: meta(1), PoolID: big.NewInt(0), Pool: model.PoolParams{
			PayoutStart:   big.NewInt(1707393600),
			InitialReward: ether(3456),
			MinimalStake:  big.NewInt(10000000000000000),
			IsPublic:      true,
		}},
		model.UserStaked{EventMeta: meta(2), PoolID: big.NewInt(0), User: alice, Amount: ether(100)},
		model.UserClaimed{EventMeta: meta(3), PoolID: big.NewInt(0), User: alice, Receiver: alice, Amount: big.NewInt(250000000000000000)},
	}
	for _, ev := range events {
		_, err := p.Apply(context.Background(), ev)
		require.NoError(t, err)
	}
	return kv
}

func TestPoolReport(t *testing.T) {
	kv := seed(t, resolver.FamilyDistribution)

	got, err := Pool(context.Background(), kv, big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, "0", got.PoolID)
	assert.True(t, got.IsPublic)
	assert.Equal(t, "1707393600", got.PayoutStart)
	assert.Equal(t, "3456", got.InitialReward)
	assert.Equal(t, "0.01", got.MinimalStake)
	assert.Equal(t, uint64(1), got.TotalUsers)
	assert.Equal(t, "100", got.TotalStaked)

	_, err = Pool(context.Background(), kv, big.NewInt(7))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPositionReport(t *testing.T) {
	kv := seed(t, resolver.FamilyDistribution)

	got, err := Position(context.Background(), kv, resolver.FamilyDistribution, alice, big.NewInt(0), common.Address{})
	require.NoError(t, err)
	assert.Equal(t, "100", got.Staked)
	assert.Equal(t, "0.25", got.Claimed)
	assert.Equal(t, "0.25", got.TotalClaimed)
	assert.Empty(t, got.DepositPool)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, got))
	assert.True(t, strings.Contains(buf.String(), `"staked": "100"`), buf.String())
}

func TestPositionReportScopedUser(t *testing.T) {
	kv := seed(t, resolver.FamilyDepositPool)

	got, err := Position(context.Background(), kv, resolver.FamilyDepositPool, alice, big.NewInt(0), depositPool)
	require.NoError(t, err)
	assert.Equal(t, "100", got.Staked)
	assert.Equal(t, "100", got.TotalStaked)
	assert.Equal(t, depositPool.Hex(), got.DepositPool)

	_, err = Position(context.Background(), kv, resolver.FamilyDistribution, alice, big.NewInt(0), common.Address{})
	assert.True(t, errors.Is(err, ErrNotFound))
}
