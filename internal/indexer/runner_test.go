package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stakeLedger/internal/distribution"
	"stakeLedger/internal/handler"
	"stakeLedger/internal/keys"
	"stakeLedger/internal/ledger"
	"stakeLedger/internal/model"
	"stakeLedger/internal/resolver"
	"stakeLedger/internal/storage"
)

var (
	stakingContract = common.HexToAddress("0x47176B2Af9885dC6C4575d4eFd63895f7Aaa4790")
	staker          = common.HexToAddress("0x00000000000000000000000000000000000000a1")
)

type fakeChain struct {
	mu          sync.Mutex
	latest      uint64
	logs        []types.Log
	filterCalls int
	failFilter  int
	recipients  map[common.Hash]common.Address
}

func (f *fakeChain) GetChainID(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (f *fakeChain) LatestBlockNumber(context.Context) (uint64, error) {
	return f.latest, nil
}

func (f *fakeChain) BlockTimestamp(_ context.Context, number uint64) (uint64, error) {
	return 1700000000 + number, nil
}

func (f *fakeChain) TransactionRecipient(_ context.Context, txHash common.Hash) (*common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	to, ok := f.recipients[txHash]
	if !ok {
		return nil, nil
	}
	return &to, nil
}

func (f *fakeChain) FilterLogs(_ context.Context, fromBlock, toBlock uint64, _ []common.Address, _ []common.Hash) ([]types.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filterCalls++
	if f.failFilter > 0 {
		f.failFilter--
		return nil, errors.New("rpc timeout")
	}
	var out []types.Log
	for _, log := range f.logs {
		if log.BlockNumber >= fromBlock && log.BlockNumber <= toBlock {
			out = append(out, log)
		}
	}
	return out, nil
}

type recordingSink struct {
	batches [][]model.LogRecord
}

func (s *recordingSink) PutLogBatch(_ context.Context, logs []model.LogRecord) error {
	s.batches = append(s.batches, logs)
	return nil
}

type memCheckpoint struct {
	last  uint64
	ok    bool
	saves []uint64
}

func (c *memCheckpoint) Load(context.Context) (uint64, bool, error) {
	return c.last, c.ok, nil
}

func (c *memCheckpoint) Save(_ context.Context, block uint64) error {
	c.last, c.ok = block, true
	c.saves = append(c.saves, block)
	return nil
}

func stakeLog(t *testing.T, name string, block uint64, tx byte, index uint, amount int64) types.Log {
	t.Helper()
	parsed, err := distribution.StakingABI()
	require.NoError(t, err)
	event := parsed.Events[name]
	data, err := event.Inputs.NonIndexed().Pack(big.NewInt(amount))
	require.NoError(t, err)
	return types.Log{
		Address: stakingContract,
		Topics: []common.Hash{
			event.ID,
			common.BigToHash(big.NewInt(0)),
			common.BytesToHash(staker.Bytes()),
		},
		Data:        data,
		BlockNumber: block,
		TxHash:      common.BytesToHash([]byte{tx}),
		Index:       index,
	}
}

func TestRunnerBatchesAndCheckpoints(t *testing.T) {
	chain := &fakeChain{
		latest: 25,
		logs: []types.Log{
			stakeLog(t, model.EventUserStaked, 3, 1, 0, 100),
			stakeLog(t, model.EventUserStaked, 15, 2, 0, 50),
		},
	}
	sink := &recordingSink{}
	cp := &memCheckpoint{}

	runner := NewRunner(RunConfig{
		FromBlock:        1,
		Addresses:        []common.Address{stakingContract},
		BatchSize:        10,
		MaxRetries:       1,
		RetryBackoff:     time.Millisecond,
		FetchConcurrency: 2,
	}, chain, []storage.LogSink{sink}, cp, nil, nil)
	require.NoError(t, runner.Run(context.Background()))

	require.Len(t, sink.batches, 3)
	assert.Len(t, sink.batches[0], 1)
	assert.Len(t, sink.batches[1], 1)
	assert.Empty(t, sink.batches[2])
	assert.Equal(t, []uint64{10, 20, 25}, cp.saves)
	assert.Equal(t, uint64(1700000003), sink.batches[0][0].Timestamp)
	assert.Equal(t, uint64(1), sink.batches[0][0].ChainID)
}

func TestRunnerResumesFromCheckpoint(t *testing.T) {
	chain := &fakeChain{
		latest: 20,
		logs: []types.Log{
			stakeLog(t, model.EventUserStaked, 3, 1, 0, 100),
			stakeLog(t, model.EventUserStaked, 15, 2, 0, 50),
		},
	}
	sink := &recordingSink{}
	cp := &memCheckpoint{last: 10, ok: true}

	runner := NewRunner(RunConfig{
		FromBlock:  1,
		Addresses:  []common.Address{stakingContract},
		BatchSize:  100,
		MaxRetries: 1,
	}, chain, []storage.LogSink{sink}, cp, nil, nil)
	require.NoError(t, runner.Run(context.Background()))

	require.Len(t, sink.batches, 1)
	require.Len(t, sink.batches[0], 1)
	assert.Equal(t, uint64(15), sink.batches[0][0].BlockNumber)
}

func TestRunnerNothingToSync(t *testing.T) {
	chain := &fakeChain{latest: 10}
	sink := &recordingSink{}
	cp := &memCheckpoint{last: 10, ok: true}

	runner := NewRunner(RunConfig{
		FromBlock: 1,
		Addresses: []common.Address{stakingContract},
		BatchSize: 5,
	}, chain, []storage.LogSink{sink}, cp, nil, nil)
	require.NoError(t, runner.Run(context.Background()))
	assert.Empty(t, sink.batches)
	assert.Zero(t, chain.filterCalls)
}

func TestRunnerRetriesFilterLogs(t *testing.T) {
	chain := &fakeChain{latest: 5, failFilter: 2}
	sink := &recordingSink{}

	runner := NewRunner(RunConfig{
		FromBlock:    1,
		Addresses:    []common.Address{stakingContract},
		BatchSize:    10,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	}, chain, []storage.LogSink{sink}, nil, nil, nil)
	require.NoError(t, runner.Run(context.Background()))
	assert.Equal(t, 3, chain.filterCalls)
	assert.Len(t, sink.batches, 1)
}

func TestRunnerDropsDuplicateAndRemovedLogs(t *testing.T) {
	dup := stakeLog(t, model.EventUserStaked, 3, 1, 0, 100)
	removed := stakeLog(t, model.EventUserStaked, 4, 2, 0, 100)
	removed.Removed = true
	chain := &fakeChain{latest: 5, logs: []types.Log{dup, dup, removed}}
	sink := &recordingSink{}

	runner := NewRunner(RunConfig{
		FromBlock: 1,
		Addresses: []common.Address{stakingContract},
		BatchSize: 10,
	}, chain, []storage.LogSink{sink}, nil, nil, nil)
	require.NoError(t, runner.Run(context.Background()))
	require.Len(t, sink.batches, 1)
	assert.Len(t, sink.batches[0], 1)
}

func TestRunnerRequiresAddresses(t *testing.T) {
	runner := NewRunner(RunConfig{BatchSize: 10}, &fakeChain{}, []storage.LogSink{&recordingSink{}}, nil, nil, nil)
	require.Error(t, runner.Run(context.Background()))
}

func TestRunnerAppliesLedgerAndArchives(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	recipient := common.HexToAddress("0x0000000000000000000000000000000000000d01")
	chain := &fakeChain{
		latest: 10,
		logs: []types.Log{
			stakeLog(t, model.EventUserStaked, 3, 1, 0, 100),
			stakeLog(t, model.EventUserStaked, 4, 2, 0, 50),
			stakeLog(t, model.EventUserWithdrawn, 5, 3, 0, 30),
		},
		recipients: map[common.Hash]common.Address{common.BytesToHash([]byte{1}): recipient},
	}

	kv, err := storage.NewMemLevelDB()
	require.NoError(t, err)
	defer kv.Close()
	decoder, err := distribution.NewDecoder()
	require.NoError(t, err)
	processor, err := handler.NewProcessor(kv, resolver.FamilyDistribution, nil, nil, nil)
	require.NoError(t, err)

	ledgerSink := NewLedgerSink(decoder, processor, filepath.Join(dir, "errors.jsonl"), nil, nil)
	archive := storage.NewJsonlArchive(filepath.Join(dir, "logs.jsonl"))

	runner := NewRunner(RunConfig{
		FromBlock:         1,
		Addresses:         []common.Address{stakingContract},
		BatchSize:         10,
		FetchConcurrency:  4,
		ResolveRecipients: true,
	}, chain, []storage.LogSink{ledgerSink, archive}, nil, nil, nil)
	require.NoError(t, runner.Run(ctx))

	stats := ledgerSink.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.Applied)

	s := ledger.NewSession(kv)
	pool, ok, err := s.FindPool(ctx, big.NewInt(0))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(120), pool.TotalStaked)

	pos, ok, err := s.FindUserInPool(ctx, keys.UserInPool(keys.User(staker), keys.Pool(big.NewInt(0))))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(120), pos.Staked)

	recs := readJSONL[model.LogRecord](t, filepath.Join(dir, "logs.jsonl"))
	require.Len(t, recs, 3)
	assert.Equal(t, recipient.Hex(), recs[0].TxTo)

	// Replaying the archive changes nothing.
	replay := NewLedgerSink(decoder, processor, "", nil, nil)
	require.NoError(t, Replay(ctx, filepath.Join(dir, "logs.jsonl"), replay, 2))
	assert.Equal(t, 3, replay.Stats().Skipped)

	pool, _, err = ledger.NewSession(kv).FindPool(ctx, big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(120), pool.TotalStaked)
}

func TestLedgerSinkRecordsDecodeErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	decoder, err := distribution.NewDecoder()
	require.NoError(t, err)
	kv, err := storage.NewMemLevelDB()
	require.NoError(t, err)
	defer kv.Close()
	processor, err := handler.NewProcessor(kv, resolver.FamilyDistribution, nil, nil, nil)
	require.NoError(t, err)

	parsed, err := distribution.StakingABI()
	require.NoError(t, err)
	errorsPath := filepath.Join(dir, "errors.jsonl")
	sink := NewLedgerSink(decoder, processor, errorsPath, nil, nil)

	records := []model.LogRecord{
		{TxHash: common.BytesToHash([]byte{1}).Hex(), Address: stakingContract.Hex()},
		{TxHash: common.BytesToHash([]byte{2}).Hex(), Address: stakingContract.Hex(), Topics: []string{common.HexToHash("0x1234").Hex()}},
		{
			TxHash:  common.BytesToHash([]byte{3}).Hex(),
			Address: stakingContract.Hex(),
			Topics:  []string{parsed.Events[model.EventUserStaked].ID.Hex()},
			Data:    "0x",
		},
	}
	require.NoError(t, sink.PutLogBatch(ctx, records))

	stats := sink.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Zero(t, stats.Applied)

	lines := readJSONL[model.DecodeError](t, errorsPath)
	require.Len(t, lines, 2)
	assert.Equal(t, "missing topic0", lines[0].Error)
}

func TestReplayRejectsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{not json}\n\n"), 0o644))

	decoder, err := distribution.NewDecoder()
	require.NoError(t, err)
	kv, err := storage.NewMemLevelDB()
	require.NoError(t, err)
	defer kv.Close()
	processor, err := handler.NewProcessor(kv, resolver.FamilyDistribution, nil, nil, nil)
	require.NoError(t, err)

	sink := NewLedgerSink(decoder, processor, filepath.Join(dir, "errors.jsonl"), nil, nil)
	require.NoError(t, Replay(context.Background(), path, sink, 10))
	assert.Equal(t, SinkStats{Total: 1, Failed: 1}, sink.Stats())
	assert.Len(t, readJSONL[model.DecodeError](t, filepath.Join(dir, "errors.jsonl")), 1)
}

func readJSONL[T any](t *testing.T, path string) []T {
	t.Helper()
	var out []T
	require.NoError(t, storage.ScanLines(path, func(line []byte) error {
		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			return err
		}
		out = append(out, v)
		return nil
	}))
	return out
}
