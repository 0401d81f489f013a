package indexer

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stakeLedger/internal/metrics"
	"stakeLedger/internal/storage"
)

// ChainSource is the part of the chain client the runner reads from.
type ChainSource interface {
	GetChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	TransactionRecipient(ctx context.Context, txHash common.Hash) (*common.Address, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// RunConfig holds runtime settings for the indexer.
type RunConfig struct {
	FromBlock         uint64
	ToBlock           uint64
	Addresses         []common.Address
	Topic0            []common.Hash
	BatchSize         uint64
	MaxRetries        int
	RetryBackoff      time.Duration
	FetchConcurrency  int
	ResolveRecipients bool
}

// Runner streams logs from the chain and hands each batch to its sinks in
// order.
type Runner struct {
	cfg        RunConfig
	chain      ChainSource
	sinks      []storage.LogSink
	checkpoint Checkpointer
	logger     *zap.Logger
	metrics    *metrics.LedgerMetrics
	seen       map[string]struct{}
}

// NewRunner builds a Runner with its dependencies. A nil checkpointer
// disables resuming.
func NewRunner(cfg RunConfig, chainSource ChainSource, sinks []storage.LogSink, checkpoint Checkpointer, logger *zap.Logger, m *metrics.LedgerMetrics) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		chain:      chainSource,
		sinks:      sinks,
		checkpoint: checkpoint,
		logger:     logger,
		metrics:    m,
		seen:       make(map[string]struct{}),
	}
}

// Run executes the indexing loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if len(r.sinks) == 0 {
		return fmt.Errorf("no sinks configured")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	if len(r.cfg.Addresses) == 0 {
		return fmt.Errorf("at least one address is required")
	}

	chainID, err := r.chain.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}
	chainIDValue := chainID.Uint64()

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if r.checkpoint != nil {
		last, ok, err := r.checkpoint.Load(ctx)
		if err != nil {
			return err
		}
		if ok && last >= from {
			from = last + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", last), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r.logger.Info("fetch logs", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))

		logs, err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, r.logger, "filter logs", func() ([]types.Log, error) {
			return r.chain.FilterLogs(ctx, blockRange.From, blockRange.To, r.cfg.Addresses, r.cfg.Topic0)
		})
		if err != nil {
			return fmt.Errorf("filter logs: %w", err)
		}

		fresh := make([]types.Log, 0, len(logs))
		for _, log := range logs {
			if log.Removed || r.isDuplicate(log) {
				continue
			}
			fresh = append(fresh, log)
		}

		batch := newBatchContext(chainIDValue)
		if err := r.prefetch(ctx, batch, fresh); err != nil {
			return err
		}
		records := batch.records(fresh)

		for _, sink := range r.sinks {
			if err := sink.PutLogBatch(ctx, records); err != nil {
				return fmt.Errorf("sink batch %d-%d: %w", blockRange.From, blockRange.To, err)
			}
		}

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(ctx, blockRange.To); err != nil {
				return err
			}
		}
		r.metrics.SetLastBlock(blockRange.To)

		r.logger.Info("batch complete", zap.Int("logs", len(records)), zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
	}

	return nil
}

// prefetch fills batch with block timestamps and, when enabled, transaction
// recipients for logs with a bounded number of concurrent requests.
func (r *Runner) prefetch(ctx context.Context, batch *batchContext, logs []types.Log) error {
	if len(logs) == 0 {
		return nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	limit := r.cfg.FetchConcurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	blocks := make(map[uint64]struct{})
	txs := make(map[common.Hash]struct{})
	for _, log := range logs {
		blocks[log.BlockNumber] = struct{}{}
		if r.cfg.ResolveRecipients {
			txs[log.TxHash] = struct{}{}
		}
	}

	for number := range blocks {
		g.Go(func() error {
			ts, err := withRetry(gctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, r.logger, "block timestamp", func() (uint64, error) {
				return r.chain.BlockTimestamp(gctx, number)
			})
			if err != nil {
				return fmt.Errorf("block timestamp %d: %w", number, err)
			}
			mu.Lock()
			batch.timestamps[number] = ts
			mu.Unlock()
			return nil
		})
	}
	for txHash := range txs {
		g.Go(func() error {
			to, err := withRetry(gctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, r.logger, "transaction recipient", func() (*common.Address, error) {
				return r.chain.TransactionRecipient(gctx, txHash)
			})
			if err != nil {
				return fmt.Errorf("transaction recipient %s: %w", txHash.Hex(), err)
			}
			mu.Lock()
			batch.recipients[txHash] = to
			mu.Unlock()
			return nil
		})
	}

	return g.Wait()
}

func (r *Runner) isDuplicate(log types.Log) bool {
	id := fmt.Sprintf("%d:%s:%d", log.BlockNumber, log.TxHash.Hex(), log.Index)
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}
