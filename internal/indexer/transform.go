package indexer

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"stakeLedger/internal/model"
)

// batchContext is what the runner looked up for one batch of logs besides
// the logs themselves.
type batchContext struct {
	chainID    uint64
	ingestedAt string
	timestamps map[uint64]uint64
	recipients map[common.Hash]*common.Address
}

func newBatchContext(chainID uint64) *batchContext {
	return &batchContext{
		chainID:    chainID,
		ingestedAt: time.Now().UTC().Format(time.RFC3339Nano),
		timestamps: make(map[uint64]uint64),
		recipients: make(map[common.Hash]*common.Address),
	}
}

// records converts logs in order. A missing recipient leaves TxTo empty.
func (b *batchContext) records(logs []types.Log) []model.LogRecord {
	out := make([]model.LogRecord, len(logs))
	for i, l := range logs {
		rec := model.LogRecord{
			ChainID:     b.chainID,
			BlockNumber: l.BlockNumber,
			BlockHash:   l.BlockHash.Hex(),
			TxHash:      l.TxHash.Hex(),
			TxIndex:     uint64(l.TxIndex),
			LogIndex:    uint64(l.Index),
			Address:     l.Address.Hex(),
			Topics:      make([]string, len(l.Topics)),
			Data:        hexutil.Encode(l.Data),
			Removed:     l.Removed,
			Timestamp:   b.timestamps[l.BlockNumber],
			IngestedAt:  b.ingestedAt,
		}
		for j, topic := range l.Topics {
			rec.Topics[j] = topic.Hex()
		}
		if to := b.recipients[l.TxHash]; to != nil {
			rec.TxTo = to.Hex()
		}
		out[i] = rec
	}
	return out
}
