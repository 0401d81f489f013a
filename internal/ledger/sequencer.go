package ledger

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"stakeLedger/internal/keys"
	"stakeLedger/internal/model"
)

// Counter returns the interaction counter of txHash, starting at 0.
func (s *Session) Counter(ctx context.Context, txHash common.Hash) (*model.InteractionCount, error) {
	id := keys.Transaction(txHash)
	c, ok, err := load[model.InteractionCount](ctx, s, KindInteractionCount, id)
	if err != nil {
		return nil, err
	}
	if ok {
		return c, nil
	}
	return &model.InteractionCount{ID: id}, nil
}

// Advance persists the counter incremented by one.
func (s *Session) Advance(c *model.InteractionCount) error {
	c.Count++
	return save(s, KindInteractionCount, c.ID, c)
}
