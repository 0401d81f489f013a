package handler

import (
	"context"

	"stakeLedger/internal/ledger"
	"stakeLedger/internal/model"
)

// onPoolCreated sets the pool parameters only when the pool is new. A pool
// that already exists keeps its attributes; PoolEdited is the only way to
// change them.
func (p *Processor) onPoolCreated(ctx context.Context, s *ledger.Session, e model.PoolCreated) error {
	res, err := s.Pool(ctx, e.PoolID)
	if err != nil {
		return err
	}
	if !res.Created {
		return nil
	}
	res.Entity.SetParams(e.Pool)
	return s.SavePool(res.Entity)
}

// onPoolEdited overwrites every editable attribute, creating the pool with
// zero totals if it was never seen.
func (p *Processor) onPoolEdited(ctx context.Context, s *ledger.Session, e model.PoolEdited) error {
	res, err := s.Pool(ctx, e.PoolID)
	if err != nil {
		return err
	}
	res.Entity.SetParams(e.Pool)
	return s.SavePool(res.Entity)
}
