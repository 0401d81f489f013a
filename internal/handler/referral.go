package handler

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"stakeLedger/internal/keys"
	"stakeLedger/internal/ledger"
	"stakeLedger/internal/model"
)

// referrerSeed keys a referrer by its scoped user key, or by address and
// pool when users are not scoped.
func (p *Processor) referrerSeed(addr common.Address, poolID *big.Int, referrerUser *model.User) model.Referrer {
	id := keys.PoolReferrer(addr, poolID)
	if p.policy.scopedUsers {
		id = referrerUser.ID
	}
	return model.Referrer{ID: id, Address: addr, PoolID: poolID}
}

// onReferred links e.User (the referred user) to e.Referrer. The referral
// amount is overwritten with the latest value.
func (p *Processor) onReferred(ctx context.Context, s *ledger.Session, e model.UserReferred) error {
	if err := p.touchDepositPool(ctx, s, e.EventMeta, e.PoolID); err != nil {
		return err
	}

	referred, err := s.User(ctx, p.userSeed(e.User, e.PoolID, e.EventMeta))
	if err != nil {
		return err
	}
	referrerUser, err := s.User(ctx, p.userSeed(e.Referrer, e.PoolID, e.EventMeta))
	if err != nil {
		return err
	}
	referrer, err := s.Referrer(ctx, p.referrerSeed(e.Referrer, e.PoolID, referrerUser.Entity))
	if err != nil {
		return err
	}
	referral, err := s.Referral(ctx, model.Referral{
		ID:              keys.Referral(referred.Entity.ID, referrer.Entity.ID),
		Referral:        referred.Entity.ID,
		Referrer:        referrer.Entity.ID,
		ReferralAddress: e.User,
		ReferrerAddress: e.Referrer,
		PoolID:          e.PoolID,
	})
	if err != nil {
		return err
	}

	referral.Entity.Amount = amountOrZero(e.Amount)
	referral.Entity.Timestamp = e.Timestamp

	if err := s.SaveUser(referred.Entity); err != nil {
		return err
	}
	if err := s.SaveUser(referrerUser.Entity); err != nil {
		return err
	}
	if err := s.SaveReferrer(referrer.Entity); err != nil {
		return err
	}
	return s.SaveReferral(referral.Entity)
}

func (p *Processor) onReferrerClaimed(ctx context.Context, s *ledger.Session, e model.ReferrerClaimed) error {
	if err := p.touchDepositPool(ctx, s, e.EventMeta, e.PoolID); err != nil {
		return err
	}

	referrerUser, err := s.User(ctx, p.userSeed(e.User, e.PoolID, e.EventMeta))
	if err != nil {
		return err
	}
	referrer, err := s.Referrer(ctx, p.referrerSeed(e.User, e.PoolID, referrerUser.Entity))
	if err != nil {
		return err
	}
	referrer.Entity.TotalClaimed.Add(referrer.Entity.TotalClaimed, amountOrZero(e.Amount))

	if p.policy.scopedUsers {
		if err := s.SaveUser(referrerUser.Entity); err != nil {
			return err
		}
	}
	return s.SaveReferrer(referrer.Entity)
}

// touchDepositPool makes sure the deposit-pool tracker exists for scoped
// deployments.
func (p *Processor) touchDepositPool(ctx context.Context, s *ledger.Session, meta model.EventMeta, poolID *big.Int) error {
	if !p.policy.scopedUsers {
		return nil
	}
	dp, err := s.DepositPool(ctx, poolID, meta.Recipient())
	if err != nil {
		return err
	}
	if !dp.Created {
		return nil
	}
	return s.SaveDepositPool(dp.Entity)
}
