package handler

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"stakeLedger/internal/keys"
	"stakeLedger/internal/ledger"
	"stakeLedger/internal/model"
	"stakeLedger/internal/resolver"
)

// position is the set of entities a stake, withdraw or claim touches.
type position struct {
	pool        *model.Pool
	user        *model.User
	userInPool  *model.UserInPool
	depositPool *model.DepositPool
}

func (p *Processor) userSeed(addr common.Address, poolID *big.Int, meta model.EventMeta) model.User {
	if !p.policy.scopedUsers {
		return model.User{ID: keys.User(addr), Address: addr}
	}
	dp := meta.Recipient()
	return model.User{
		ID:           keys.ScopedUser(addr, dp, poolID),
		Address:      addr,
		RewardPoolID: amountOrZero(poolID),
		DepositPool:  dp,
	}
}

func (p *Processor) loadPosition(ctx context.Context, s *ledger.Session, meta model.EventMeta, poolID *big.Int, addr common.Address) (*position, error) {
	pool, err := s.Pool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	user, err := s.User(ctx, p.userSeed(addr, poolID, meta))
	if err != nil {
		return nil, err
	}
	uip, err := s.JoinPool(ctx, user.Entity, pool.Entity)
	if err != nil {
		return nil, err
	}
	pos := &position{pool: pool.Entity, user: user.Entity, userInPool: uip.Entity}
	if p.policy.scopedUsers {
		dp, err := s.DepositPool(ctx, poolID, meta.Recipient())
		if err != nil {
			return nil, err
		}
		pos.depositPool = dp.Entity
	}
	return pos, nil
}

// runningTotal is the stake total recorded on interactions: the deposit
// pool's when users are scoped per deposit pool, else the pool's.
func (pos *position) runningTotal() *big.Int {
	if pos.depositPool != nil {
		return new(big.Int).Set(pos.depositPool.TotalStaked)
	}
	return new(big.Int).Set(pos.pool.TotalStaked)
}

func (pos *position) save(s *ledger.Session) error {
	if err := s.SavePool(pos.pool); err != nil {
		return err
	}
	if err := s.SaveUser(pos.user); err != nil {
		return err
	}
	if err := s.SaveUserInPool(pos.userInPool); err != nil {
		return err
	}
	if pos.depositPool != nil {
		return s.SaveDepositPool(pos.depositPool)
	}
	return nil
}

// onStakeChange applies a stake or a withdraw. Withdrawals subtract without
// clamping; the interaction records the positive magnitude.
func (p *Processor) onStakeChange(ctx context.Context, s *ledger.Session, meta model.EventMeta, poolID *big.Int, addr common.Address, amount *big.Int, typ model.InteractionType) error {
	pos, err := p.loadPosition(ctx, s, meta, poolID, addr)
	if err != nil {
		return err
	}

	magnitude := amountOrZero(amount)
	delta := new(big.Int).Set(magnitude)
	if typ == model.InteractionWithdraw {
		delta.Neg(delta)
	}

	pos.userInPool.Staked.Add(pos.userInPool.Staked, delta)
	pos.pool.TotalStaked.Add(pos.pool.TotalStaked, delta)
	if pos.depositPool != nil {
		pos.user.TotalStaked.Add(pos.user.TotalStaked, delta)
		pos.depositPool.TotalStaked.Add(pos.depositPool.TotalStaked, delta)
	}

	data := p.usersData(ctx, meta, addr, poolID)
	if err := p.appendInteraction(ctx, s, meta, pos, typ, magnitude, data); err != nil {
		return err
	}
	if err := p.recordSnapshot(ctx, s, meta, poolID, addr, pos.user, data); err != nil {
		return err
	}
	return pos.save(s)
}

func (p *Processor) onClaimed(ctx context.Context, s *ledger.Session, e model.UserClaimed) error {
	pos, err := p.loadPosition(ctx, s, e.EventMeta, e.PoolID, e.User)
	if err != nil {
		return err
	}

	amount := amountOrZero(e.Amount)
	pos.user.TotalClaimed.Add(pos.user.TotalClaimed, amount)
	pos.userInPool.Claimed.Add(pos.userInPool.Claimed, amount)

	data := p.usersData(ctx, e.EventMeta, e.User, e.PoolID)
	if err := p.appendInteraction(ctx, s, e.EventMeta, pos, model.InteractionClaim, amount, data); err != nil {
		return err
	}
	if err := p.recordSnapshot(ctx, s, e.EventMeta, e.PoolID, e.User, pos.user, data); err != nil {
		return err
	}
	return pos.save(s)
}

// onClaimLocked records a zero-amount stake interaction carrying a fresh
// snapshot; balances do not move.
func (p *Processor) onClaimLocked(ctx context.Context, s *ledger.Session, e model.UserClaimLocked) error {
	pos, err := p.loadPosition(ctx, s, e.EventMeta, e.PoolID, e.User)
	if err != nil {
		return err
	}

	data := p.usersData(ctx, e.EventMeta, e.User, e.PoolID)
	if err := p.appendInteraction(ctx, s, e.EventMeta, pos, model.InteractionStake, new(big.Int), data); err != nil {
		return err
	}
	if err := p.recordSnapshot(ctx, s, e.EventMeta, e.PoolID, e.User, pos.user, data); err != nil {
		return err
	}
	return pos.save(s)
}

func (p *Processor) appendInteraction(ctx context.Context, s *ledger.Session, meta model.EventMeta, pos *position, typ model.InteractionType, amount *big.Int, data resolver.UsersData) error {
	total := pos.runningTotal()
	_, err := s.AppendInteraction(ctx, meta.TxHash, func(id []byte) model.PoolInteraction {
		return model.PoolInteraction{
			Hash:        meta.TxHash,
			Type:        typ,
			IsStake:     typ == model.InteractionStake,
			Amount:      new(big.Int).Set(amount),
			TotalStaked: total,
			Timestamp:   meta.Timestamp,
			BlockNumber: meta.BlockNumber,
			User:        pos.user.ID,
			Pool:        pos.pool.ID,
			UserInPool:  pos.userInPool.ID,
			Rate:        amountOrZero(data.Rate),
		}
	})
	return err
}

func (p *Processor) recordSnapshot(ctx context.Context, s *ledger.Session, meta model.EventMeta, poolID *big.Int, addr common.Address, user *model.User, data resolver.UsersData) error {
	if !p.policy.userSnapshots {
		return nil
	}
	_, err := s.RecordUserInteraction(ctx, model.UserInteraction{
		ID:             keys.Transaction(meta.TxHash),
		Timestamp:      meta.Timestamp,
		PoolID:         amountOrZero(poolID),
		User:           addr,
		Rate:           amountOrZero(data.Rate),
		Deposited:      amountOrZero(data.EffectiveDeposited()),
		ClaimedRewards: new(big.Int).Set(user.TotalClaimed),
		PendingRewards: amountOrZero(data.PendingRewards),
	})
	return err
}
